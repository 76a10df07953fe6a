package notify

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/lifeofpease/matchmaking-api/internal/api/metrics"
	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes notifications to a fixed set of workers using consistent
// hashing on the recipient address, preserving per-recipient send order.
// Delivery failures are logged and counted, never surfaced to the enqueuer.
type Dispatcher struct {
	workers []chan ports.Notification
	mailer  ports.Notifier
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, mailer ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Notification, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a notification to the worker responsible for its recipient.
// When the worker's buffer is full the notification is dropped rather than
// blocking the request path.
func (d *Dispatcher) Enqueue(n ports.Notification) {
	idx := d.shardIndex(n.To)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationsEnqueuedTotal.Inc()
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Warn().Str("to", n.To).Str("subject", n.Subject).Msg("notification queue full, dropping")
		metrics.NotificationsDroppedTotal.Inc()
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			if err := d.mailer.Send(ctx, n); err != nil {
				d.log.Error().Err(err).
					Str("to", n.To).
					Str("subject", n.Subject).
					Int("worker_id", id).
					Msg("notification delivery failed")
				metrics.NotificationsSentTotal.WithLabelValues("error").Inc()
				continue
			}
			metrics.NotificationsSentTotal.WithLabelValues("ok").Inc()
		}
	}
}
