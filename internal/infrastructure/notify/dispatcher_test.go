package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/lifeofpease/matchmaking-api/internal/api/metrics"
	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []ports.Notification
}

func (m *recordingMailer) Send(_ context.Context, n ports.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDispatcher_DeliversEnqueued(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(2, mailer, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < 10; i++ {
		d.Enqueue(ports.Notification{To: "a@example.com", Subject: "hello"})
		d.Enqueue(ports.Notification{To: "b@example.com", Subject: "hello"})
	}

	waitFor(t, func() bool { return mailer.count() == 20 })
}

func TestDispatcher_ShardIsStablePerRecipient(t *testing.T) {
	d := NewDispatcher(4, &recordingMailer{}, zerolog.Nop())

	first := d.shardIndex("alice@example.com")
	for i := 0; i < 100; i++ {
		if d.shardIndex("alice@example.com") != first {
			t.Fatal("shard index must be deterministic for a recipient")
		}
	}
}

func TestDispatcher_DefaultsWorkerCount(t *testing.T) {
	d := NewDispatcher(0, &recordingMailer{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}

func TestDispatcher_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	// No workers started: the buffer fills and Enqueue must return anyway.
	d := NewDispatcher(1, &recordingMailer{}, zerolog.Nop())

	dropsBefore := testutil.ToFloat64(metrics.NotificationsDroppedTotal)
	errorsBefore := testutil.ToFloat64(metrics.NotificationsSentTotal.WithLabelValues("error"))

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Enqueue(ports.Notification{To: "a@example.com"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	drops := testutil.ToFloat64(metrics.NotificationsDroppedTotal) - dropsBefore
	if drops != 10 {
		t.Fatalf("expected 10 drops counted, got %v", drops)
	}
	// Drops must not masquerade as failed delivery attempts.
	if errs := testutil.ToFloat64(metrics.NotificationsSentTotal.WithLabelValues("error")) - errorsBefore; errs != 0 {
		t.Fatalf("queue-full drops counted as delivery errors: %v", errs)
	}
}
