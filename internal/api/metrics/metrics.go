// Package metrics defines and registers all custom Prometheus metrics for
// the matchmaking API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "matchmaking"

// ── Connection workflow metrics ──────────────────────────────────────────────

// ConnectionsRequestedTotal counts successfully created connection requests.
var ConnectionsRequestedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connections_requested_total",
		Help:      "Total number of connection requests created.",
	},
)

// ConnectionsRespondedTotal counts therapist responses, labelled by outcome.
// Label:
//   - status: "APPROVED" or "REJECTED"
var ConnectionsRespondedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connections_responded_total",
		Help:      "Total number of connection responses, by resulting status.",
	},
	[]string{"status"},
)

// ConnectionsRemovedTotal counts hard-deleted connections (remove/unfriend).
var ConnectionsRemovedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connections_removed_total",
		Help:      "Total number of connections removed or unfriended.",
	},
)

// DiscoverySearchesTotal counts therapist discovery queries.
var DiscoverySearchesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "discovery_searches_total",
		Help:      "Total number of therapist discovery searches executed.",
	},
)

// ── Notification metrics ─────────────────────────────────────────────────────

// NotificationsEnqueuedTotal counts notifications handed to the dispatcher.
var NotificationsEnqueuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_enqueued_total",
		Help:      "Total number of notifications enqueued for delivery.",
	},
)

// NotificationsSentTotal counts delivery attempts, labelled by result.
// Label:
//   - result: "ok" or "error"
var NotificationsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of notification delivery attempts, by result.",
	},
	[]string{"result"},
)

// NotificationsDroppedTotal counts notifications discarded because the
// target worker's buffer was full. Kept separate from NotificationsSentTotal:
// a dropped notification never reaches a delivery attempt.
var NotificationsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "Total number of notifications dropped due to a full worker queue.",
	},
)

// NotificationQueueDepth tracks pending notifications per dispatcher worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
