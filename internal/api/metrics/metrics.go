// Package metrics defines and registers all custom Prometheus metrics for the
// deal room dashboard. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import via
// promauto and exposed by the /metrics handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dealroom"

// ── Dashboard metrics ─────────────────────────────────────────────────────────

// SectionLoadDuration measures how long a role section takes to load end-to-end.
// Label:
//   - role: "entrepreneur", "investor" or "admin"
var SectionLoadDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "section_load_duration_seconds",
		Help:      "Duration of a dashboard section load including all widget reads.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"role"},
)

// WidgetFailuresTotal counts widget reads that failed and left the widget degraded.
// Labels:
//   - role: the viewer's role
//   - widget: widget name (e.g. "stats", "offers", "marketplace")
var WidgetFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "widget_failures_total",
		Help:      "Total number of dashboard widget reads that failed.",
	},
	[]string{"role", "widget"},
)

// ── Offer metrics ─────────────────────────────────────────────────────────────

// OfferDecisionsTotal counts accept/reject attempts.
// Labels:
//   - decision: "accept" or "reject"
//   - result: "ok", "resumed", "not_pending", "in_progress", "forbidden" or "error"
var OfferDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "offer_decisions_total",
		Help:      "Total number of offer decisions, by decision and result.",
	},
	[]string{"decision", "result"},
)

// SideEffectFailuresTotal counts post-commit steps that failed and were swallowed.
// Label:
//   - step: "funding_log", "notification" or "lock_release"
var SideEffectFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "side_effect_failures_total",
		Help:      "Total number of non-fatal workflow steps that failed.",
	},
	[]string{"step"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsDispatchedTotal counts notifications handed to a sender.
// Labels:
//   - mode: "sync" or "async"
//   - result: "ok" or "error"
var NotificationsDispatchedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dispatched_total",
		Help:      "Total number of workflow notifications delivered, by mode and result.",
	},
	[]string{"mode", "result"},
)

// NotificationQueueDepth tracks the current number of notifications waiting in each worker channel.
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

// ── Admin metrics ─────────────────────────────────────────────────────────────

// VerificationsTotal counts admin review decisions.
// Labels:
//   - kind: "user" or "proposal"
//   - approved: "true" or "false"
var VerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_total",
		Help:      "Total number of admin verification decisions.",
	},
	[]string{"kind", "approved"},
)
