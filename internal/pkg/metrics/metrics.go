// Package metrics defines and registers all custom Prometheus metrics for the
// skater profiles API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import via
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "skaters"

// ── Lifecycle metrics ─────────────────────────────────────────────────────────

// LifecycleOperationsTotal counts account lifecycle operations.
// Labels:
//   - operation: "register", "update", "delete" or "toggle_status"
//   - result: "success" or "failure"
var LifecycleOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lifecycle_operations_total",
		Help:      "Total number of account lifecycle operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// PhotoCleanupFailuresTotal counts photos left on disk after their account
// was deleted. Each one is also recorded in the audit trail.
var PhotoCleanupFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "photo_cleanup_failures_total",
		Help:      "Total number of photo files that could not be removed after account deletion.",
	},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Auth middleware metrics ───────────────────────────────────────────────────

// AuthRejectionsTotal counts requests stopped by the auth or admin gates.
// Label:
//   - reason: "missing", "expired", "signature", "malformed", "revoked" or "not_admin"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by authentication or authorization middleware.",
	},
	[]string{"reason"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the current number of audit events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsErrorsTotal counts audit events that were not persisted.
// Label:
//   - reason: "queue_full" or "insert_failed"
var AuditEventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_errors_total",
		Help:      "Total number of audit events dropped or failed to persist.",
	},
	[]string{"reason"},
)
