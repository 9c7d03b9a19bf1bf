// Package metrics defines the custom Prometheus metrics of the BellyBox API.
// It is the single source of truth for metric names, labels and help strings.
//
// Call MustRegister once per registry before the HTTP server starts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bellybox"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login submissions.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginAttemptsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration submissions.
// Label:
//   - result: "success", "duplicate_email", "invalid_input" or "error"
var RegistrationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// AccessDeniedTotal counts gated requests that were turned away.
// Labels:
//   - reason: "unauthenticated" or "role_mismatch"
//   - dashboard: the dashboard requested, or "" for other gated routes
var AccessDeniedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of requests rejected by the access gate.",
	},
	[]string{"reason", "dashboard"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

var SessionsStartedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_started_total",
		Help:      "Total number of sessions started.",
	},
)

var SessionsEndedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_ended_total",
		Help:      "Total number of sessions ended by logout.",
	},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsDroppedTotal counts audit events discarded because the worker
// queue was full.
var AuditEventsDroppedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped on a full queue.",
	},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index
var AuditQueueDepth = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// MustRegister registers every collector above with reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		LoginAttemptsTotal,
		RegistrationsTotal,
		AccessDeniedTotal,
		SessionsStartedTotal,
		SessionsEndedTotal,
		AuditEventsDroppedTotal,
		AuditQueueDepth,
	)
}
