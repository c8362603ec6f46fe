// Package metrics defines and registers all custom Prometheus metrics for the
// CareNet portal. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default registry on package init via
// promauto; HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "carenet_portal"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts Session Manager state changes.
// Label:
//   - event: "login", "register", "logout", "expire", "restore"
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions, by event.",
	},
	[]string{"event"},
)

// AuthFailuresTotal counts failed login and register attempts.
// Labels:
//   - op: "login" or "register"
//   - reason: "credentials", "validation", "network", "error"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of failed authentication attempts.",
	},
	[]string{"op", "reason"},
)

// RoleGateDecisionsTotal counts admit/deny decisions per portal area.
var RoleGateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_gate_decisions_total",
		Help:      "Total number of role gate decisions, by area and decision.",
	},
	[]string{"area", "decision"},
)

// ── Entity metrics ────────────────────────────────────────────────────────────

// EntityLoadsTotal counts initial fetches of editable entities.
// Labels:
//   - entity: "careseeker_profile", "caregiver_profile", "feedback"
//   - outcome: "ok", "empty", "fallback", "stale"
var EntityLoadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entity_loads_total",
		Help:      "Total number of editable entity loads, by outcome.",
	},
	[]string{"entity", "outcome"},
)

// EntitySavesTotal counts save attempts that reached validation.
// Labels:
//   - entity: see EntityLoadsTotal
//   - outcome: "ok", "validation", "auth", "network", "error", "stale"
var EntitySavesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entity_saves_total",
		Help:      "Total number of editable entity saves, by outcome.",
	},
	[]string{"entity", "outcome"},
)

// OpenViews tracks how many editable views are currently open.
var OpenViews = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "open_views",
		Help:      "Number of editable views currently open in the workspace.",
	},
)

// AvatarUploadsTotal counts avatar uploads.
// Label:
//   - outcome: "ok", "rejected", "failed", "no_url"
var AvatarUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "avatar_uploads_total",
		Help:      "Total number of avatar uploads, by outcome.",
	},
	[]string{"outcome"},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestDuration measures calls to the REST backend.
// Labels:
//   - op: client operation name (e.g. "careseeker_profile_get")
//   - status: HTTP status code, or "error" when no response arrived
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests to the CareNet backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op", "status"},
)
