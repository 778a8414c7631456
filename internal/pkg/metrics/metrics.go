// Package metrics defines and registers all custom Prometheus metrics for the
// asset console. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry on package init via
// promauto; HTTP server metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

// ── Upstream API metrics ──────────────────────────────────────────────────────

// UpstreamRequestsTotal counts calls made to the asset API.
// Labels:
//   - method: HTTP method (e.g. "GET")
//   - code: response status code, or "transport_error" when no response arrived
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of requests sent to the asset API.",
	},
	[]string{"method", "code"},
)

// UpstreamRequestDuration measures round-trip latency to the asset API.
// Label:
//   - method: HTTP method
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of requests sent to the asset API.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// TokenRefreshTotal counts refresh-endpoint calls.
// Label:
//   - result: "success" or "failure"
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of access-token refresh calls, by result.",
	},
	[]string{"result"},
)

// RequestReplaysTotal counts requests replayed after a 401.
// Label:
//   - result: "ok" or "rejected" (the replay failed authentication again)
var RequestReplaysTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_replays_total",
		Help:      "Total number of requests replayed once after a token refresh.",
	},
	[]string{"result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts reductions applied to session state.
// Label:
//   - action: the reducer action name (e.g. "login_succeeded")
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions, by action.",
	},
	[]string{"action"},
)

// AuthenticatedSessions tracks in-memory profiles currently authenticated.
var AuthenticatedSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "authenticated_sessions",
		Help:      "Number of in-memory profiles in the authenticated state.",
	},
)

// ActiveProfiles tracks profiles held by the registry.
var ActiveProfiles = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_profiles",
		Help:      "Number of browser profiles currently held in memory.",
	},
)

// GuardRedirectsTotal counts navigations turned away by a route guard.
// Labels:
//   - guard: guard name ("authenticated", "admin", "manager")
//   - target: redirect location
var GuardRedirectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_redirects_total",
		Help:      "Total number of navigations redirected by a route guard.",
	},
	[]string{"guard", "target"},
)

// ── Revocation metrics ────────────────────────────────────────────────────────

// RevocationsTotal counts remote logout attempts.
// Label:
//   - result: "ok", "failed", or "dropped" (queue full)
var RevocationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "revocations_total",
		Help:      "Total number of remote token revocations, by result.",
	},
	[]string{"result"},
)

// RevocationQueueDepth tracks jobs waiting in each revocation worker channel.
// Label:
//   - worker_id: numeric worker index
var RevocationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "revocation_queue_depth",
		Help:      "Current number of revocations pending in each worker channel.",
	},
	[]string{"worker_id"},
)
