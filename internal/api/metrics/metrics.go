// Package metrics defines the portal's custom Prometheus metrics. HTTP
// request metrics come from echoprometheus; these cover the session and game
// flows the request metrics cannot see.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok", "not_found", "invalid_credentials", "throttled", "invalid_request" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "ok", "invalid_request" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// RefreshesTotal counts access token refreshes.
// Label:
//   - result: "ok", "missing", "not_found", "invalid" or "error"
var RefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refreshes_total",
		Help:      "Total number of access token refreshes, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts logout calls, including no-op ones.
var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of logout calls.",
	},
)

// ── Statki metrics ────────────────────────────────────────────────────────────

// StatkiGamesTotal counts statki games by lifecycle event.
// Label:
//   - event: "started" or "won"
var StatkiGamesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "statki",
		Name:      "games_total",
		Help:      "Total number of statki games started and won.",
	},
	[]string{"event"},
)

// StatkiShotsTotal counts shots fired.
// Label:
//   - outcome: "miss", "hit", "sunk" or "repeat"
var StatkiShotsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "statki",
		Name:      "shots_total",
		Help:      "Total number of statki shots, by outcome.",
	},
	[]string{"outcome"},
)
