// Package metrics defines and registers all custom Prometheus metrics for
// the conversational gateway. It is the single source of truth for metric
// names, labels, and help strings. Metrics register with the default
// registry at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chatgateway"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts by result.
// Label:
//   - result: "success", "rejected" (bad credentials / unknown user), or
//     "throttled"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// ActiveSessions tracks the number of currently open sessions.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of currently open chat sessions.",
	},
)

// ── Generation metrics ────────────────────────────────────────────────────────

// GenerationAttemptsTotal counts individual outbound attempts by outcome.
// Label:
//   - outcome: "success", "retryable", "http_error", "connection_error"
var GenerationAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generation_attempts_total",
		Help:      "Total number of outbound generation attempts, by outcome.",
	},
	[]string{"outcome"},
)

// GenerationRetriesTotal counts backoff sleeps taken before a retry.
var GenerationRetriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generation_retries_total",
		Help:      "Total number of generation retries after a retryable failure.",
	},
)

// GenerationDuration measures the full duration of one Generate call,
// backoff sleeps included.
// Label:
//   - outcome: "success" or "error"
var GenerationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_duration_seconds",
		Help:      "Duration of a generation call from first attempt to terminal state.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	},
	[]string{"outcome"},
)

// ── Archive metrics ───────────────────────────────────────────────────────────

// MessagesArchivedTotal counts turns written to the audit collection.
// Label:
//   - role: "user" or "model"
var MessagesArchivedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_archived_total",
		Help:      "Total number of chat messages written to the audit archive.",
	},
	[]string{"role"},
)

// ArchiveErrorsTotal counts failed archive writes (dropped messages).
var ArchiveErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "archive_errors_total",
		Help:      "Total number of chat messages that failed to archive.",
	},
)

// ArchiveQueueDepth tracks messages waiting in each archive worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ArchiveQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "archive_queue_depth",
		Help:      "Current number of messages pending in each archive worker channel.",
	},
	[]string{"worker_id"},
)
