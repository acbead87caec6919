package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CommandsTotal counts handled commands by name and result.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outline_bot_commands_total",
		Help: "The total number of handled bot commands",
	}, []string{"command", "result"})

	// CommandDuration observes handler latency including upstream calls.
	CommandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outline_bot_command_duration_seconds",
		Help:    "Bot command handling duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})

	// RejectedUpdatesTotal counts commands dropped because the sender is not the admin.
	RejectedUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outline_bot_rejected_updates_total",
		Help: "The total number of commands from senders other than the admin",
	})

	// OutlineRequestsTotal counts management API round trips.
	OutlineRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outline_bot_outline_requests_total",
		Help: "The total number of Outline management API requests",
	}, []string{"code", "method"})

	// OutlineRequestDuration observes management API latency.
	OutlineRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outline_bot_outline_request_duration_seconds",
		Help:    "Outline management API request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// TaskRunsTotal counts scheduled task runs by task and result.
	TaskRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outline_bot_task_runs_total",
		Help: "The total number of scheduled task runs",
	}, []string{"task", "result"})
)

// Result labels.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultInvalid = "invalid_argument"
	ResultSkipped = "skipped"
)

// InstrumentOutline wraps the management API transport with request counters
// and latency histograms.
func InstrumentOutline(next http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperCounter(OutlineRequestsTotal,
		promhttp.InstrumentRoundTripperDuration(OutlineRequestDuration, next))
}

// ObserveCommand records one handled command.
func ObserveCommand(command, result string, took time.Duration) {
	CommandsTotal.WithLabelValues(command, result).Inc()
	CommandDuration.WithLabelValues(command).Observe(took.Seconds())
}
