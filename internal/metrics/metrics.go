package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engage_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engage_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engage_notifications_total",
			Help: "Notification candidates by outcome (admitted, rejected, dropped, expired, interacted, dismissed).",
		},
		[]string{"outcome", "reason"},
	)

	NudgesEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engage_nudges_enqueued_total",
			Help: "Queued candidates by kind (completion, step_help, empty_field).",
		},
		[]string{"kind"},
	)

	ReasoningRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engage_reasoning_requests_total",
			Help: "Chat replies by source (remote, fallback).",
		},
		[]string{"source"},
	)

	ReasoningFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engage_reasoning_fallbacks_total",
			Help: "Fallback replies by failure cause.",
		},
		[]string{"cause"},
	)

	ReasoningDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engage_reasoning_duration_seconds",
			Help:    "Remote reasoning call duration in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 6, 8, 10},
		},
	)

	SuggestionsOfferedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engage_suggestions_offered_total",
			Help: "Total number of form suggestions handed to the client.",
		},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "engage_active_sessions",
			Help: "Number of live engagement sessions.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		NotificationsTotal,
		NudgesEnqueuedTotal,
		ReasoningRequestsTotal,
		ReasoningFallbacksTotal,
		ReasoningDuration,
		SuggestionsOfferedTotal,
		ActiveSessions,
	)
}
