// Package metrics defines Prometheus metrics for stockpilot.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockpilot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockpilot_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockpilot_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	ActionsProposed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockpilot_actions_proposed_total",
			Help: "Actions proposed, by action type",
		},
		[]string{"action_type"},
	)

	Transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockpilot_action_transitions_total",
			Help: "Action status transitions, by resulting event",
		},
		[]string{"event"},
	)

	AlertsEligible = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stockpilot_alerts_eligible_total",
			Help: "Risk events that passed the eligibility filter",
		},
	)

	AlertsSuppressed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stockpilot_alerts_suppressed_total",
			Help: "Risk events suppressed by the cooldown filter",
		},
	)

	AuditQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stockpilot_audit_queue_depth",
			Help: "Current audit persistence queue depth",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stockpilot_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		ActionsProposed, Transitions,
		AlertsEligible, AlertsSuppressed,
		AuditQueueDepth, WSConnections,
	)
}
