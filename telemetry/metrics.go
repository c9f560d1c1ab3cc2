package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/timour/amqprpc/core"
)

// DispatchMetrics tracks API-stage activity: actions invoked, unknown
// actions received, and plugin failures by kind. It satisfies
// api.Metrics.
type DispatchMetrics struct {
	actionsInvoked *prometheus.CounterVec
	unknownActions *prometheus.CounterVec
	pluginFailures *prometheus.CounterVec
}

// NewDispatchMetrics registers the API-stage counters under serviceName.
func NewDispatchMetrics(serviceName string) *DispatchMetrics {
	return &DispatchMetrics{
		actionsInvoked: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: serviceName + "_api_actions_invoked_total",
				Help: "Total number of actions invoked by the API dispatch.",
			},
			[]string{"action"},
		),
		unknownActions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: serviceName + "_api_unknown_actions_total",
				Help: "Total number of requests received for an unregistered action.",
			},
			[]string{"action"},
		),
		pluginFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: serviceName + "_api_plugin_failures_total",
				Help: "Total number of InputPlugin failures by plugin id and error kind.",
			},
			[]string{"plugin", "kind"},
		),
	}
}

func (m *DispatchMetrics) ObserveActionInvoked(action string) {
	m.actionsInvoked.WithLabelValues(action).Inc()
}

func (m *DispatchMetrics) ObserveUnknownAction(action string) {
	m.unknownActions.WithLabelValues(action).Inc()
}

func (m *DispatchMetrics) ObservePluginFailure(pluginID string, kind core.ErrorKind) {
	m.pluginFailures.WithLabelValues(pluginID, string(kind)).Inc()
}

// StageMetrics tracks executor outcomes for the logic and storage stages.
type StageMetrics struct {
	executed *prometheus.CounterVec
	failed   *prometheus.CounterVec
}

// NewStageMetrics registers executor counters under serviceName/stage.
func NewStageMetrics(serviceName, stage string) *StageMetrics {
	return &StageMetrics{
		executed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: serviceName + "_" + stage + "_executed_total",
				Help: "Total number of " + stage + " requests dispatched to an executor.",
			},
			[]string{"kind"},
		),
		failed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: serviceName + "_" + stage + "_failed_total",
				Help: "Total number of " + stage + " executor failures.",
			},
			[]string{"kind"},
		),
	}
}

func (m *StageMetrics) ObserveExecuted(kind string) {
	m.executed.WithLabelValues(kind).Inc()
}

func (m *StageMetrics) ObserveFailed(kind string) {
	m.failed.WithLabelValues(kind).Inc()
}

// CallMetrics tracks outbound rpcclient.Client calls: count by routing key
// and status, and round-trip latency.
type CallMetrics struct {
	requestsTotal *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewCallMetrics registers outbound-call counters under serviceName.
func NewCallMetrics(serviceName string) *CallMetrics {
	return &CallMetrics{
		requestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: serviceName + "_rpc_calls_total",
				Help: "Total number of outbound RPC calls by routing key and status.",
			},
			[]string{"routing_key", "status"},
		),
		duration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    serviceName + "_rpc_call_duration_seconds",
				Help:    "Outbound RPC call round-trip duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"routing_key"},
		),
	}
}

// ObserveCall records one call's outcome and round-trip duration.
func (m *CallMetrics) ObserveCall(routingKey, status string, duration time.Duration) {
	m.requestsTotal.WithLabelValues(routingKey, status).Inc()
	m.duration.WithLabelValues(routingKey).Observe(duration.Seconds())
}
