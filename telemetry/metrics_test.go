package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/timour/amqprpc/core"
)

func TestDispatchMetricsRecordsActionsAndFailures(t *testing.T) {
	metrics := NewDispatchMetrics("metrics_test_dispatch")

	metrics.ObserveActionInvoked("dummy:action")
	metrics.ObserveUnknownAction("ghost:action")
	metrics.ObservePluginFailure("token_manager", core.ErrorKindRequest)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.actionsInvoked.WithLabelValues("dummy:action")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.unknownActions.WithLabelValues("ghost:action")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.pluginFailures.WithLabelValues("token_manager", string(core.ErrorKindRequest))))
}

func TestStageMetricsRecordsExecutedAndFailed(t *testing.T) {
	metrics := NewStageMetrics("metrics_test_stage", "logic")

	metrics.ObserveExecuted("dummy")
	metrics.ObserveFailed("dummy")

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.executed.WithLabelValues("dummy")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.failed.WithLabelValues("dummy")))
}
