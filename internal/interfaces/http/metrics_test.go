package http

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimaudit/claimaudit/internal/decode"
	"github.com/claimaudit/claimaudit/internal/engine"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	counter, err := vec.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)

	m := &io_prometheus_client.Metric{}
	require.NoError(t, counter.Write(m))
	return m.GetCounter().GetValue()
}

func TestMetricsObserveAudit(t *testing.T) {
	metrics := NewMetrics()
	eng := engine.NewDefault()
	eng.SetObserver(metrics)

	claim, err := decode.ClaimFromJSON([]byte(doorClaimJSON))
	require.NoError(t, err)

	eng.AuditWithRedact(claim, true)
	eng.Audit(claim)

	assert.Equal(t, 1.0, counterValue(t, metrics.AuditsTotal, "true"))
	assert.Equal(t, 1.0, counterValue(t, metrics.AuditsTotal, "false"))
	assert.Equal(t, 2.0, counterValue(t, metrics.FindingsTotal, "leakage", "warning"))
}

func TestMetricsObserveRuleError(t *testing.T) {
	metrics := NewMetrics()

	metrics.ObserveRuleError("WTR-001")
	metrics.ObserveRuleError("WTR-001")

	assert.Equal(t, 2.0, counterValue(t, metrics.RuleErrorsTotal, "WTR-001"))
}

func TestMetricsRecordHTTPRequest(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordHTTPRequest("/audit", 200)
	metrics.RecordHTTPRequest("/audit", 400)

	assert.Equal(t, 1.0, counterValue(t, metrics.HTTPRequests, "/audit", "200"))
	assert.Equal(t, 1.0, counterValue(t, metrics.HTTPRequests, "/audit", "400"))
}
