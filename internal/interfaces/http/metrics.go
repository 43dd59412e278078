package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/claimaudit/claimaudit/internal/domain"
)

// Metrics holds the Prometheus instruments for the audit API. It
// implements engine.AuditObserver so pooled engines report through it.
// Each Metrics owns a private registry, so servers can be built and
// torn down independently.
type Metrics struct {
	registry *prometheus.Registry

	AuditsTotal     *prometheus.CounterVec
	FindingsTotal   *prometheus.CounterVec
	AuditDuration   prometheus.Histogram
	RuleErrorsTotal *prometheus.CounterVec
	RiskScore       prometheus.Histogram
	HTTPRequests    *prometheus.CounterVec
}

// NewMetrics creates and registers the audit API metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		AuditsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimaudit_audits_total",
				Help: "Total number of audits completed",
			},
			[]string{"redacted"},
		),

		FindingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimaudit_findings_total",
				Help: "Total number of findings emitted by category and severity",
			},
			[]string{"category", "severity"},
		),

		AuditDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "claimaudit_audit_duration_seconds",
				Help:    "Wall-clock duration of a full claim audit in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
		),

		RuleErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimaudit_rule_errors_total",
				Help: "Total number of guarded rule execution failures",
			},
			[]string{"rule_id"},
		),

		RiskScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "claimaudit_risk_score",
				Help:    "Distribution of normalized scorecard risk scores",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimaudit_http_requests_total",
				Help: "Total number of HTTP requests by path and status",
			},
			[]string{"path", "status"},
		),
	}

	m.registry.MustRegister(
		m.AuditsTotal,
		m.FindingsTotal,
		m.AuditDuration,
		m.RuleErrorsTotal,
		m.RiskScore,
		m.HTTPRequests,
	)

	return m
}

// Handler serves the Prometheus exposition for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAudit records one completed audit.
func (m *Metrics) ObserveAudit(scorecard *domain.AuditScorecard, duration time.Duration) {
	m.AuditsTotal.WithLabelValues(strconv.FormatBool(scorecard.Redacted)).Inc()
	for _, f := range scorecard.Findings {
		m.FindingsTotal.WithLabelValues(string(f.Category), string(f.Severity)).Inc()
	}
	m.AuditDuration.Observe(duration.Seconds())
	m.RiskScore.Observe(scorecard.Summary.RiskScore)
}

// ObserveRuleError records a guarded rule failure.
func (m *Metrics) ObserveRuleError(ruleID string) {
	m.RuleErrorsTotal.WithLabelValues(ruleID).Inc()
	log.Warn().
		Str("rule_id", ruleID).
		Msg("rule execution error recorded")
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(path string, status int) {
	m.HTTPRequests.WithLabelValues(path, strconv.Itoa(status)).Inc()
}
