package service

import (
	"time"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/ludo-technologies/credaudit/internal/constants"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Audit outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// AuditMetrics records audit counters and latencies on its own registry.
// A nil *AuditMetrics is valid and records nothing.
type AuditMetrics struct {
	registry *prometheus.Registry

	// Audits by outcome
	AuditsTotal *prometheus.CounterVec

	// Detected violations by rule code and severity
	ViolationsTotal *prometheus.CounterVec

	// Review items by item type
	ReviewItemsTotal *prometheus.CounterVec

	// Full audit latency
	AuditLatency prometheus.Histogram

	// Latency of each analyzer
	AnalyzerLatency *prometheus.HistogramVec

	// Overall revolving utilization per audited report
	OverallUtilization prometheus.Histogram
}

// NewAuditMetrics creates a metrics set registered on a fresh registry
func NewAuditMetrics() *AuditMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &AuditMetrics{
		registry: registry,

		AuditsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "audits_total",
			Help:      "Total audits run by outcome",
		}, []string{"outcome"}),

		ViolationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "violations_total",
			Help:      "Total detected rule violations by code and severity",
		}, []string{"code", "severity"}),

		ReviewItemsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "review_items_total",
			Help:      "Total items flagged for review by item type",
		}, []string{"item_type"}),

		AuditLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "audit_duration_seconds",
			Help:      "Duration of a full audit including snapshot decoding",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		AnalyzerLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "analyzer_duration_seconds",
			Help:      "Duration of each analyzer within an audit",
			Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		}, []string{"analyzer"}), // analyzer: "violations", "utilization", "tradelines"

		OverallUtilization: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "overall_utilization_percent",
			Help:      "Overall revolving utilization of audited reports",
			Buckets:   []float64{10, 20, 30, 50, 75, 100},
		}),
	}
}

// Registry returns the registry holding the audit metrics
func (m *AuditMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveAudit records a finished audit
func (m *AuditMetrics) ObserveAudit(result *domain.AuditResult, d time.Duration) {
	if m == nil {
		return
	}
	m.AuditsTotal.WithLabelValues(OutcomeSuccess).Inc()
	m.AuditLatency.Observe(d.Seconds())

	if result == nil {
		return
	}
	for _, v := range result.ViolationAnalysis.Violations {
		m.ViolationsTotal.WithLabelValues(v.Code(), string(v.Violation.Severity)).Inc()
	}
	for _, item := range result.ItemsForReview {
		m.ReviewItemsTotal.WithLabelValues(string(item.ItemType)).Inc()
	}
	m.OverallUtilization.Observe(float64(result.UtilizationAnalysis.OverallUtilization))
}

// IncrementFailure records an audit that returned an error
func (m *AuditMetrics) IncrementFailure() {
	if m != nil {
		m.AuditsTotal.WithLabelValues(OutcomeError).Inc()
	}
}

// ObserveAnalyzer records the duration of one analyzer
func (m *AuditMetrics) ObserveAnalyzer(analyzer string, d time.Duration) {
	if m != nil {
		m.AnalyzerLatency.WithLabelValues(analyzer).Observe(d.Seconds())
	}
}

// WriteTextfile writes the metrics in the Prometheus text format for the
// node_exporter textfile collector. An empty path is a no-op.
func (m *AuditMetrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return domain.NewOutputError("failed to write metrics textfile", err)
	}
	return nil
}
