package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ludo-technologies/credaudit/domain"
	"github.com/ludo-technologies/credaudit/internal/analyzer"
	"github.com/ludo-technologies/credaudit/internal/config"
	"github.com/ludo-technologies/credaudit/internal/logging"
	"github.com/ludo-technologies/credaudit/internal/snapshot"
	"github.com/ludo-technologies/credaudit/internal/version"
	"go.uber.org/zap"
)

// Analyzer names used for task names, logs and metric labels
const (
	AnalyzerViolations  = "violations"
	AnalyzerUtilization = "utilization"
	AnalyzerTradelines  = "tradelines"
)

// AuditServiceImpl implements the AuditService interface
type AuditServiceImpl struct {
	auditor *analyzer.Auditor
	logger  *zap.Logger
	metrics *AuditMetrics
	now     func() time.Time
}

// NewAuditService creates an audit service backed by catalog, or the
// default catalog when nil
func NewAuditService(catalog *analyzer.ViolationCatalog) *AuditServiceImpl {
	return &AuditServiceImpl{
		auditor: analyzer.NewAuditor(catalog),
		logger:  zap.NewNop(),
		now:     utcNow,
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// WithLogger sets the service logger
func (s *AuditServiceImpl) WithLogger(logger *zap.Logger) *AuditServiceImpl {
	s.logger = logging.OrNop(logger)
	return s
}

// WithMetrics sets the metrics recorder
func (s *AuditServiceImpl) WithMetrics(metrics *AuditMetrics) *AuditServiceImpl {
	s.metrics = metrics
	return s
}

// WithClock replaces the clock used for defaulted reference times and timestamps
func (s *AuditServiceImpl) WithClock(now func() time.Time) *AuditServiceImpl {
	if now != nil {
		s.now = now
	}
	return s
}

// Audit decodes the request snapshot and audits it. The returned result
// carries a fresh run id; everything else depends only on the snapshot and
// the reference time.
func (s *AuditServiceImpl) Audit(ctx context.Context, req domain.AuditRequest) (*domain.AuditResponse, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("audit cancelled: %w", ctx.Err())
	default:
	}

	start := time.Now()
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))
	if req.Source != "" {
		logger = logger.With(zap.String("source", req.Source))
	}

	snap, err := snapshot.Decode(req.Snapshot)
	if err != nil {
		s.metrics.IncrementFailure()
		logger.Warn("snapshot rejected", zap.Error(err))
		return nil, err
	}

	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = s.now()
	}

	logger.Debug("audit started",
		zap.String("report_id", snap.ID),
		zap.Time("as_of", asOf),
		zap.Int("tradelines", len(snap.Tradelines)),
		zap.Int("inquiries", len(snap.Inquiries)),
		zap.Int("public_records", len(snap.PublicRecords)),
		zap.Bool("parallel", req.Parallel),
	)

	var result domain.AuditResult
	if req.Parallel {
		result, err = s.runParallel(ctx, snap, asOf)
	} else {
		result, err = s.runSequential(snap, asOf)
	}
	if err != nil {
		s.metrics.IncrementFailure()
		logger.Error("audit failed", zap.String("report_id", snap.ID), zap.Error(err))
		return nil, err
	}
	result.ID = runID

	duration := time.Since(start)
	s.metrics.ObserveAudit(&result, duration)
	logger.Info("audit completed",
		zap.String("report_id", snap.ID),
		zap.Int("violations", result.Summary.TotalViolationsFound),
		zap.Int("review_items", len(result.ItemsForReview)),
		zap.Int("recommendations", len(result.Recommendations)),
		zap.Int("utilization", result.Summary.UtilizationPercentage),
		zap.Duration("duration", duration),
	)

	return &domain.AuditResponse{
		Result:      &result,
		Source:      req.Source,
		GeneratedAt: s.now().Format(time.RFC3339),
		DurationMs:  duration.Milliseconds(),
		Version:     version.Version,
	}, nil
}

func (s *AuditServiceImpl) runSequential(snap *domain.ReportSnapshot, asOf time.Time) (result domain.AuditResult, err error) {
	defer recoverAnalysis("audit", &err)

	regular, collections := analyzer.PartitionTradelines(snap.Tradelines)
	var parts analyzer.AuditParts

	s.timed(AnalyzerViolations, func() {
		parts.Violations = s.auditor.DetectViolations(snap.Tradelines, collections, asOf)
	})
	s.timed(AnalyzerUtilization, func() {
		parts.Utilization = s.auditor.AnalyzeUtilization(regular)
	})
	s.timed(AnalyzerTradelines, func() {
		parts.Tradelines = s.auditor.AnalyzeTradelines(regular, asOf)
	})

	return s.auditor.Assemble(snap, asOf, parts), nil
}

// runParallel runs the three independent analyzers concurrently and merges
// their results exactly like the sequential path
func (s *AuditServiceImpl) runParallel(ctx context.Context, snap *domain.ReportSnapshot, asOf time.Time) (domain.AuditResult, error) {
	regular, collections := analyzer.PartitionTradelines(snap.Tradelines)
	var parts analyzer.AuditParts

	task := func(name string, run func()) domain.ExecutableTask {
		return NewFuncTask(name, func(context.Context) (res interface{}, err error) {
			defer recoverAnalysis(name, &err)
			s.timed(name, run)
			return nil, nil
		})
	}

	tasks := []domain.ExecutableTask{
		task(AnalyzerViolations, func() {
			parts.Violations = s.auditor.DetectViolations(snap.Tradelines, collections, asOf)
		}),
		task(AnalyzerUtilization, func() {
			parts.Utilization = s.auditor.AnalyzeUtilization(regular)
		}),
		task(AnalyzerTradelines, func() {
			parts.Tradelines = s.auditor.AnalyzeTradelines(regular, asOf)
		}),
	}

	executor := NewParallelExecutorFromConfig(&config.PerformanceConfig{MaxGoroutines: len(tasks)}).
		WithLogger(s.logger)
	if err := executor.Execute(ctx, tasks); err != nil {
		return domain.AuditResult{}, domain.NewAnalysisError("audit analyzers failed", err)
	}

	return s.auditor.Assemble(snap, asOf, parts), nil
}

func (s *AuditServiceImpl) timed(name string, run func()) {
	start := time.Now()
	run()
	s.metrics.ObserveAnalyzer(name, time.Since(start))
}

// recoverAnalysis turns a panic raised inside an analyzer, such as a rule
// missing from an injected catalog, into an analysis error
func recoverAnalysis(name string, err *error) {
	if r := recover(); r != nil {
		if cause, ok := r.(error); ok {
			*err = domain.NewAnalysisError(fmt.Sprintf("%s analysis failed", name), cause)
			return
		}
		*err = domain.NewAnalysisError(fmt.Sprintf("%s analysis failed: %v", name, r), nil)
	}
}
