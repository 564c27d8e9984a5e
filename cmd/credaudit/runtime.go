package main

import (
	"context"
	"fmt"

	"github.com/ludo-technologies/credaudit/app"
	"github.com/ludo-technologies/credaudit/domain"
	"github.com/ludo-technologies/credaudit/internal/config"
	"github.com/ludo-technologies/credaudit/internal/logging"
	"github.com/ludo-technologies/credaudit/internal/snapshot"
	"github.com/ludo-technologies/credaudit/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runOptions holds the flags shared by audit and check
type runOptions struct {
	configPath    string
	asOf          string
	parallel      bool
	noRecursive   bool
	exclude       []string
	maxGoroutines int
	logLevel      string
	logFormat     string
	metricsFile   string
	quiet         bool
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVar(&opts.asOf, "as-of", "",
		"Reference date for age based rules (YYYY-MM-DD, default: today)")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false,
		"Run the analyzers of each report concurrently")
	cmd.Flags().BoolVar(&opts.noRecursive, "no-recursive", false,
		"Do not descend into subdirectories")
	cmd.Flags().StringSliceVar(&opts.exclude, "exclude", nil,
		"Gitignore style patterns of snapshot files to skip")
	cmd.Flags().IntVarP(&opts.maxGoroutines, "jobs", "j", 0,
		"Number of snapshot files audited concurrently")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "",
		"Log level: debug, info, warn, error")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "",
		"Log format: console, structured")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "",
		"Write Prometheus metrics to this textfile")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false,
		"Disable progress bars")
}

// loadConfig loads the configuration for target and applies explicitly set flags
func (o *runOptions) loadConfig(cmd *cobra.Command, target string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(o.configPath, target)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration", err)
	}

	flags := cmd.Flags()
	if flags.Changed("as-of") {
		cfg.Audit.AsOf = o.asOf
	}
	if flags.Changed("parallel") {
		cfg.Audit.Parallel = o.parallel
	}
	if flags.Changed("exclude") {
		cfg.Input.ExcludePatterns = append(cfg.Input.ExcludePatterns, o.exclude...)
	}
	if flags.Changed("jobs") {
		cfg.Performance.MaxGoroutines = o.maxGoroutines
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = o.logFormat
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.Textfile = o.metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, domain.NewConfigError("invalid configuration", err)
	}
	return cfg, nil
}

// auditRuntime wires the services used by a batch run
type auditRuntime struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *service.AuditMetrics
	progress domain.ProgressManager
	useCase  *app.AuditUseCase
	loader   *service.ConfigurationLoaderImpl
}

func newRuntime(cfg *config.Config, formatter domain.OutputFormatter, showProgress bool) (*auditRuntime, error) {
	logger, err := logging.NewLoggerFactory().CreateLogger(
		logging.LogLevel(cfg.Logging.Level),
		logging.LogFormat(cfg.Logging.Format),
	)
	if err != nil {
		return nil, domain.NewConfigError("failed to create logger", err)
	}

	metrics := service.NewAuditMetrics()
	progress := service.NewProgressManager(showProgress)

	executor := service.NewParallelExecutorWithProgress(&cfg.Performance, progress).
		WithLogger(logger).
		WithLabel("Auditing snapshots")

	auditService := service.NewAuditService(nil).
		WithLogger(logger).
		WithMetrics(metrics)

	useCase, err := app.NewAuditUseCaseBuilder().
		WithService(auditService).
		WithLoader(snapshot.NewFileLoader()).
		WithFormatter(formatter).
		WithExecutor(executor).
		WithLogger(logger).
		Build()
	if err != nil {
		return nil, err
	}

	return &auditRuntime{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		progress: progress,
		useCase:  useCase,
		loader:   service.NewConfigurationLoader(),
	}, nil
}

// request builds the batch request from the configuration and override
func (r *auditRuntime) request(override *domain.BatchAuditRequest) (*domain.BatchAuditRequest, error) {
	base, err := r.loader.RequestFromConfig(r.cfg)
	if err != nil {
		return nil, err
	}
	req := r.loader.MergeConfig(base, override)
	if err := r.loader.ValidateConfig(req); err != nil {
		return nil, domain.NewInvalidInputError("invalid request", err)
	}
	return req, nil
}

// audit runs the batch and writes the metrics textfile when configured
func (r *auditRuntime) audit(ctx context.Context, req *domain.BatchAuditRequest) (*domain.BatchAuditResponse, error) {
	response, err := r.useCase.Execute(ctx, *req)
	if err != nil {
		return nil, err
	}

	if err := r.metrics.WriteTextfile(r.cfg.Metrics.Textfile); err != nil {
		r.logger.Warn("metrics textfile not written", zap.String("path", r.cfg.Metrics.Textfile), zap.Error(err))
	}
	return response, nil
}

func (r *auditRuntime) close() {
	r.progress.Close()
	_ = r.logger.Sync()
}

func (o *runOptions) recursive() bool {
	return !o.noRecursive
}

func configTarget(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func noPathsError() error {
	return fmt.Errorf("no paths specified")
}
