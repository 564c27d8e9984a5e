package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/ludo-technologies/credaudit/internal/logging"
	"github.com/ludo-technologies/credaudit/internal/version"
	"go.uber.org/zap"
)

// AuditUseCase orchestrates a batch audit over snapshot files
type AuditUseCase struct {
	service    domain.AuditService
	loader     domain.SnapshotLoader
	formatter  domain.OutputFormatter
	executor   domain.ParallelExecutor
	fileHelper *FileHelper
	logger     *zap.Logger
	now        func() time.Time
}

// snapshotTask audits one file and stores the outcome in its slot
type snapshotTask struct {
	path string
	run  func(ctx context.Context, path string) (*domain.AuditResponse, error)
	slot *taskOutcome
}

type taskOutcome struct {
	done     bool
	response *domain.AuditResponse
	err      error
}

func (t *snapshotTask) Name() string {
	return filepath.Base(t.path)
}

func (t *snapshotTask) Execute(ctx context.Context) (interface{}, error) {
	resp, err := t.run(ctx, t.path)
	t.slot.done = true
	t.slot.response = resp
	t.slot.err = err
	return resp, err
}

func (t *snapshotTask) IsEnabled() bool {
	return true
}

// Execute collects snapshot files, audits them through the executor and
// returns the audits sorted by source. A file that fails to load or audit
// is reported in the response errors; the batch itself only fails when no
// file could be collected or the context ends before any work starts.
func (uc *AuditUseCase) Execute(ctx context.Context, req domain.BatchAuditRequest) (*domain.BatchAuditResponse, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, domain.NewInvalidInputError("invalid request", err)
	}

	start := time.Now()

	files, err := ResolveFilePaths(uc.fileHelper, req.Paths, req.Recursive, req.ExcludePatterns)
	if err != nil {
		return nil, domain.NewFileNotFoundError("failed to collect snapshot files", err)
	}
	if len(files) == 0 {
		return nil, domain.NewInvalidInputError("no snapshot files found in the specified paths", nil)
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("batch audit cancelled: %w", ctx.Err())
	default:
	}

	uc.logger.Info("batch audit started",
		zap.Int("files", len(files)),
		zap.Bool("parallel", req.Parallel),
	)

	outcomes := make([]taskOutcome, len(files))
	tasks := make([]domain.ExecutableTask, len(files))
	for i, path := range files {
		tasks[i] = &snapshotTask{
			path: path,
			slot: &outcomes[i],
			run: func(ctx context.Context, path string) (*domain.AuditResponse, error) {
				return uc.auditFile(ctx, path, req)
			},
		}
	}

	if err := uc.executor.Execute(ctx, tasks); err != nil {
		uc.logger.Debug("batch finished with failures", zap.Error(err))
	}

	response := &domain.BatchAuditResponse{
		Audits:  []domain.AuditResponse{},
		Version: version.Version,
	}
	for i, outcome := range outcomes {
		switch {
		case outcome.err != nil:
			response.Errors = append(response.Errors, fmt.Sprintf("%s: %v", files[i], outcome.err))
		case !outcome.done:
			reason := "not audited"
			if ctx.Err() != nil {
				reason = fmt.Sprintf("not audited: %v", ctx.Err())
			}
			response.Errors = append(response.Errors, fmt.Sprintf("%s: %s", files[i], reason))
		case outcome.response != nil:
			response.Audits = append(response.Audits, *outcome.response)
		}
	}

	sort.SliceStable(response.Audits, func(i, j int) bool {
		return response.Audits[i].Source < response.Audits[j].Source
	})

	duration := time.Since(start)
	response.GeneratedAt = uc.now().Format(time.RFC3339)
	response.DurationMs = duration.Milliseconds()

	uc.logger.Info("batch audit completed",
		zap.Int("audited", len(response.Audits)),
		zap.Int("failed", len(response.Errors)),
		zap.Duration("duration", duration),
	)

	return response, nil
}

// auditFile loads and audits one snapshot file
func (uc *AuditUseCase) auditFile(ctx context.Context, path string, req domain.BatchAuditRequest) (*domain.AuditResponse, error) {
	snap, err := uc.loader.LoadFile(path)
	if err != nil {
		return nil, err
	}

	return uc.service.Audit(ctx, domain.AuditRequest{
		Snapshot: snap,
		Source:   path,
		AsOf:     req.AsOf,
		Parallel: req.Parallel,
	})
}

// AuditFile audits a single snapshot file
func (uc *AuditUseCase) AuditFile(ctx context.Context, path string, req domain.BatchAuditRequest) (*domain.AuditResponse, error) {
	if !uc.fileHelper.IsSnapshotFile(path) {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("not a snapshot file: %s", path), nil)
	}

	exists, err := uc.fileHelper.FileExists(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	if !exists {
		return nil, domain.NewFileNotFoundError(path, fmt.Errorf("file does not exist"))
	}

	return uc.auditFile(ctx, path, req)
}

// WriteOutput writes response in the request format to the request writer,
// or to a timestamped file under OutputPath when one is set. It returns the
// written file path, empty when writing to the writer.
func (uc *AuditUseCase) WriteOutput(response *domain.BatchAuditResponse, req domain.BatchAuditRequest) (string, error) {
	if req.OutputPath == "" {
		if req.OutputWriter == nil {
			return "", domain.NewOutputError("no output destination", nil)
		}
		return "", uc.formatter.Write(response, req.OutputFormat, req.OutputWriter)
	}

	if err := os.MkdirAll(req.OutputPath, 0o755); err != nil {
		return "", domain.NewOutputError("failed to create output directory", err)
	}

	name := fmt.Sprintf("credaudit_%s.%s", uc.now().Format("20060102_150405"), req.OutputFormat)
	path := filepath.Join(req.OutputPath, name)

	file, err := os.Create(path)
	if err != nil {
		return "", domain.NewOutputError("failed to create output file", err)
	}
	defer file.Close()

	if err := uc.formatter.Write(response, req.OutputFormat, file); err != nil {
		return "", err
	}
	return path, nil
}

// validateRequest validates the batch request
func (uc *AuditUseCase) validateRequest(req domain.BatchAuditRequest) error {
	if len(req.Paths) == 0 {
		return fmt.Errorf("no input paths specified")
	}

	switch req.OutputFormat {
	case "", domain.OutputFormatText, domain.OutputFormatJSON, domain.OutputFormatYAML,
		domain.OutputFormatCSV, domain.OutputFormatXLSX:
	default:
		return fmt.Errorf("unsupported output format: %s", req.OutputFormat)
	}

	return nil
}

// AuditUseCaseBuilder provides a builder pattern for creating AuditUseCase
type AuditUseCaseBuilder struct {
	service    domain.AuditService
	loader     domain.SnapshotLoader
	formatter  domain.OutputFormatter
	executor   domain.ParallelExecutor
	fileHelper *FileHelper
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuditUseCaseBuilder creates a new builder
func NewAuditUseCaseBuilder() *AuditUseCaseBuilder {
	return &AuditUseCaseBuilder{}
}

// WithService sets the audit service
func (b *AuditUseCaseBuilder) WithService(service domain.AuditService) *AuditUseCaseBuilder {
	b.service = service
	return b
}

// WithLoader sets the snapshot loader
func (b *AuditUseCaseBuilder) WithLoader(loader domain.SnapshotLoader) *AuditUseCaseBuilder {
	b.loader = loader
	return b
}

// WithFormatter sets the output formatter
func (b *AuditUseCaseBuilder) WithFormatter(formatter domain.OutputFormatter) *AuditUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithExecutor sets the executor that runs one task per snapshot file
func (b *AuditUseCaseBuilder) WithExecutor(executor domain.ParallelExecutor) *AuditUseCaseBuilder {
	b.executor = executor
	return b
}

// WithFileHelper sets the file helper
func (b *AuditUseCaseBuilder) WithFileHelper(fileHelper *FileHelper) *AuditUseCaseBuilder {
	b.fileHelper = fileHelper
	return b
}

// WithLogger sets the logger
func (b *AuditUseCaseBuilder) WithLogger(logger *zap.Logger) *AuditUseCaseBuilder {
	b.logger = logger
	return b
}

// WithClock sets the clock used for timestamps and output file names
func (b *AuditUseCaseBuilder) WithClock(now func() time.Time) *AuditUseCaseBuilder {
	b.now = now
	return b
}

// Build creates the AuditUseCase with the configured dependencies
func (b *AuditUseCaseBuilder) Build() (*AuditUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("audit service is required")
	}
	if b.loader == nil {
		return nil, fmt.Errorf("snapshot loader is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}
	if b.executor == nil {
		return nil, fmt.Errorf("parallel executor is required")
	}

	uc := &AuditUseCase{
		service:    b.service,
		loader:     b.loader,
		formatter:  b.formatter,
		executor:   b.executor,
		fileHelper: b.fileHelper,
		logger:     logging.OrNop(b.logger),
		now:        b.now,
	}

	if uc.fileHelper == nil {
		uc.fileHelper = NewFileHelper()
	}
	if uc.now == nil {
		uc.now = time.Now
	}

	return uc, nil
}
