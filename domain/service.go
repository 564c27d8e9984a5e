package domain

import (
	"context"
	"io"
	"time"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
	OutputFormatXLSX OutputFormat = "xlsx"
)

// AuditRequest represents a request to audit one report snapshot
type AuditRequest struct {
	// Snapshot is a *ReportSnapshot, a ReportSnapshot, a key/value map or any
	// struct carrying the same field names
	Snapshot any

	// Source names where the snapshot came from (file path, id); informational
	Source string

	// AsOf is the reference time; zero means the service clock
	AsOf time.Time

	// Parallel runs the independent analyzers concurrently
	Parallel bool
}

// AuditResponse wraps an AuditResult with run metadata
type AuditResponse struct {
	Result      *AuditResult `json:"result" yaml:"result"`
	Source      string       `json:"source,omitempty" yaml:"source,omitempty"`
	GeneratedAt string       `json:"generated_at" yaml:"generated_at"`
	DurationMs  int64        `json:"duration_ms" yaml:"duration_ms"`
	Version     string       `json:"version" yaml:"version"`
}

// BatchAuditRequest represents a request to audit snapshot files
type BatchAuditRequest struct {
	// Input files or directories
	Paths []string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string
	ShowDetails  bool

	// Audit options
	AsOf     time.Time
	Parallel bool

	// File collection
	Recursive       bool
	ExcludePatterns []string

	// Configuration
	ConfigPath string
}

// BatchAuditResponse collects the audits of a batch run
type BatchAuditResponse struct {
	Audits      []AuditResponse `json:"audits" yaml:"audits"`
	Errors      []string        `json:"errors,omitempty" yaml:"errors,omitempty"`
	GeneratedAt string          `json:"generated_at" yaml:"generated_at"`
	DurationMs  int64           `json:"duration_ms" yaml:"duration_ms"`
	Version     string          `json:"version" yaml:"version"`
}

// AuditService audits a single report snapshot
type AuditService interface {
	Audit(ctx context.Context, req AuditRequest) (*AuditResponse, error)
}

// SnapshotLoader reads report snapshots from files
type SnapshotLoader interface {
	LoadFile(path string) (*ReportSnapshot, error)
}

// OutputFormatter writes audit results in a given format
type OutputFormatter interface {
	Write(response *BatchAuditResponse, format OutputFormat, writer io.Writer) error
}

// ProgressManager creates progress trackers for long running work
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks the progress of one task
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}

// ExecutableTask is a unit of work run by a ParallelExecutor
type ExecutableTask interface {
	Name() string
	Execute(ctx context.Context) (interface{}, error)
	IsEnabled() bool
}

// ParallelExecutor runs tasks concurrently
type ParallelExecutor interface {
	Execute(ctx context.Context, tasks []ExecutableTask) error
}
