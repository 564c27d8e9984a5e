package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/ludo-technologies/credaudit/internal/config"
	"github.com/ludo-technologies/credaudit/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Default values for parallel executor
const (
	// DefaultMaxConcurrency is used when the configured value is invalid
	DefaultMaxConcurrency = 4

	// DefaultTimeout replaces a negative configured timeout
	DefaultTimeout = 5 * time.Minute

	defaultTaskLabel = "Running tasks"
)

// TaskError represents a single task failure
type TaskError struct {
	TaskName string
	Err      error

	index int
}

// Error implements the error interface
func (e TaskError) Error() string {
	return fmt.Sprintf("[%s] %v", e.TaskName, e.Err)
}

// Unwrap returns the underlying error
func (e TaskError) Unwrap() error {
	return e.Err
}

// AggregatedError collects all task failures in submission order
type AggregatedError struct {
	Errors []TaskError
}

// Error implements the error interface
func (e *AggregatedError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d tasks failed:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Unwrap returns the first error for errors.Is/As compatibility
func (e *AggregatedError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0].Err
}

// ParallelExecutorImpl implements domain.ParallelExecutor on an errgroup.
// A zero timeout runs without a deadline.
type ParallelExecutorImpl struct {
	maxConcurrency int
	timeout        time.Duration
	label          string
	progress       domain.ProgressManager
	logger         *zap.Logger
}

// NewParallelExecutorFromConfig creates a parallel executor from configuration
func NewParallelExecutorFromConfig(cfg *config.PerformanceConfig) *ParallelExecutorImpl {
	maxConcurrency := cfg.MaxGoroutines
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}

	timeout := cfg.Timeout()
	if timeout < 0 {
		timeout = DefaultTimeout
	}

	return &ParallelExecutorImpl{
		maxConcurrency: maxConcurrency,
		timeout:        timeout,
		label:          defaultTaskLabel,
		logger:         zap.NewNop(),
	}
}

// NewParallelExecutorWithProgress creates a parallel executor with progress tracking
func NewParallelExecutorWithProgress(cfg *config.PerformanceConfig, pm domain.ProgressManager) *ParallelExecutorImpl {
	executor := NewParallelExecutorFromConfig(cfg)
	executor.progress = pm
	return executor
}

// WithLogger sets the logger used for task failures
func (e *ParallelExecutorImpl) WithLogger(logger *zap.Logger) *ParallelExecutorImpl {
	e.logger = logging.OrNop(logger)
	return e
}

// WithLabel sets the progress bar description
func (e *ParallelExecutorImpl) WithLabel(label string) *ParallelExecutorImpl {
	if label != "" {
		e.label = label
	}
	return e
}

// Execute runs tasks in parallel with the configured concurrency and timeout.
// Every enabled task runs even when others fail; failures are returned as
// an *AggregatedError ordered like tasks.
func (e *ParallelExecutorImpl) Execute(ctx context.Context, tasks []domain.ExecutableTask) error {
	enabledTasks := e.filterEnabledTasks(tasks)
	if len(enabledTasks) == 0 {
		return nil
	}

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var task domain.TaskProgress = &NoOpTaskProgress{}
	if e.progress != nil {
		task = e.progress.StartTask(e.label, len(enabledTasks))
	}
	defer task.Complete()

	g, gCtx := errgroup.WithContext(runCtx)
	g.SetLimit(e.maxConcurrency)

	var errMu sync.Mutex
	var taskErrors []TaskError

	for i, t := range enabledTasks {
		i, t := i, t
		g.Go(func() error {
			var err error
			select {
			case <-gCtx.Done():
				err = gCtx.Err()
			default:
				_, err = t.Execute(gCtx)
			}

			task.Describe(t.Name())
			task.Increment(1)

			if err != nil {
				e.logger.Warn("task failed", zap.String("task", t.Name()), zap.Error(err))
				errMu.Lock()
				taskErrors = append(taskErrors, TaskError{TaskName: t.Name(), Err: err, index: i})
				errMu.Unlock()
			}

			// Failures are collected above so the remaining tasks keep running
			return nil
		})
	}

	_ = g.Wait()

	if len(taskErrors) > 0 {
		sort.Slice(taskErrors, func(a, b int) bool {
			return taskErrors[a].index < taskErrors[b].index
		})
		return &AggregatedError{Errors: taskErrors}
	}

	return nil
}

// filterEnabledTasks returns only tasks where IsEnabled() returns true
func (e *ParallelExecutorImpl) filterEnabledTasks(tasks []domain.ExecutableTask) []domain.ExecutableTask {
	enabled := make([]domain.ExecutableTask, 0, len(tasks))
	for _, t := range tasks {
		if t.IsEnabled() {
			enabled = append(enabled, t)
		}
	}
	return enabled
}

// FuncTask adapts a function to domain.ExecutableTask
type FuncTask struct {
	name    string
	enabled bool
	fn      func(ctx context.Context) (interface{}, error)
}

// NewFuncTask creates an enabled task running fn
func NewFuncTask(name string, fn func(ctx context.Context) (interface{}, error)) *FuncTask {
	return &FuncTask{name: name, enabled: true, fn: fn}
}

// Name returns the task name
func (t *FuncTask) Name() string {
	return t.name
}

// Execute runs the wrapped function
func (t *FuncTask) Execute(ctx context.Context) (interface{}, error) {
	return t.fn(ctx)
}

// IsEnabled reports whether the task should run
func (t *FuncTask) IsEnabled() bool {
	return t.enabled
}
