package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/ludo-technologies/credaudit/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubTask struct {
	name     string
	disabled bool
	run      func(ctx context.Context) error
}

func (t *stubTask) Name() string    { return t.name }
func (t *stubTask) IsEnabled() bool { return !t.disabled }

func (t *stubTask) Execute(ctx context.Context) (interface{}, error) {
	if t.run == nil {
		return nil, nil
	}
	return nil, t.run(ctx)
}

func snapshotTasks(names ...string) []domain.ExecutableTask {
	tasks := make([]domain.ExecutableTask, len(names))
	for i, n := range names {
		tasks[i] = &stubTask{name: n}
	}
	return tasks
}

type recordingProgress struct {
	mu        sync.Mutex
	label     string
	total     int
	done      int
	described []string
	completed bool
}

func (p *recordingProgress) StartTask(description string, total int) domain.TaskProgress {
	p.label, p.total = description, total
	return p
}

func (p *recordingProgress) IsInteractive() bool { return false }
func (p *recordingProgress) Close()              {}

func (p *recordingProgress) Increment(n int) {
	p.mu.Lock()
	p.done += n
	p.mu.Unlock()
}

func (p *recordingProgress) Describe(d string) {
	p.mu.Lock()
	p.described = append(p.described, d)
	p.mu.Unlock()
}

func (p *recordingProgress) Complete() { p.completed = true }

func TestNewParallelExecutorFromConfig(t *testing.T) {
	tests := []struct {
		name            string
		cfg             config.PerformanceConfig
		wantConcurrency int
		wantTimeout     time.Duration
	}{
		{"configured", config.PerformanceConfig{MaxGoroutines: 8, TimeoutSeconds: 30}, 8, 30 * time.Second},
		{"invalid concurrency", config.PerformanceConfig{MaxGoroutines: 0, TimeoutSeconds: 30}, DefaultMaxConcurrency, 30 * time.Second},
		{"no deadline", config.PerformanceConfig{MaxGoroutines: 2}, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewParallelExecutorFromConfig(&tt.cfg)
			assert.Equal(t, tt.wantConcurrency, e.maxConcurrency)
			assert.Equal(t, tt.wantTimeout, e.timeout)
			assert.Equal(t, defaultTaskLabel, e.label)
		})
	}
}

func TestParallelExecutor_RunsEveryEnabledTask(t *testing.T) {
	var ran atomic.Int32
	count := func(context.Context) error {
		ran.Add(1)
		return nil
	}
	tasks := []domain.ExecutableTask{
		&stubTask{name: AnalyzerViolations, run: count},
		&stubTask{name: AnalyzerUtilization, run: count},
		&stubTask{name: AnalyzerTradelines, run: count, disabled: true},
	}

	e := NewParallelExecutorFromConfig(&config.PerformanceConfig{MaxGoroutines: 3})
	require.NoError(t, e.Execute(context.Background(), tasks))
	assert.Equal(t, int32(2), ran.Load())
}

func TestParallelExecutor_NothingToRun(t *testing.T) {
	progress := &recordingProgress{}
	e := NewParallelExecutorWithProgress(&config.PerformanceConfig{MaxGoroutines: 2}, progress)

	assert.NoError(t, e.Execute(context.Background(), nil))
	assert.NoError(t, e.Execute(context.Background(), []domain.ExecutableTask{&stubTask{name: "x", disabled: true}}))
	assert.Empty(t, progress.label, "no progress task should start without work")
}

func TestParallelExecutor_FailuresAreAggregatedInTaskOrder(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tasks := []domain.ExecutableTask{
		&stubTask{name: "a.json", run: func(context.Context) error {
			time.Sleep(30 * time.Millisecond)
			return errors.New("invalid date")
		}},
		&stubTask{name: "b.json"},
		&stubTask{name: "c.json", run: func(context.Context) error {
			return domain.NewValidationError("negative balance", nil)
		}},
	}

	e := NewParallelExecutorFromConfig(&config.PerformanceConfig{MaxGoroutines: 3}).WithLogger(zap.New(core))
	err := e.Execute(context.Background(), tasks)

	var agg *AggregatedError
	require.ErrorAs(t, err, &agg)
	require.Len(t, agg.Errors, 2)
	assert.Equal(t, "a.json", agg.Errors[0].TaskName)
	assert.Equal(t, "c.json", agg.Errors[1].TaskName)
	assert.Contains(t, err.Error(), "2 tasks failed")
	assert.Equal(t, 2, logs.FilterMessage("task failed").Len())
}

func TestParallelExecutor_RespectsConcurrencyLimit(t *testing.T) {
	var current, peak atomic.Int32
	run := func(context.Context) error {
		n := current.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		current.Add(-1)
		return nil
	}

	tasks := make([]domain.ExecutableTask, 8)
	for i := range tasks {
		tasks[i] = &stubTask{name: "snapshot", run: run}
	}

	e := NewParallelExecutorFromConfig(&config.PerformanceConfig{MaxGoroutines: 2})
	require.NoError(t, e.Execute(context.Background(), tasks))
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestParallelExecutor_Timeout(t *testing.T) {
	slow := &stubTask{name: "slow.json", run: func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	}}

	e := NewParallelExecutorFromConfig(&config.PerformanceConfig{MaxGoroutines: 1})
	e.timeout = 20 * time.Millisecond

	err := e.Execute(context.Background(), []domain.ExecutableTask{slow})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParallelExecutor_CancelledContextSkipsWork(t *testing.T) {
	var ran atomic.Int32
	tasks := []domain.ExecutableTask{
		&stubTask{name: "a.json", run: func(context.Context) error { ran.Add(1); return nil }},
		&stubTask{name: "b.json", run: func(context.Context) error { ran.Add(1); return nil }},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewParallelExecutorFromConfig(&config.PerformanceConfig{MaxGoroutines: 1})
	err := e.Execute(ctx, tasks)

	var agg *AggregatedError
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Errors, 2)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, ran.Load())
}

func TestParallelExecutor_ReportsProgress(t *testing.T) {
	progress := &recordingProgress{}
	e := NewParallelExecutorWithProgress(&config.PerformanceConfig{MaxGoroutines: 2}, progress).
		WithLabel("Auditing snapshots")

	require.NoError(t, e.Execute(context.Background(), snapshotTasks("a.json", "b.yaml", "c.yml")))

	assert.Equal(t, "Auditing snapshots", progress.label)
	assert.Equal(t, 3, progress.total)
	assert.Equal(t, 3, progress.done)
	assert.ElementsMatch(t, []string{"a.json", "b.yaml", "c.yml"}, progress.described)
	assert.True(t, progress.completed)
}

func TestFuncTask(t *testing.T) {
	task := NewFuncTask(AnalyzerUtilization, func(ctx context.Context) (interface{}, error) {
		return 42, nil
	})

	assert.Equal(t, AnalyzerUtilization, task.Name())
	assert.True(t, task.IsEnabled())
	v, err := task.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestAggregatedError(t *testing.T) {
	cause := errors.New("parse error")

	assert.Equal(t, "no errors", (&AggregatedError{}).Error())
	assert.Nil(t, (&AggregatedError{}).Unwrap())

	single := &AggregatedError{Errors: []TaskError{{TaskName: "a.json", Err: cause}}}
	assert.Equal(t, "[a.json] parse error", single.Error())
	assert.ErrorIs(t, single, cause)

	te := TaskError{TaskName: "b.json", Err: cause}
	assert.Equal(t, cause, te.Unwrap())
}
