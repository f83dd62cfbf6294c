package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/internal/config"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxConcurrency is used when the configured value is not positive
	DefaultMaxConcurrency = 4
	// DefaultGatherTimeout bounds one Schedule call when none is configured
	DefaultGatherTimeout = 15 * time.Minute
)

// ToolFailures lists the tools whose pipelines failed in one run
type ToolFailures map[domain.ToolName]error

// Error implements the error interface
func (f ToolFailures) Error() string {
	if len(f) == 0 {
		return "no tool failures"
	}
	names := make([]string, 0, len(f))
	for tool := range f {
		names = append(names, string(tool))
	}
	sort.Strings(names)

	if len(names) == 1 {
		return fmt.Sprintf("%s: %v", names[0], f[domain.ToolName(names[0])])
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d tools failed:", len(names))
	for _, name := range names {
		fmt.Fprintf(&sb, "\n  %s: %v", name, f[domain.ToolName(name)])
	}
	return sb.String()
}

// Failures collects the failed outcomes, or nil when every tool succeeded
func Failures(outcomes []domain.ToolOutcome) ToolFailures {
	var failures ToolFailures
	for _, o := range outcomes {
		if o.Err == nil {
			continue
		}
		if failures == nil {
			failures = ToolFailures{}
		}
		failures[o.Tool] = o.Err
	}
	return failures
}

// ParallelExecutor runs tool pipelines on an errgroup with a concurrency limit
type ParallelExecutor struct {
	maxConcurrency int
	timeout        time.Duration
	progress       domain.ProgressManager
}

// ExecutorOption configures a ParallelExecutor
type ExecutorOption func(*ParallelExecutor)

// WithMaxConcurrency caps the number of tools run at once
func WithMaxConcurrency(n int) ExecutorOption {
	return func(e *ParallelExecutor) {
		if n > 0 {
			e.maxConcurrency = n
		}
	}
}

// WithGatherTimeout bounds the whole run
func WithGatherTimeout(d time.Duration) ExecutorOption {
	return func(e *ParallelExecutor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithProgress reports one tick per finished tool
func WithProgress(pm domain.ProgressManager) ExecutorOption {
	return func(e *ParallelExecutor) { e.progress = pm }
}

// NewParallelExecutor creates an executor sized to the machine
func NewParallelExecutor(opts ...ExecutorOption) *ParallelExecutor {
	e := &ParallelExecutor{
		maxConcurrency: runtime.NumCPU(),
		timeout:        DefaultGatherTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewParallelExecutorFromConfig creates an executor from the performance
// settings. Non-positive values fall back to the defaults.
func NewParallelExecutorFromConfig(cfg *config.PerformanceConfig, opts ...ExecutorOption) *ParallelExecutor {
	e := &ParallelExecutor{
		maxConcurrency: DefaultMaxConcurrency,
		timeout:        DefaultGatherTimeout,
	}
	if cfg != nil {
		WithMaxConcurrency(cfg.MaxGoroutines)(e)
		WithGatherTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)(e)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schedule runs every pipeline against root. Each pipeline gets exactly one
// outcome, in input order; a pipeline that never started because ctx was
// cancelled or the run timed out carries the context error. One failing
// tool never cancels the others.
func (e *ParallelExecutor) Schedule(ctx context.Context, root string, pipelines []domain.ToolPipeline) []domain.ToolOutcome {
	outcomes := make([]domain.ToolOutcome, len(pipelines))
	if len(pipelines) == 0 {
		return outcomes
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var task domain.TaskProgress = SilentProgress{}
	if e.progress != nil {
		task = e.progress.StartTask("Running tools", len(pipelines))
	}
	defer task.Complete()

	// errgroup's derived context is not used: it would cancel on first error
	g := new(errgroup.Group)
	g.SetLimit(e.maxConcurrency)

	for i, p := range pipelines {
		outcomes[i].Tool = p.Tool()
		g.Go(func() error {
			if err := runCtx.Err(); err != nil {
				outcomes[i].Err = err
				return nil
			}

			start := time.Now()
			result, err := p.Run(runCtx, root)
			outcomes[i].Result = result
			outcomes[i].Err = err
			outcomes[i].Duration = time.Since(start)

			task.Describe(string(p.Tool()))
			task.Increment(1)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}
