package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ludo-technologies/pygrade/domain"
)

// ReasonDisabled is the section reason for a tool turned off in configuration
const ReasonDisabled = "disabled by configuration"

// ReportAggregator runs every tool pipeline against a tree and merges the
// results into one Report
type ReportAggregator struct {
	pipelines []domain.ToolPipeline
	scheduler domain.ToolScheduler
	filter    domain.PathFilter
	locator   domain.FunctionLocator
	logger    *slog.Logger
}

// AggregatorOption configures a ReportAggregator
type AggregatorOption func(*ReportAggregator)

// WithPathFilter drops findings and metrics for filtered paths
func WithPathFilter(f domain.PathFilter) AggregatorOption {
	return func(a *ReportAggregator) {
		if f != nil {
			a.filter = f
		}
	}
}

// WithFunctionLocator attaches enclosing function names to style findings
func WithFunctionLocator(l domain.FunctionLocator) AggregatorOption {
	return func(a *ReportAggregator) { a.locator = l }
}

// WithLogger sets the aggregator's logger
func WithLogger(l *slog.Logger) AggregatorOption {
	return func(a *ReportAggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewReportAggregator creates an aggregator over the given pipelines
func NewReportAggregator(pipelines []domain.ToolPipeline, scheduler domain.ToolScheduler, opts ...AggregatorOption) *ReportAggregator {
	if scheduler == nil {
		scheduler = NewParallelExecutor()
	}
	a := &ReportAggregator{
		pipelines: pipelines,
		scheduler: scheduler,
		filter:    keepAll{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Gather runs the enabled pipelines concurrently and builds the Report.
// A failing pipeline becomes an unavailable section. When ctx is cancelled
// the Report holds only the sections that completed and ctx's error is
// returned alongside it.
func (a *ReportAggregator) Gather(ctx context.Context, root string) (*domain.Report, error) {
	absRoot, err := validateRoot(root)
	if err != nil {
		return nil, err
	}

	ctx, span := startGatherSpan(ctx, absRoot, len(a.pipelines))
	defer span.End()
	start := time.Now()

	var sections []domain.Section
	enabled := make([]domain.ToolPipeline, 0, len(a.pipelines))
	for _, p := range a.pipelines {
		if !p.Enabled() {
			sections = append(sections, domain.UnavailableSection(p.Tool(), ReasonDisabled))
			continue
		}
		enabled = append(enabled, p)
	}

	outcomes := a.scheduler.Schedule(ctx, absRoot, enabled)
	if failures := Failures(outcomes); failures != nil {
		a.logger.Debug("Some tools failed", slog.Int("count", len(failures)), slog.Any("error", failures))
	}

	for _, o := range outcomes {
		if o.Err != nil {
			if ctx.Err() != nil && isContextError(o.Err) {
				a.logger.Debug("Tool cancelled", slog.String("tool", string(o.Tool)))
				continue
			}
			a.logger.Warn("Tool unavailable",
				slog.String("tool", string(o.Tool)),
				slog.String("code", domain.ErrorCode(o.Err)),
				slog.String("reason", o.Err.Error()))
			sections = append(sections, domain.UnavailableSection(o.Tool, o.Err.Error()))
			continue
		}
		if o.Result == nil {
			sections = append(sections, domain.UnavailableSection(o.Tool, "no result"))
			continue
		}
		a.refine(absRoot, o.Result)
		a.logger.Debug("Tool completed",
			slog.String("tool", string(o.Tool)),
			slog.Duration("duration", o.Duration))
		sections = append(sections, domain.OKSection(o.Result))
	}

	report := domain.NewReport(absRoot, sections...)
	recordGatherMetrics(ctx, time.Since(start), report)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func validateRoot(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrInvalidRoot)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidRoot, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidRoot, abs)
	}
	return abs, nil
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// refine applies the path filter and, for style findings, the function
// locator. It runs before the Report is built; results are never touched
// afterwards.
func (a *ReportAggregator) refine(root string, result domain.ToolResult) {
	switch r := result.(type) {
	case *domain.StyleBugResult:
		for gi := range r.Groups {
			g := &r.Groups[gi]
			kept := make([]domain.Finding, 0, len(g.Findings))
			for _, f := range g.Findings {
				if !a.filter.Keep(f.File) {
					continue
				}
				if a.locator != nil && f.Function == "" {
					if name, ok := a.locator.Locate(filepath.Join(root, filepath.FromSlash(f.File)), f.Line); ok {
						f.Function = name
					}
				}
				kept = append(kept, f)
			}
			g.Findings = kept
		}

	case *domain.AggregateLintResult:
		kept := make([]domain.LintModule, 0, len(r.Modules))
		dropped := 0
		for _, m := range r.Modules {
			if a.filter.Keep(m.Path) {
				kept = append(kept, m)
			} else {
				dropped += len(m.Issues)
			}
		}
		r.Modules = kept
		r.Summary.ModuleCount = len(kept)
		r.Summary.IssueCount -= dropped

	case *domain.ComplexityResult:
		kept := make([]domain.FileMetrics, 0, len(r.Files))
		for _, f := range r.Files {
			if a.filter.Keep(f.File) {
				kept = append(kept, f)
			}
		}
		r.Files = kept

	case *domain.CohesionResult:
		kept := make([]domain.CohesionFile, 0, len(r.Files))
		for _, f := range r.Files {
			if a.filter.Keep(f.Filename) {
				kept = append(kept, f)
			}
		}
		r.Files = kept
	}
}
