package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/internal/config"
	"github.com/ludo-technologies/pygrade/internal/parser"
)

// Exit codes the tools use for "ran fine"
var (
	// flake8 and prospector exit 1 when they report findings
	lintSuccessCodes = []int{1}
	// pytest exits 1 when tests failed
	testSuccessCodes = []int{1}
	// pytest exits 4 on usage errors such as no test paths and 5 when no
	// tests were collected
	testEmptyCodes = []int{4, 5}
	// with --cov a usage error usually means pytest-cov is missing, so only
	// an empty collection counts as no tests
	testCoverageEmptyCodes = []int{5}
)

func toolTimeout(cfg config.ToolConfig) time.Duration {
	if cfg.TimeoutSeconds <= 0 {
		return DefaultInvocationTimeout
	}
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

func toolArgs(cfg config.ToolConfig, extra ...string) []string {
	args := make([]string, 0, len(cfg.Args)+len(extra))
	args = append(args, cfg.Args...)
	return append(args, extra...)
}

// StyleBugPipeline runs flake8 once with every category selected
type StyleBugPipeline struct {
	invoker domain.ProcessInvoker
	cfg     config.StyleBugConfig
}

// NewStyleBugPipeline creates the style/bug pipeline
func NewStyleBugPipeline(invoker domain.ProcessInvoker, cfg config.StyleBugConfig) *StyleBugPipeline {
	return &StyleBugPipeline{invoker: invoker, cfg: cfg}
}

// Tool implements domain.ToolPipeline
func (p *StyleBugPipeline) Tool() domain.ToolName { return domain.ToolStyleBug }

// Enabled implements domain.ToolPipeline
func (p *StyleBugPipeline) Enabled() bool { return p.cfg.Enabled }

// Run implements domain.ToolPipeline
func (p *StyleBugPipeline) Run(ctx context.Context, root string) (domain.ToolResult, error) {
	flags := p.cfg.Categories
	if len(flags) == 0 {
		flags = parser.DefaultStyleFlags()
	}

	res, err := p.invoker.Execute(ctx, domain.Invocation{
		Tool:         domain.ToolStyleBug,
		Command:      p.cfg.Command,
		Args:         toolArgs(p.cfg.ToolConfig, "--select="+strings.Join(flags, ","), "."),
		Dir:          root,
		SuccessCodes: lintSuccessCodes,
		Timeout:      toolTimeout(p.cfg.ToolConfig),
	})
	if err != nil {
		return nil, err
	}
	return parser.ParseStyleBug(string(res.Stdout), root, flags), nil
}

// AggregateLintPipeline runs prospector with JSON output
type AggregateLintPipeline struct {
	invoker domain.ProcessInvoker
	cfg     config.ToolConfig
}

// NewAggregateLintPipeline creates the aggregate lint pipeline
func NewAggregateLintPipeline(invoker domain.ProcessInvoker, cfg config.ToolConfig) *AggregateLintPipeline {
	return &AggregateLintPipeline{invoker: invoker, cfg: cfg}
}

// Tool implements domain.ToolPipeline
func (p *AggregateLintPipeline) Tool() domain.ToolName { return domain.ToolAggregateLint }

// Enabled implements domain.ToolPipeline
func (p *AggregateLintPipeline) Enabled() bool { return p.cfg.Enabled }

// Run implements domain.ToolPipeline
func (p *AggregateLintPipeline) Run(ctx context.Context, root string) (domain.ToolResult, error) {
	res, err := p.invoker.Execute(ctx, domain.Invocation{
		Tool:         domain.ToolAggregateLint,
		Command:      p.cfg.Command,
		Args:         toolArgs(p.cfg, "--output-format", "json", "."),
		Dir:          root,
		SuccessCodes: lintSuccessCodes,
		Timeout:      toolTimeout(p.cfg),
	})
	if err != nil {
		return nil, err
	}
	return parser.ParseAggregateLint(res.Stdout, root)
}

// ComplexityPipeline runs the four radon subcommands in sequence
type ComplexityPipeline struct {
	invoker domain.ProcessInvoker
	cfg     config.ToolConfig
	logger  *slog.Logger
}

// NewComplexityPipeline creates the complexity pipeline
func NewComplexityPipeline(invoker domain.ProcessInvoker, cfg config.ToolConfig, logger *slog.Logger) *ComplexityPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &ComplexityPipeline{invoker: invoker, cfg: cfg, logger: logger}
}

// Tool implements domain.ToolPipeline
func (p *ComplexityPipeline) Tool() domain.ToolName { return domain.ToolComplexity }

// Enabled implements domain.ToolPipeline
func (p *ComplexityPipeline) Enabled() bool { return p.cfg.Enabled }

// Run implements domain.ToolPipeline. A failing subcommand leaves its
// metrics out; the section fails only when every subcommand fails.
func (p *ComplexityPipeline) Run(ctx context.Context, root string) (domain.ToolResult, error) {
	var out parser.ComplexityOutputs
	subcommands := []struct {
		args []string
		dst  *[]byte
	}{
		{[]string{"raw", "-j"}, &out.Raw},
		{[]string{"cc", "-j"}, &out.CC},
		{[]string{"hal", "-f", "-j"}, &out.Halstead},
		{[]string{"mi", "-j"}, &out.MI},
	}

	var firstErr error
	succeeded := 0
	for _, sub := range subcommands {
		args := append(append([]string{}, sub.args...), p.cfg.Args...)
		res, err := p.invoker.Execute(ctx, domain.Invocation{
			Tool:    domain.ToolComplexity,
			Command: p.cfg.Command,
			Args:    append(args, "."),
			Dir:     root,
			Timeout: toolTimeout(p.cfg),
		})
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, domain.ErrToolNotFound) {
				return nil, err
			}
			p.logger.Warn("Complexity subcommand failed",
				slog.String("subcommand", sub.args[0]),
				slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		*sub.dst = res.Stdout
		succeeded++
	}
	if succeeded == 0 {
		return nil, firstErr
	}
	return parser.ParseComplexity(out, root)
}

// CohesionPipeline runs the cohesion tool in verbose mode
type CohesionPipeline struct {
	invoker domain.ProcessInvoker
	cfg     config.ToolConfig
}

// NewCohesionPipeline creates the cohesion pipeline
func NewCohesionPipeline(invoker domain.ProcessInvoker, cfg config.ToolConfig) *CohesionPipeline {
	return &CohesionPipeline{invoker: invoker, cfg: cfg}
}

// Tool implements domain.ToolPipeline
func (p *CohesionPipeline) Tool() domain.ToolName { return domain.ToolCohesion }

// Enabled implements domain.ToolPipeline
func (p *CohesionPipeline) Enabled() bool { return p.cfg.Enabled }

// Run implements domain.ToolPipeline
func (p *CohesionPipeline) Run(ctx context.Context, root string) (domain.ToolResult, error) {
	res, err := p.invoker.Execute(ctx, domain.Invocation{
		Tool:    domain.ToolCohesion,
		Command: p.cfg.Command,
		Args:    toolArgs(p.cfg, "-v", "-d", "."),
		Dir:     root,
		Timeout: toolTimeout(p.cfg),
	})
	if err != nil {
		return nil, err
	}

	result := parser.ParseCohesion(string(res.Stdout))
	for i := range result.Files {
		result.Files[i].Filename = parser.RelativePath(root, result.Files[i].Filename)
	}
	return result, nil
}

// TestsPipeline runs pytest once, optionally with coverage
type TestsPipeline struct {
	invoker domain.ProcessInvoker
	cfg     config.TestsConfig
}

// NewTestsPipeline creates the tests pipeline
func NewTestsPipeline(invoker domain.ProcessInvoker, cfg config.TestsConfig) *TestsPipeline {
	return &TestsPipeline{invoker: invoker, cfg: cfg}
}

// Tool implements domain.ToolPipeline
func (p *TestsPipeline) Tool() domain.ToolName { return domain.ToolTests }

// Enabled implements domain.ToolPipeline
func (p *TestsPipeline) Enabled() bool { return p.cfg.Enabled }

// Run implements domain.ToolPipeline. pytest is kept from writing its cache,
// bytecode and coverage data into the analyzed tree.
func (p *TestsPipeline) Run(ctx context.Context, root string) (domain.ToolResult, error) {
	scratch, err := os.MkdirTemp("", "pygrade-tests-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	extra := []string{"-rA", "-p", "no:cacheprovider"}
	emptyCodes := testEmptyCodes
	if p.cfg.Coverage {
		extra = append(extra, "--cov=.", "--cov-report=term")
		emptyCodes = testCoverageEmptyCodes
	}
	extra = append(extra, ".")

	res, err := p.invoker.Execute(ctx, domain.Invocation{
		Tool:    domain.ToolTests,
		Command: p.cfg.Command,
		Args:    toolArgs(p.cfg.ToolConfig, extra...),
		Dir:     root,
		Env: []string{
			"PYTHONDONTWRITEBYTECODE=1",
			"COVERAGE_FILE=" + filepath.Join(scratch, ".coverage"),
		},
		SuccessCodes: testSuccessCodes,
		EmptyCodes:   emptyCodes,
		Timeout:      toolTimeout(p.cfg.ToolConfig),
	})
	if err != nil {
		return nil, err
	}
	if res.Empty {
		return domain.EmptyTestOutcome(), nil
	}

	outcome := parser.ParseTestRun(string(res.Stdout))
	if p.cfg.Coverage {
		outcome.Coverage = parser.ParseCoverage(string(res.Stdout))
	}
	return outcome, nil
}

// NewToolPipelines builds one pipeline per tool, in report order
func NewToolPipelines(cfg *config.Config, invoker domain.ProcessInvoker, logger *slog.Logger) []domain.ToolPipeline {
	return []domain.ToolPipeline{
		NewStyleBugPipeline(invoker, cfg.Tools.StyleBug),
		NewAggregateLintPipeline(invoker, cfg.Tools.AggregateLint),
		NewComplexityPipeline(invoker, cfg.Tools.Complexity, logger),
		NewCohesionPipeline(invoker, cfg.Tools.Cohesion),
		NewTestsPipeline(invoker, cfg.Tools.Tests),
	}
}
