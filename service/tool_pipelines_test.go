package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/internal/config"
	"github.com/ludo-technologies/pygrade/internal/testutil"
)

// fakeInvoker returns canned results keyed by "<tool> <first arg>"
type fakeInvoker struct {
	mu      sync.Mutex
	results map[string]*domain.InvocationResult
	errs    map[string]error
	calls   []domain.Invocation
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{
		results: make(map[string]*domain.InvocationResult),
		errs:    make(map[string]error),
	}
}

func invocationKey(tool domain.ToolName, firstArg string) string {
	return string(tool) + " " + firstArg
}

func (f *fakeInvoker) on(tool domain.ToolName, firstArg, stdout string) *fakeInvoker {
	f.results[invocationKey(tool, firstArg)] = &domain.InvocationResult{Stdout: []byte(stdout)}
	return f
}

func (f *fakeInvoker) fail(tool domain.ToolName, firstArg string, err error) *fakeInvoker {
	f.errs[invocationKey(tool, firstArg)] = err
	return f
}

func (f *fakeInvoker) Execute(ctx context.Context, inv domain.Invocation) (*domain.InvocationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, inv)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	first := ""
	if len(inv.Args) > 0 {
		first = inv.Args[0]
	}
	for _, key := range []string{invocationKey(inv.Tool, first), invocationKey(inv.Tool, "")} {
		if err, ok := f.errs[key]; ok {
			return nil, err
		}
		if res, ok := f.results[key]; ok {
			return res, nil
		}
	}
	return &domain.InvocationResult{}, nil
}

func (f *fakeInvoker) callsFor(tool domain.ToolName) []domain.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Invocation
	for _, c := range f.calls {
		if c.Tool == tool {
			out = append(out, c)
		}
	}
	return out
}

func TestStyleBugPipeline_Run(t *testing.T) {
	invoker := newFakeInvoker().on(domain.ToolStyleBug, "",
		"./app/models.py:11:1: B006 do not use mutable data structures for argument defaults\n"+
			"./app/models.py:3:80: E501 line too long (88 > 79 characters)\n")

	cfg := config.DefaultConfig().Tools.StyleBug
	result, err := NewStyleBugPipeline(invoker, cfg).Run(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	styleBug := result.(*domain.StyleBugResult)
	if len(styleBug.Bugs()) != 1 {
		t.Errorf("expected 1 bug, got %d", len(styleBug.Bugs()))
	}
	if styleBug.Bugs()[0].File != "app/models.py" {
		t.Errorf("expected root-relative path, got %s", styleBug.Bugs()[0].File)
	}

	calls := invoker.callsFor(domain.ToolStyleBug)
	if len(calls) != 1 {
		t.Fatalf("expected a single flake8 invocation, got %d", len(calls))
	}
	args := strings.Join(calls[0].Args, " ")
	if args != "--select=B,E,W,F,N ." {
		t.Errorf("unexpected args: %s", args)
	}
	if calls[0].Dir != "/repo" {
		t.Errorf("expected to run in the root, got %s", calls[0].Dir)
	}
}

func TestAggregateLintPipeline_ParseError(t *testing.T) {
	invoker := newFakeInvoker().on(domain.ToolAggregateLint, "", "this is not json")

	_, err := NewAggregateLintPipeline(invoker, config.DefaultConfig().Tools.AggregateLint).
		Run(context.Background(), "/repo")

	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestComplexityPipeline_RunsAllSubcommands(t *testing.T) {
	invoker := newFakeInvoker().
		on(domain.ToolComplexity, "raw", `{"a.py": {"loc": 3, "lloc": 2, "sloc": 2, "comments": 0, "multi": 0, "blank": 1, "single_comments": 0}}`).
		on(domain.ToolComplexity, "cc", `{"a.py": [{"type": "function", "name": "f", "lineno": 1, "endline": 2, "complexity": 1, "rank": "A"}]}`).
		fail(domain.ToolComplexity, "hal", domain.NewToolInvocationError(domain.ToolComplexity, "radon", domain.ErrUnexpectedExit)).
		on(domain.ToolComplexity, "mi", `{"a.py": {"mi": 88.5, "rank": "A"}}`)

	result, err := NewComplexityPipeline(invoker, config.DefaultConfig().Tools.Complexity, nil).
		Run(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("one failed subcommand should not fail the section: %v", err)
	}

	complexity := result.(*domain.ComplexityResult)
	if len(complexity.Files) != 1 || complexity.Files[0].MaintainabilityIndex != 88.5 {
		t.Errorf("unexpected result: %+v", complexity.Files)
	}

	var subs []string
	for _, c := range invoker.callsFor(domain.ToolComplexity) {
		subs = append(subs, c.Args[0])
		if c.Args[len(c.Args)-1] != "." {
			t.Errorf("%s should target the root, got %v", c.Args[0], c.Args)
		}
	}
	if strings.Join(subs, ",") != "raw,cc,hal,mi" {
		t.Errorf("unexpected subcommands: %v", subs)
	}
}

func TestComplexityPipeline_ToolNotFound(t *testing.T) {
	invoker := newFakeInvoker().fail(domain.ToolComplexity, "",
		domain.NewToolInvocationError(domain.ToolComplexity, "radon", domain.ErrToolNotFound))

	_, err := NewComplexityPipeline(invoker, config.DefaultConfig().Tools.Complexity, nil).
		Run(context.Background(), "/repo")
	if !errors.Is(err, domain.ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
	if n := len(invoker.callsFor(domain.ToolComplexity)); n != 1 {
		t.Errorf("a missing binary should stop after one call, got %d", n)
	}
}

func TestCohesionPipeline_RelativeFilenames(t *testing.T) {
	invoker := newFakeInvoker().on(domain.ToolCohesion, "", `File: /repo/app/models.py
  Class: Account (1:0)
    Function: deposit 1/2 50.00%
    Total: 50.00%
`)

	result, err := NewCohesionPipeline(invoker, config.DefaultConfig().Tools.Cohesion).
		Run(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	cohesion := result.(*domain.CohesionResult)
	if len(cohesion.Files) != 1 || cohesion.Files[0].Filename != "app/models.py" {
		t.Errorf("expected root-relative filename, got %+v", cohesion.Files)
	}
}

func TestTestsPipeline_EmptyRun(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.results[invocationKey(domain.ToolTests, "")] = &domain.InvocationResult{ExitCode: 5, Empty: true}

	result, err := NewTestsPipeline(invoker, config.DefaultConfig().Tools.Tests).
		Run(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	outcome := result.(*domain.TestOutcome)
	if !outcome.NoTestsRun() {
		t.Errorf("expected no tests run, got %+v", outcome)
	}
}

func TestTestsPipeline_UsageErrorExit(t *testing.T) {
	tests := []struct {
		name     string
		coverage bool
		wantErr  bool
	}{
		{name: "without coverage counts as no tests", coverage: false},
		{name: "with coverage is a failure", coverage: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			cfg := config.DefaultConfig().Tools.Tests
			cfg.Coverage = tt.coverage
			cfg.Command = testutil.WriteFakeTool(t, dir, "pytest", testutil.FakeTool{
				Stderr:   "pytest: error: unrecognized arguments: --cov=. --cov-report=term",
				ExitCode: 4,
			})

			result, err := NewTestsPipeline(NewProcessInvoker(nil), cfg).Run(context.Background(), dir)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrUnexpectedExit) {
					t.Fatalf("expected ErrUnexpectedExit, got %v", err)
				}
				var invErr *domain.ToolInvocationError
				if !errors.As(err, &invErr) || invErr.ExitCode != 4 {
					t.Errorf("expected exit code 4 in the invocation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if !result.(*domain.TestOutcome).NoTestsRun() {
				t.Errorf("expected no tests run, got %+v", result)
			}
		})
	}
}

func TestTestsPipeline_CoverageArgsAndEnv(t *testing.T) {
	invoker := newFakeInvoker().on(domain.ToolTests, "", `============================= test session starts ==============================
collected 1 item

tests/test_models.py .                                                   [100%]

---------- coverage: platform linux, python 3.11.4-final-0 -----------
Name            Stmts   Miss  Cover
-----------------------------------
app/models.py      10      2    80%
-----------------------------------
TOTAL              10      2    80%

==================================== PASSES ====================================
=========================== short test summary info ============================
PASSED tests/test_models.py::test_deposit
============================== 1 passed in 0.01s ===============================
`)

	cfg := config.DefaultConfig().Tools.Tests
	cfg.Coverage = true
	result, err := NewTestsPipeline(invoker, cfg).Run(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	outcome := result.(*domain.TestOutcome)
	if outcome.Passed != 1 || !outcome.AllPassed() {
		t.Errorf("expected one passing test, got %+v", outcome)
	}
	if outcome.Coverage == nil || outcome.Coverage.Percent != 80 {
		t.Errorf("expected 80%% coverage, got %+v", outcome.Coverage)
	}

	call := invoker.callsFor(domain.ToolTests)[0]
	args := strings.Join(call.Args, " ")
	for _, want := range []string{"-rA", "-p no:cacheprovider", "--cov=.", "--cov-report=term"} {
		if !strings.Contains(args, want) {
			t.Errorf("expected %q in args %q", want, args)
		}
	}
	env := strings.Join(call.Env, " ")
	if !strings.Contains(env, "PYTHONDONTWRITEBYTECODE=1") || !strings.Contains(env, "COVERAGE_FILE=") {
		t.Errorf("expected tree-protecting env, got %v", call.Env)
	}
	if strings.Contains(env, "COVERAGE_FILE=/repo") {
		t.Error("coverage data must not be written into the analyzed tree")
	}
}

func TestNewToolPipelines_Order(t *testing.T) {
	pipelines := NewToolPipelines(config.DefaultConfig(), newFakeInvoker(), nil)

	var got []domain.ToolName
	for _, p := range pipelines {
		got = append(got, p.Tool())
		if !p.Enabled() {
			t.Errorf("%s should be enabled by default", p.Tool())
		}
	}
	want := domain.AllTools()
	if len(got) != len(want) {
		t.Fatalf("expected %d pipelines, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pipeline %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
