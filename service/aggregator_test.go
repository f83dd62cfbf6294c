package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/internal/config"
	"github.com/ludo-technologies/pygrade/internal/pysource"
	"github.com/ludo-technologies/pygrade/internal/testutil"
)

const prospectorJSON = `{
  "summary": {"started": "2024-01-01 10:00:00", "completed": "2024-01-01 10:00:02", "time_taken": "2.0", "message_count": 2},
  "messages": [
    {"source": "pylint", "code": "unused-import", "location": {"path": "app/util.py", "module": "app.util", "function": null, "line": 1, "character": 0}, "message": "Unused import sys"},
    {"source": "pylint", "code": "invalid-name", "location": {"path": "build/generated.py", "module": "generated", "function": null, "line": 1, "character": 0}, "message": "Constant name doesn't conform"}
  ]
}`

const flake8Output = `./app/models.py:11:1: B006 Do not use mutable data structures for argument defaults
./build/generated.py:1:1: E265 block comment should start with '# '
`

func newTestAggregator(t *testing.T, root string, invoker domain.ProcessInvoker, cfg *config.Config) *ReportAggregator {
	t.Helper()
	filter, err := NewPathFilter(root, cfg.Analysis.ExcludePatterns, cfg.Analysis.RespectGitignore)
	if err != nil {
		t.Fatalf("NewPathFilter failed: %v", err)
	}
	return NewReportAggregator(
		NewToolPipelines(cfg, invoker, nil),
		NewParallelExecutorFromConfig(&cfg.Performance),
		WithPathFilter(filter),
		WithFunctionLocator(pysource.NewLocator()),
	)
}

func TestReportAggregator_Gather(t *testing.T) {
	root := testutil.WritePythonTree(t, testutil.PythonTree)
	invoker := newFakeInvoker().
		on(domain.ToolStyleBug, "", flake8Output).
		on(domain.ToolAggregateLint, "", prospectorJSON).
		fail(domain.ToolCohesion, "", domain.NewToolInvocationError(domain.ToolCohesion, "cohesion", domain.ErrToolNotFound))

	cfg := config.DefaultConfig()
	cfg.Tools.Tests.Enabled = false

	report, err := newTestAggregator(t, root, invoker, cfg).Gather(context.Background(), root)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	// style/bug: gitignored build/ dropped, function resolved
	styleBug := report.StyleBug()
	if styleBug == nil {
		t.Fatal("expected style/bug section")
	}
	if styleBug.TotalFindings() != 1 {
		t.Errorf("expected 1 finding after filtering, got %d", styleBug.TotalFindings())
	}
	if bugs := styleBug.Bugs(); len(bugs) != 1 || bugs[0].Function != "helper" {
		t.Errorf("expected bug located in helper, got %+v", bugs)
	}

	// aggregate lint: filtered module no longer counted
	lint := report.AggregateLint()
	if lint == nil {
		t.Fatal("expected aggregate lint section")
	}
	if lint.Summary.IssueCount != 1 || lint.Summary.ModuleCount != 1 {
		t.Errorf("expected 1 issue in 1 module, got %+v", lint.Summary)
	}

	cohesion, ok := report.Section(domain.ToolCohesion)
	if !ok {
		t.Fatal("cohesion section missing")
	}
	if cohesion.Available() {
		t.Error("cohesion should be unavailable when the binary is missing")
	}
	if cohesion.Reason == "" {
		t.Error("unavailable section should carry a reason")
	}

	tests, _ := report.Section(domain.ToolTests)
	if tests.Available() || tests.Reason != ReasonDisabled {
		t.Errorf("disabled tool should be unavailable with reason %q, got %+v", ReasonDisabled, tests)
	}

	if len(invoker.callsFor(domain.ToolTests)) != 0 {
		t.Error("disabled tool must not be invoked")
	}
}

func TestReportAggregator_Deterministic(t *testing.T) {
	root := testutil.WritePythonTree(t, testutil.PythonTree)
	cfg := config.DefaultConfig()

	gather := func() []byte {
		invoker := newFakeInvoker().
			on(domain.ToolStyleBug, "", flake8Output).
			on(domain.ToolAggregateLint, "", prospectorJSON)
		report, err := newTestAggregator(t, root, invoker, cfg).Gather(context.Background(), root)
		if err != nil {
			t.Fatalf("Gather failed: %v", err)
		}
		data, err := json.Marshal(report)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		return data
	}

	first, second := gather(), gather()
	if string(first) != string(second) {
		t.Errorf("reports differ between runs:\n%s\n%s", first, second)
	}
}

func TestReportAggregator_InvalidRoot(t *testing.T) {
	agg := NewReportAggregator(nil, nil)

	tests := []string{"", "/nonexistent/pygrade/root"}
	for _, root := range tests {
		_, err := agg.Gather(context.Background(), root)
		if !errors.Is(err, domain.ErrInvalidRoot) {
			t.Errorf("Gather(%q): expected ErrInvalidRoot, got %v", root, err)
		}
	}

	file := testutil.WritePythonTree(t, map[string]string{"a.py": ""}) + "/a.py"
	if _, err := agg.Gather(context.Background(), file); !errors.Is(err, domain.ErrInvalidRoot) {
		t.Errorf("file root: expected ErrInvalidRoot, got %v", err)
	}
}

func TestReportAggregator_Cancelled(t *testing.T) {
	root := testutil.WritePythonTree(t, testutil.PythonTree)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg := newTestAggregator(t, root, newFakeInvoker(), config.DefaultConfig())
	report, err := agg.Gather(ctx, root)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report == nil {
		t.Fatal("expected a partial report")
	}
	for _, s := range report.Sections() {
		if s.Available() {
			t.Errorf("no section should have completed, got %s", s.Tool)
		}
	}
}

func TestReportAggregator_WithShellTools(t *testing.T) {
	testutil.RequireShell(t)
	root := testutil.WritePythonTree(t, testutil.PythonTree)
	bin := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Tools.StyleBug.Command = testutil.WriteFakeTool(t, bin, "flake8", testutil.FakeTool{Stdout: flake8Output, ExitCode: 1})
	cfg.Tools.AggregateLint.Command = testutil.WriteFakeTool(t, bin, "prospector", testutil.FakeTool{Stdout: prospectorJSON, ExitCode: 1})
	cfg.Tools.Complexity.Command = testutil.WriteFakeTool(t, bin, "radon", testutil.FakeTool{
		BySubcommand: map[string]string{
			"raw": `{"app/models.py": {"loc": 12, "lloc": 9, "sloc": 9, "comments": 0, "multi": 0, "blank": 3, "single_comments": 0}}`,
			"cc":  `{"app/models.py": [{"type": "function", "name": "helper", "lineno": 11, "endline": 12, "complexity": 1, "rank": "A"}]}`,
			"hal": `{"app/models.py": {"total": [1, 1, 1, 1, 2, 2, 0.0, 2.0, 0.5, 1.0, 0.05, 0.0006], "functions": []}}`,
			"mi":  `{"app/models.py": {"mi": 100.0, "rank": "A"}}`,
		},
	})
	cfg.Tools.Cohesion.Command = testutil.WriteFakeTool(t, bin, "cohesion", testutil.FakeTool{Stdout: "File: ./app/models.py\n  Class: Account (1:0)\n    Function: deposit 1/2 50.00%\n    Total: 80.00%\n"})
	cfg.Tools.Tests.Command = testutil.WriteFakeTool(t, bin, "pytest", testutil.FakeTool{Stdout: "no tests ran", ExitCode: 5})
	cfg.Tools.Tests.TimeoutSeconds = 30

	agg := NewReportAggregator(
		NewToolPipelines(cfg, NewProcessInvoker(nil), nil),
		NewParallelExecutorFromConfig(&cfg.Performance),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := agg.Gather(ctx, root)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	for _, tool := range domain.AllTools() {
		if s, _ := report.Section(tool); !s.Available() {
			t.Errorf("%s should be available, reason: %s", tool, s.Reason)
		}
	}
	if !report.Tests().NoTestsRun() {
		t.Error("exit code 5 should mean no tests ran")
	}
	if got := report.Complexity().Files[0].File; got != "app/models.py" {
		t.Errorf("unexpected complexity file %s", got)
	}
	if got := report.Cohesion().MeanCohesion(); got != 80 {
		t.Errorf("expected mean cohesion 80, got %v", got)
	}

	assessment := domain.Assess(report)
	// lint 1 issue: 0, one class 80%: +5, maintainable: +5, one bug: -15, no tests: +5
	if assessment.Grade.Score != 0 {
		t.Errorf("expected score 0, got %d", assessment.Grade.Score)
	}
}
