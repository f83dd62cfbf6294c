package domain

// CheckResult represents the result of a grade gate
type CheckResult struct {
	Passed      bool             `json:"passed"`
	ExitCode    int              `json:"exit_code"`
	Grade       Grade            `json:"grade"`
	Violations  []CheckViolation `json:"violations"`
	Summary     CheckSummary     `json:"summary"`
	Duration    int64            `json:"duration_ms"`
	GeneratedAt string           `json:"generated_at"`
	Version     string           `json:"version"`
}

// CheckViolation represents a single threshold violation
type CheckViolation struct {
	Category  string `json:"category"`            // grade, score, tool
	Rule      string `json:"rule"`                // min-grade, min-score, etc.
	Severity  string `json:"severity"`            // error, warning
	Message   string `json:"message"`             // Human-readable description
	Actual    string `json:"actual"`              // Actual value
	Threshold string `json:"threshold,omitempty"` // Configured threshold
}

// CheckSummary provides aggregate statistics
type CheckSummary struct {
	ToolsRun         int      `json:"tools_run"`
	ToolsUnavailable []string `json:"tools_unavailable"`
	LintIssues       int      `json:"lint_issues"`
	BugFindings      int      `json:"bug_findings"`
	ComplexFunctions int      `json:"complex_functions"`
	TestsRun         int      `json:"tests_run"`
	TestsFailed      int      `json:"tests_failed"`
	TotalViolations  int      `json:"total_violations"`
}
