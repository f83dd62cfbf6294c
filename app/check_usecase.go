package app

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/service"
)

// Check exit codes
const (
	CheckExitPassed   = 0
	CheckExitViolated = 1
	CheckExitError    = 2
)

// CheckThresholds are the quality gates applied to a grade result
type CheckThresholds struct {
	MinGrade domain.GradeLabel

	// MinScore is ignored when HasMinScore is false
	MinScore    int
	HasMinScore bool
}

// EvaluateCheck applies the thresholds to result. Tools that failed are
// reported as warnings and never fail the check on their own; tools turned
// off in configuration are not reported.
func EvaluateCheck(result *domain.GradeResult, th CheckThresholds) *domain.CheckResult {
	check := &domain.CheckResult{
		Passed:      true,
		ExitCode:    CheckExitPassed,
		Grade:       result.Grade(),
		Violations:  []domain.CheckViolation{},
		Duration:    result.Duration.Milliseconds(),
		GeneratedAt: result.GeneratedAt.Format(time.RFC3339),
		Version:     result.Version,
		Summary:     summarizeCheck(result),
	}

	grade := result.Grade()
	if th.MinGrade != "" && !grade.Label.AtLeast(th.MinGrade) {
		check.Violations = append(check.Violations, domain.CheckViolation{
			Category:  "grade",
			Rule:      "min-grade",
			Severity:  "error",
			Message:   fmt.Sprintf("Grade %s is below the required %s", grade.Label, th.MinGrade),
			Actual:    string(grade.Label),
			Threshold: string(th.MinGrade),
		})
	}
	if th.HasMinScore && grade.Score < th.MinScore {
		check.Violations = append(check.Violations, domain.CheckViolation{
			Category:  "score",
			Rule:      "min-score",
			Severity:  "error",
			Message:   fmt.Sprintf("Score %d is below the required %d", grade.Score, th.MinScore),
			Actual:    strconv.Itoa(grade.Score),
			Threshold: strconv.Itoa(th.MinScore),
		})
	}
	for _, tool := range check.Summary.ToolsUnavailable {
		section, _ := result.Report.Section(domain.ToolName(tool))
		if section.Reason == service.ReasonDisabled {
			continue
		}
		check.Violations = append(check.Violations, domain.CheckViolation{
			Category: "tool",
			Rule:     "tool-available",
			Severity: "warning",
			Message:  fmt.Sprintf("%s could not be completed: %s", tool, section.Reason),
			Actual:   string(domain.SectionUnavailable),
		})
	}

	for _, v := range check.Violations {
		if v.Severity == "error" {
			check.Passed = false
			check.ExitCode = CheckExitViolated
		}
	}
	check.Summary.TotalViolations = len(check.Violations)
	return check
}

func summarizeCheck(result *domain.GradeResult) domain.CheckSummary {
	report := result.Report
	summary := domain.CheckSummary{ToolsUnavailable: []string{}}
	unavailable := report.Unavailable()
	for _, tool := range unavailable {
		summary.ToolsUnavailable = append(summary.ToolsUnavailable, string(tool))
	}
	summary.ToolsRun = len(report.Tools()) - len(unavailable)
	if lint := report.AggregateLint(); lint != nil {
		summary.LintIssues = lint.Summary.IssueCount
	}
	summary.BugFindings = len(report.StyleBug().Bugs())
	summary.ComplexFunctions = len(report.Complexity().UnhealthyFunctions())
	if tests := report.Tests(); tests != nil {
		summary.TestsRun = tests.Run
		summary.TestsFailed = tests.Failed
	}
	return summary
}
