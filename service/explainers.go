package service

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/internal/analyzer"
)

// Thresholds used when explaining complexity results
const (
	HighFunctionComplexity    = 10
	HighTotalModuleComplexity = 50
)

const (
	explainFoundIssues   = "When looking at your code we found some issues."
	explainPleaseCheck   = "Please check these problems to make your code more readable and maintainable."
	explainLintClean     = "We looked at your code and found no issues. Good job!"
	explainCohesionIntro = "After checking your code, we found the following potential issues:"
	explainCohesionClean = "No issues found in your code!"
	explainComplexityOK  = "Your code looks great! No issues found."
	explainNoBugs        = "We did not find any potential bugs in your code."
)

// ExplainLint describes every aggregate lint issue in one sentence
func ExplainLint(res *domain.AggregateLintResult) []string {
	if res == nil {
		return nil
	}

	var issues []string
	for _, m := range res.Modules {
		for _, issue := range m.Issues {
			issues = append(issues, fmt.Sprintf(
				"In the module named '%s' we found %s. This is on line %d, column %d.",
				m.Name, strings.ToLower(strings.TrimSuffix(issue.Message, ".")), issue.Line, issue.Column))
		}
	}
	if len(issues) == 0 {
		return []string{explainLintClean}
	}

	out := make([]string, 0, len(issues)+2)
	out = append(out, explainFoundIssues)
	out = append(out, issues...)
	return append(out, explainPleaseCheck)
}

// ExplainCohesion lists the methods whose cohesion is below threshold percent
func ExplainCohesion(res *domain.CohesionResult, threshold float64) []string {
	if res == nil {
		return nil
	}

	var issues []string
	for _, file := range res.Files {
		for _, class := range file.Classes {
			for _, method := range class.Methods {
				if method.Percentage >= threshold {
					continue
				}
				issues = append(issues, fmt.Sprintf(
					"In the '%s' method of the '%s' class in the file '%s', it seems like the code could be improved "+
						"for better readability and maintainability. You might consider breaking the method into smaller, "+
						"more focused methods that handle specific tasks, or moving some of the code to other methods. "+
						"This will make the code easier to understand, modify, and extend.",
					method.Name, class.Name, file.Filename))
			}
		}
	}
	if len(issues) == 0 {
		return []string{explainCohesionClean}
	}
	return append([]string{explainCohesionIntro}, issues...)
}

// ExplainComplexity flags modules with a low maintainability index, complex
// functions and modules whose functions add up to a high total complexity
func ExplainComplexity(res *domain.ComplexityResult) []string {
	if res == nil {
		return nil
	}

	var issues []string
	for _, file := range res.Files {
		if file.Error != "" {
			continue
		}
		if file.MaintainabilityRank != "" && file.MaintainabilityIndex < analyzer.LowMaintainabilityThreshold {
			issues = append(issues, fmt.Sprintf(
				"In the module named '%s', your code may be difficult to maintain due to a low maintainability "+
					"index of %.2f. This means that it may be challenging for future developers to understand and "+
					"modify this code. Please consider taking steps to improve its maintainability.",
				file.File, file.MaintainabilityIndex))
		}
		for _, fn := range file.Functions {
			if fn.Complexity < HighFunctionComplexity {
				continue
			}
			name := fn.FullName
			if name == "" {
				name = fn.Name
			}
			issues = append(issues, fmt.Sprintf(
				"In function '%s', the complexity is %d. This indicates that this code is %s. Consider refactoring.",
				name, fn.Complexity, analyzer.DescribeComplexity(fn.Complexity)))
		}
		if file.TotalComplexity >= HighTotalModuleComplexity {
			issues = append(issues, fmt.Sprintf(
				"In module '%s', the total complexity of all functions is %d. Consider refactoring.",
				file.File, file.TotalComplexity))
		}
	}
	if len(issues) == 0 {
		return []string{explainComplexityOK}
	}

	out := make([]string, 0, len(issues)+2)
	out = append(out, explainFoundIssues)
	out = append(out, issues...)
	return append(out, explainPleaseCheck)
}

// ExplainBugs points at each bug-category finding
func ExplainBugs(res *domain.StyleBugResult) []string {
	if res == nil {
		return nil
	}
	bugs := res.Bugs()
	if len(bugs) == 0 {
		return []string{explainNoBugs}
	}

	out := make([]string, 0, len(bugs))
	for _, b := range bugs {
		where := fmt.Sprintf("the file '%s' on line %d", b.File, b.Line)
		if b.Function != "" {
			where += fmt.Sprintf(" in function '%s'", b.Function)
		}
		out = append(out, fmt.Sprintf("In %s we found %s (%s).",
			where, strings.ToLower(strings.TrimSuffix(b.Message, ".")), b.Code))
	}
	return out
}

// ExplainTests names failed tests and reports coverage when measured
func ExplainTests(res *domain.TestOutcome) []string {
	if res == nil {
		return nil
	}

	var out []string
	if !res.NoTestsRun() {
		out = append(out, fmt.Sprintf("%d of %d tests passed (%.0f%%).", res.Passed, res.Run, res.PercentagePassed))
	}
	for _, name := range res.FailedTests {
		out = append(out, fmt.Sprintf("The test '%s' failed.", name))
	}
	if res.Coverage != nil {
		out = append(out, fmt.Sprintf("Your tests cover %.0f%% of %d statements.", res.Coverage.Percent, res.Coverage.Statements))
	}
	return out
}
