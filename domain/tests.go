package domain

// Coverage is the total line coverage reported by the test runner's coverage plugin
type Coverage struct {
	Statements int     `json:"statements" yaml:"statements"`
	Missed     int     `json:"missed" yaml:"missed"`
	Percent    float64 `json:"percent" yaml:"percent"`
}

// TestOutcome is the structured output of the test runner.
// Coverage is nil when no coverage summary was produced.
type TestOutcome struct {
	Run              int       `json:"test_run" yaml:"test_run"`
	Passed           int       `json:"test_passed" yaml:"test_passed"`
	Failed           int       `json:"test_failed" yaml:"test_failed"`
	PassedTests      []string  `json:"passed_tests" yaml:"passed_tests"`
	FailedTests      []string  `json:"failed_tests" yaml:"failed_tests"`
	PercentagePassed float64   `json:"percentage_passed" yaml:"percentage_passed"`
	Coverage         *Coverage `json:"total_coverage,omitempty" yaml:"total_coverage,omitempty"`
}

// Tool implements ToolResult
func (o *TestOutcome) Tool() ToolName { return ToolTests }

// NoTestsRun reports whether the outcome contains no executed tests
func (o *TestOutcome) NoTestsRun() bool {
	return o == nil || o.Run == 0
}

// AllPassed reports whether tests ran and every one of them passed
func (o *TestOutcome) AllPassed() bool {
	return !o.NoTestsRun() && o.Failed == 0 && o.Passed == o.Run
}

// EmptyTestOutcome returns the outcome of a run that executed no tests
func EmptyTestOutcome() *TestOutcome {
	return &TestOutcome{
		PassedTests: []string{},
		FailedTests: []string{},
	}
}
