package domain

// Dimension is one graded aspect of the report
type Dimension string

const (
	DimensionLint            Dimension = "lint"
	DimensionCohesion        Dimension = "cohesion"
	DimensionMaintainability Dimension = "maintainability"
	DimensionBugs            Dimension = "bugs"
	DimensionTests           Dimension = "tests"
)

// Dimensions lists the graded dimensions in evaluation order
func Dimensions() []Dimension {
	return []Dimension{
		DimensionLint,
		DimensionCohesion,
		DimensionMaintainability,
		DimensionBugs,
		DimensionTests,
	}
}

// Source returns the tool whose section a dimension is graded from
func (d Dimension) Source() ToolName {
	switch d {
	case DimensionLint:
		return ToolAggregateLint
	case DimensionCohesion:
		return ToolCohesion
	case DimensionMaintainability:
		return ToolComplexity
	case DimensionBugs:
		return ToolStyleBug
	case DimensionTests:
		return ToolTests
	}
	return ""
}

// Outcome names the rubric branch taken for a dimension
type Outcome string

const (
	OutcomeUnavailable Outcome = "unavailable"

	OutcomeLintClean      Outcome = "lint_clean"
	OutcomeLintFewIssues  Outcome = "lint_few_issues"
	OutcomeLintManyIssues Outcome = "lint_many_issues"

	OutcomeNoClasses       Outcome = "no_classes"
	OutcomeOneClassGood    Outcome = "one_class_good"
	OutcomeOneClassPoor    Outcome = "one_class_poor"
	OutcomeManyClassesGood Outcome = "many_classes_good"
	OutcomeManyClassesPoor Outcome = "many_classes_poor"
	OutcomeMaintainable    Outcome = "maintainable"
	OutcomeHardToMaintain  Outcome = "hard_to_maintain"
	OutcomeNoBugs          Outcome = "no_bugs"
	OutcomeBugsFound       Outcome = "bugs_found"
	OutcomeNoTests         Outcome = "no_tests"
	OutcomeAllTestsPassed  Outcome = "all_tests_passed"
	OutcomeSomeTestsFailed Outcome = "some_tests_failed"
)

// Rubric constants
const (
	LintManyIssuesThreshold = 10
	CohesionGoodThreshold   = 75.0
)

// DimensionScore is the graded result of one dimension
type DimensionScore struct {
	Dimension Dimension `json:"dimension" yaml:"dimension"`
	Outcome   Outcome   `json:"outcome" yaml:"outcome"`
	Delta     int       `json:"delta" yaml:"delta"`

	// Measured values the outcome was decided on
	Count   int     `json:"count" yaml:"count"`
	Passed  int     `json:"passed,omitempty" yaml:"passed,omitempty"`
	Mean    float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Percent float64 `json:"percent,omitempty" yaml:"percent,omitempty"`
}

// Available reports whether the dimension could be graded
func (d DimensionScore) Available() bool {
	return d.Outcome != OutcomeUnavailable
}

// Assessment is the full rubric evaluation of a Report
type Assessment struct {
	Dimensions []DimensionScore `json:"dimensions" yaml:"dimensions"`
	Grade      Grade            `json:"grade" yaml:"grade"`
}

// Dimension returns the score of one dimension
func (a Assessment) Dimension(d Dimension) (DimensionScore, bool) {
	for _, ds := range a.Dimensions {
		if ds.Dimension == d {
			return ds, true
		}
	}
	return DimensionScore{}, false
}

// Assess evaluates the rubric over a report. It is a pure function of the
// report: a missing or unavailable section scores zero for its dimension.
func Assess(r *Report) Assessment {
	dims := []DimensionScore{
		assessLint(r.AggregateLint()),
		assessCohesion(r.Cohesion()),
		assessMaintainability(r.Complexity()),
		assessBugs(r.StyleBug()),
		assessTests(r.Tests()),
	}
	score := 0
	for _, d := range dims {
		score += d.Delta
	}
	return Assessment{Dimensions: dims, Grade: NewGrade(score)}
}

func unavailable(d Dimension) DimensionScore {
	return DimensionScore{Dimension: d, Outcome: OutcomeUnavailable}
}

func assessLint(res *AggregateLintResult) DimensionScore {
	if res == nil {
		return unavailable(DimensionLint)
	}
	n := res.Summary.IssueCount
	ds := DimensionScore{Dimension: DimensionLint, Count: n}
	switch {
	case n <= 0:
		ds.Outcome, ds.Delta = OutcomeLintClean, 10
	case n < LintManyIssuesThreshold:
		ds.Outcome, ds.Delta = OutcomeLintFewIssues, 0
	default:
		ds.Outcome, ds.Delta = OutcomeLintManyIssues, -10
	}
	return ds
}

func assessCohesion(res *CohesionResult) DimensionScore {
	if res == nil {
		return unavailable(DimensionCohesion)
	}
	classes := res.AllClasses()
	ds := DimensionScore{Dimension: DimensionCohesion, Count: len(classes), Mean: res.MeanCohesion()}
	switch {
	case len(classes) == 0:
		ds.Outcome, ds.Delta = OutcomeNoClasses, 2
	case len(classes) == 1 && ds.Mean > CohesionGoodThreshold:
		ds.Outcome, ds.Delta = OutcomeOneClassGood, 5
	case len(classes) == 1:
		ds.Outcome, ds.Delta = OutcomeOneClassPoor, -5
	case ds.Mean > CohesionGoodThreshold:
		ds.Outcome, ds.Delta = OutcomeManyClassesGood, 7
	default:
		ds.Outcome, ds.Delta = OutcomeManyClassesPoor, -7
	}
	return ds
}

func assessMaintainability(res *ComplexityResult) DimensionScore {
	if res == nil {
		return unavailable(DimensionMaintainability)
	}
	unhealthy := 0
	for _, fn := range res.AllFunctions() {
		healthy := fn.Rank.IsHealthy()
		if fn.Rank == "" {
			healthy = fn.Complexity <= 10
		}
		if !healthy {
			unhealthy++
		}
	}
	ds := DimensionScore{Dimension: DimensionMaintainability, Count: unhealthy}
	if unhealthy == 0 {
		ds.Outcome, ds.Delta = OutcomeMaintainable, 5
	} else {
		ds.Outcome, ds.Delta = OutcomeHardToMaintain, -7
	}
	return ds
}

func assessBugs(res *StyleBugResult) DimensionScore {
	if res == nil {
		return unavailable(DimensionBugs)
	}
	n := len(res.Bugs())
	ds := DimensionScore{Dimension: DimensionBugs, Count: n}
	if n == 0 {
		ds.Outcome = OutcomeNoBugs
	} else {
		ds.Outcome, ds.Delta = OutcomeBugsFound, -15
	}
	return ds
}

func assessTests(res *TestOutcome) DimensionScore {
	if res == nil {
		return unavailable(DimensionTests)
	}
	ds := DimensionScore{Dimension: DimensionTests, Count: res.Run, Passed: res.Passed, Percent: res.PercentagePassed}
	switch {
	case res.NoTestsRun():
		ds.Outcome, ds.Delta = OutcomeNoTests, 5
	case res.AllPassed():
		ds.Outcome, ds.Delta = OutcomeAllTestsPassed, 10
	default:
		ds.Outcome, ds.Delta = OutcomeSomeTestsFailed, -10
	}
	return ds
}
