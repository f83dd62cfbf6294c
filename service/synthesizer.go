package service

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize/english"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/internal/analyzer"
	"github.com/ludo-technologies/pygrade/internal/config"
)

// NeutralParagraph replaces the paragraph of a dimension that could not be graded
const NeutralParagraph = "This check could not be completed."

const (
	narrativeTitle = "Summary of our analysis"
	narrativeIntro = "We looked at your code and here is a summary of what we found"
	gradeNote      = "The grade is calculated from a grade score generated from positive and negative metrics in your code"
)

type sectionCopy struct {
	heading string
	lead    string
}

var sectionCopies = map[domain.Dimension]sectionCopy{
	domain.DimensionLint: {
		heading: "Code quality",
		lead:    "We looked at your code quality.",
	},
	domain.DimensionCohesion: {
		heading: "Code cohesion",
		lead:    "Code cohesion is how well your classes is structured.",
	},
	domain.DimensionMaintainability: {
		heading: "Code Readabillity and Maintainabillity",
		lead:    "We have also looked at how easy your code is to read and maintain. High quality code should be both easy to read and maintain.",
	},
	domain.DimensionBugs: {
		heading: "Potentiel bugs",
		lead:    "We looked for potential bugs in your code. Here is what we found",
	},
	domain.DimensionTests: {
		heading: "Code Tests",
		lead:    "We looked for tests in your code. Here is what we found",
	},
}

const breakApartAdvice = "Check if you can break apart complext methods so that they only do one thing. " +
	"A long complex method is hard to read. It is better to use several smaller methods that have a sinlge task each."

const hardToMaintainAdvice = "Many if-statements and for-loops, especialy nested, makes the code complex and it can be hard to follow the logic. Look over your code and rewrite it."

const bugsAdvice = "This does not mean that you acctually have bugs in your code, but you have used the language in a way that might lead to bugs, wrong results, or even crashes. " +
	"You should check this out and rewrite the parts of your code that might be error prone."

// outcomeParagraphs renders the canned paragraph of each outcome with the
// values the outcome was decided on
var outcomeParagraphs = map[domain.Outcome]func(ds domain.DimensionScore) string{
	domain.OutcomeLintClean: func(domain.DimensionScore) string {
		return "Great job! Your code is very clean and well written"
	},
	domain.OutcomeLintFewIssues: func(ds domain.DimensionScore) string {
		return fmt.Sprintf("Your code is mostly clean and well written, but there are a few issues (%s) that you should look into.",
			english.Plural(ds.Count, "issue", ""))
	},
	domain.OutcomeLintManyIssues: func(ds domain.DimensionScore) string {
		return fmt.Sprintf("Your code is not very clean and well written. We found %s. You should look into that.",
			english.Plural(ds.Count, "issue", ""))
	},

	domain.OutcomeNoClasses: func(domain.DimensionScore) string {
		return "We could not find any classes in your code. Not all programs need classes, but you could consider adding some to make your code cleaner."
	},
	domain.OutcomeOneClassGood: func(ds domain.DimensionScore) string {
		return fmt.Sprintf("We found one class in your code. The quality of the code in this class looks good, with a cohesion of %s%%.",
			formatPercent(ds.Mean))
	},
	domain.OutcomeOneClassPoor: func(ds domain.DimensionScore) string {
		return fmt.Sprintf("We found one class in your code. The quality of the code in this class is not very good, with a cohesion of %s%%. %s",
			formatPercent(ds.Mean), breakApartAdvice)
	},
	domain.OutcomeManyClassesGood: func(ds domain.DimensionScore) string {
		return fmt.Sprintf("We found %d classes in your code. The quality of the code in these classes looks good, with a mean cohesion of %s%%.",
			ds.Count, formatPercent(ds.Mean))
	},
	domain.OutcomeManyClassesPoor: func(ds domain.DimensionScore) string {
		return fmt.Sprintf("We found %d classes in your code. The quality of the code in these classes is not very good, with a mean cohesion of %s%%. %s",
			ds.Count, formatPercent(ds.Mean), breakApartAdvice)
	},

	domain.OutcomeMaintainable: func(domain.DimensionScore) string {
		return "Your code is very easy to read and maintain. Great job!"
	},
	domain.OutcomeHardToMaintain: func(ds domain.DimensionScore) string {
		return fmt.Sprintf("Your code is not very easy to read and maintain. We found %s ranked C or worse. %s",
			english.Plural(ds.Count, "function", ""), hardToMaintainAdvice)
	},

	domain.OutcomeNoBugs: func(domain.DimensionScore) string {
		return "We did not find any potential bugs in your code. Great job!"
	},
	domain.OutcomeBugsFound: func(ds domain.DimensionScore) string {
		return fmt.Sprintf("We found %s in your code. %s",
			english.Plural(ds.Count, "potential bug", ""), bugsAdvice)
	},

	domain.OutcomeNoTests: func(domain.DimensionScore) string {
		return "We could not find any tests for your code. Maybe it would be a good idea to write some tests."
	},
	domain.OutcomeAllTestsPassed: func(ds domain.DimensionScore) string {
		return fmt.Sprintf("All your tests passed (%s). Great job!", english.Plural(ds.Count, "test", ""))
	},
	domain.OutcomeSomeTestsFailed: func(ds domain.DimensionScore) string {
		return fmt.Sprintf("%d of %d tests passed (%s%%). Some of your tests failed. Maybe you should look into that?",
			ds.Passed, ds.Count, formatPercent(ds.Percent))
	},
}

// formatPercent drops trailing zeros: 45, 66.67
func formatPercent(p float64) string {
	return strconv.FormatFloat(analyzer.RoundTo(p, 2), 'f', -1, 64)
}

// NarrativeSynthesizer implements domain.Synthesizer
type NarrativeSynthesizer struct {
	cohesionThreshold float64
}

// SynthesizerOption configures a NarrativeSynthesizer
type SynthesizerOption func(*NarrativeSynthesizer)

// WithCohesionMethodThreshold sets the percentage below which a method is
// called out in the cohesion details
func WithCohesionMethodThreshold(threshold float64) SynthesizerOption {
	return func(s *NarrativeSynthesizer) {
		if threshold >= 0 && threshold <= 100 {
			s.cohesionThreshold = threshold
		}
	}
}

// NewSynthesizer creates a narrative synthesizer
func NewSynthesizer(opts ...SynthesizerOption) *NarrativeSynthesizer {
	s := &NarrativeSynthesizer{cohesionThreshold: config.DefaultCohesionMethodThreshold}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize grades the report and writes one section per dimension
func (s *NarrativeSynthesizer) Synthesize(report *domain.Report, opts domain.SynthesizeOptions) *domain.Narrative {
	return s.FromAssessment(report, domain.Assess(report), opts)
}

// FromAssessment builds the narrative for an assessment already computed
// from report
func (s *NarrativeSynthesizer) FromAssessment(report *domain.Report, assessment domain.Assessment, opts domain.SynthesizeOptions) *domain.Narrative {
	n := &domain.Narrative{
		Title:        narrativeTitle,
		Intro:        narrativeIntro,
		Sections:     make([]domain.NarrativeSection, 0, len(assessment.Dimensions)),
		IncludeGrade: opts.IncludeGrade,
	}

	for _, ds := range assessment.Dimensions {
		text := sectionCopies[ds.Dimension]
		section := domain.NarrativeSection{
			Dimension: ds.Dimension,
			Heading:   text.heading,
			Lead:      text.lead,
			Available: ds.Available(),
			Paragraph: NeutralParagraph,
		}
		if ds.Available() {
			if render, ok := outcomeParagraphs[ds.Outcome]; ok {
				section.Paragraph = render(ds)
			}
			if opts.IncludeDetails {
				section.Details = s.details(report, ds.Dimension)
			}
		}
		n.Sections = append(n.Sections, section)
	}

	if opts.IncludeGrade {
		n.Grade = assessment.Grade
		n.GradeNote = gradeNote
		n.Thresholds = domain.GradeThresholds()
	}
	return n
}

func (s *NarrativeSynthesizer) details(report *domain.Report, d domain.Dimension) []string {
	if report == nil {
		return nil
	}
	switch d {
	case domain.DimensionLint:
		return ExplainLint(report.AggregateLint())
	case domain.DimensionCohesion:
		return ExplainCohesion(report.Cohesion(), s.cohesionThreshold)
	case domain.DimensionMaintainability:
		return ExplainComplexity(report.Complexity())
	case domain.DimensionBugs:
		return ExplainBugs(report.StyleBug())
	case domain.DimensionTests:
		return ExplainTests(report.Tests())
	}
	return nil
}
