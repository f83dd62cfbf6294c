package domain

import (
	"fmt"
	"strings"
)

// GradeLabel is the coarse three-level outcome derived from the rubric score
type GradeLabel string

const (
	GradeIG GradeLabel = "IG" // failed
	GradeG  GradeLabel = "G"  // passed
	GradeVG GradeLabel = "VG" // passed with distinction
)

// Score thresholds separating the labels
const (
	GradeGMinScore  = 0
	GradeVGMinScore = 10
)

// LabelForScore maps a score to its label: <0 IG, 0..9 G, >=10 VG
func LabelForScore(score int) GradeLabel {
	switch {
	case score < GradeGMinScore:
		return GradeIG
	case score < GradeVGMinScore:
		return GradeG
	default:
		return GradeVG
	}
}

// ParseGradeLabel parses a label case-insensitively
func ParseGradeLabel(s string) (GradeLabel, error) {
	switch GradeLabel(strings.ToUpper(strings.TrimSpace(s))) {
	case GradeIG:
		return GradeIG, nil
	case GradeG:
		return GradeG, nil
	case GradeVG:
		return GradeVG, nil
	}
	return "", NewInvalidInputError(fmt.Sprintf("unknown grade %q (want IG, G or VG)", s), nil)
}

// Level orders labels: IG < G < VG
func (l GradeLabel) Level() int {
	switch l {
	case GradeG:
		return 1
	case GradeVG:
		return 2
	default:
		return 0
	}
}

// AtLeast reports whether l is the same as or better than other
func (l GradeLabel) AtLeast(other GradeLabel) bool {
	return l.Level() >= other.Level()
}

// Grade is the integer rubric score plus its label
type Grade struct {
	Score int        `json:"score" yaml:"score"`
	Label GradeLabel `json:"grade" yaml:"grade"`
}

// NewGrade builds a Grade for score
func NewGrade(score int) Grade {
	return Grade{Score: score, Label: LabelForScore(score)}
}

// GradeThresholds describes the label ranges in plain text
func GradeThresholds() []string {
	return []string{
		"IG - A negative score",
		"G - A score between 0 and 9",
		"VG - A score of 10 or above",
	}
}
