package domain

// SynthesizeOptions controls which parts of the narrative are produced
type SynthesizeOptions struct {
	// IncludeGrade appends the grade, score and threshold statements
	IncludeGrade bool

	// IncludeDetails attaches per-finding explanations to each section
	IncludeDetails bool
}

// DefaultSynthesizeOptions returns options with the grade and no details
func DefaultSynthesizeOptions() SynthesizeOptions {
	return SynthesizeOptions{IncludeGrade: true}
}

// NarrativeSection is the prose produced for one rubric dimension
type NarrativeSection struct {
	Dimension Dimension `json:"dimension" yaml:"dimension"`
	Heading   string    `json:"heading" yaml:"heading"`
	Lead      string    `json:"lead" yaml:"lead"`
	Paragraph string    `json:"paragraph" yaml:"paragraph"`
	Available bool      `json:"available" yaml:"available"`
	Details   []string  `json:"details,omitempty" yaml:"details,omitempty"`
}

// Narrative is the human-readable summary of a Report
type Narrative struct {
	Title        string             `json:"title" yaml:"title"`
	Intro        string             `json:"intro" yaml:"intro"`
	Sections     []NarrativeSection `json:"sections" yaml:"sections"`
	IncludeGrade bool               `json:"include_grade" yaml:"include_grade"`
	Grade        Grade              `json:"grade" yaml:"grade"`
	GradeNote    string             `json:"grade_note,omitempty" yaml:"grade_note,omitempty"`
	Thresholds   []string           `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
}

// Section returns the narrative section for a dimension
func (n *Narrative) Section(d Dimension) (NarrativeSection, bool) {
	if n == nil {
		return NarrativeSection{}, false
	}
	for _, s := range n.Sections {
		if s.Dimension == d {
			return s, true
		}
	}
	return NarrativeSection{}, false
}
