package domain

import "time"

// GradeRequest represents one analysis request
type GradeRequest struct {
	Root    string
	Commit  string // optional; resolved from .git when empty
	Options SynthesizeOptions

	// UseCache allows the report to be served from and stored in the cache
	UseCache bool
}

// GradeResult is the outcome of analyzing and grading one tree
type GradeResult struct {
	RunID       string        `json:"run_id" yaml:"run_id"`
	Root        string        `json:"root" yaml:"root"`
	Commit      string        `json:"commit,omitempty" yaml:"commit,omitempty"`
	Version     string        `json:"version" yaml:"version"`
	GeneratedAt time.Time     `json:"generated_at" yaml:"generated_at"`
	Duration    time.Duration `json:"duration_ns" yaml:"duration_ns"`
	Cached      bool          `json:"cached" yaml:"cached"`
	PythonFiles int           `json:"python_files" yaml:"python_files"`
	Report      *Report       `json:"report" yaml:"-"`
	Assessment  Assessment    `json:"assessment" yaml:"assessment"`
	Narrative   *Narrative    `json:"narrative" yaml:"narrative"`
}

// Grade returns the grade of the result
func (r *GradeResult) Grade() Grade {
	if r == nil {
		return Grade{}
	}
	return r.Assessment.Grade
}
