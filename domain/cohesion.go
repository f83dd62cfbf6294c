package domain

// CohesionVariable records whether a method uses one instance variable cohesively
type CohesionVariable struct {
	Name        string `json:"name" yaml:"name"`
	CohesiveUse bool   `json:"cohesive_use" yaml:"cohesive_use"`
}

// CohesionMethod is one method of a class as reported by the cohesion tool
type CohesionMethod struct {
	Name       string             `json:"name" yaml:"name"`
	MethodType string             `json:"method_type,omitempty" yaml:"method_type,omitempty"` // e.g. staticmethod, classmethod
	Ratio      string             `json:"cohesion,omitempty" yaml:"cohesion,omitempty"`       // e.g. "2/3"
	Percentage float64            `json:"cohesion_percentage" yaml:"cohesion_percentage"`
	Variables  []CohesionVariable `json:"variables" yaml:"variables"`
}

// CohesionClass is one class with its methods and aggregate cohesion
type CohesionClass struct {
	Name    string           `json:"name" yaml:"name"`
	Line    int              `json:"line" yaml:"line"`
	Column  int              `json:"col" yaml:"col"`
	Methods []CohesionMethod `json:"methods" yaml:"methods"`
	Total   float64          `json:"total" yaml:"total"`

	// TotalReported is false when the tool emitted no Total line and Total
	// was derived from the method percentages.
	TotalReported bool `json:"total_reported" yaml:"total_reported"`
}

// CohesionFile groups the classes of one source file
type CohesionFile struct {
	Filename string          `json:"filename" yaml:"filename"`
	Classes  []CohesionClass `json:"classes" yaml:"classes"`
}

// CohesionResult is the structured output of the cohesion tool
type CohesionResult struct {
	Files []CohesionFile `json:"files" yaml:"files"`
}

// Tool implements ToolResult
func (r *CohesionResult) Tool() ToolName { return ToolCohesion }

// AllClasses returns every class across files in file order
func (r *CohesionResult) AllClasses() []CohesionClass {
	if r == nil {
		return nil
	}
	var out []CohesionClass
	for _, f := range r.Files {
		out = append(out, f.Classes...)
	}
	return out
}

// MeanCohesion returns the mean class total, or 0 when there are no classes
func (r *CohesionResult) MeanCohesion() float64 {
	classes := r.AllClasses()
	if len(classes) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range classes {
		sum += c.Total
	}
	return sum / float64(len(classes))
}
