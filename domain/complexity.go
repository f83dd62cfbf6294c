package domain

// ComplexityRank is the letter rank assigned to a cyclomatic complexity score
type ComplexityRank string

const (
	RankA ComplexityRank = "A" // 1-5: simple
	RankB ComplexityRank = "B" // 6-10: well structured
	RankC ComplexityRank = "C" // 11-20: slightly complex
	RankD ComplexityRank = "D" // 21-30: rather complex
	RankE ComplexityRank = "E" // 31-40: alarmingly complex
	RankF ComplexityRank = "F" // 41+: error-prone
)

// IsHealthy reports whether the rank is A or B
func (r ComplexityRank) IsHealthy() bool {
	return r == RankA || r == RankB
}

// RawMetrics holds raw size counts of one source file
type RawMetrics struct {
	LOC            int `json:"loc" yaml:"loc"`
	LLOC           int `json:"lloc" yaml:"lloc"`
	SLOC           int `json:"sloc" yaml:"sloc"`
	Comments       int `json:"comments" yaml:"comments"`
	Multi          int `json:"multi" yaml:"multi"`
	Blank          int `json:"blank" yaml:"blank"`
	SingleComments int `json:"single_comments" yaml:"single_comments"`
}

// CommentRatio returns the share of comment lines (single + multi-line strings) over SLOC, in percent
func (m RawMetrics) CommentRatio() float64 {
	if m.SLOC <= 0 {
		return 0
	}
	return float64(m.Comments+m.Multi) / float64(m.SLOC) * 100
}

// HalsteadMetrics holds Halstead size/difficulty measures
type HalsteadMetrics struct {
	H1               int     `json:"h1" yaml:"h1"` // distinct operators
	H2               int     `json:"h2" yaml:"h2"` // distinct operands
	N1               int     `json:"N1" yaml:"N1"` // total operators
	N2               int     `json:"N2" yaml:"N2"` // total operands
	Vocabulary       int     `json:"vocabulary" yaml:"vocabulary"`
	Length           int     `json:"length" yaml:"length"`
	CalculatedLength float64 `json:"calculated_length" yaml:"calculated_length"`
	Volume           float64 `json:"volume" yaml:"volume"`
	Difficulty       float64 `json:"difficulty" yaml:"difficulty"`
	Effort           float64 `json:"effort" yaml:"effort"`
	Time             float64 `json:"time" yaml:"time"`
	Bugs             float64 `json:"bugs" yaml:"bugs"`
}

// FunctionMetrics holds complexity data for one function or method
type FunctionMetrics struct {
	Name       string           `json:"function_name" yaml:"function_name"`
	FullName   string           `json:"full_name" yaml:"full_name"`
	ClassName  string           `json:"class_name,omitempty" yaml:"class_name,omitempty"`
	IsMethod   bool             `json:"is_method" yaml:"is_method"`
	StartLine  int              `json:"start_line" yaml:"start_line"`
	EndLine    int              `json:"end_line" yaml:"end_line"`
	Complexity int              `json:"complexity" yaml:"complexity"`
	Rank       ComplexityRank   `json:"letter" yaml:"letter"`
	Halstead   *HalsteadMetrics `json:"halstead,omitempty" yaml:"halstead,omitempty"`
}

// FileMetrics holds all metrics of one source file
type FileMetrics struct {
	File                 string            `json:"file_name" yaml:"file_name"` // relative to the analyzed root
	Raw                  RawMetrics        `json:"raw" yaml:"raw"`
	Functions            []FunctionMetrics `json:"function_breakdown" yaml:"function_breakdown"`
	TotalComplexity      int               `json:"total_function_complexity" yaml:"total_function_complexity"`
	Rank                 ComplexityRank    `json:"complexity_rank" yaml:"complexity_rank"`
	Halstead             *HalsteadMetrics  `json:"halstead,omitempty" yaml:"halstead,omitempty"`
	MaintainabilityIndex float64           `json:"maintainability_index" yaml:"maintainability_index"`
	MaintainabilityRank  string            `json:"maintainability_rank" yaml:"maintainability_rank"`
	Error                string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// ComplexityResult is the structured output of the complexity/metrics tool
type ComplexityResult struct {
	Files []FileMetrics `json:"files" yaml:"files"`
}

// Tool implements ToolResult
func (r *ComplexityResult) Tool() ToolName { return ToolComplexity }

// AllFunctions returns every function across files in file order
func (r *ComplexityResult) AllFunctions() []FunctionMetrics {
	if r == nil {
		return nil
	}
	var out []FunctionMetrics
	for _, f := range r.Files {
		out = append(out, f.Functions...)
	}
	return out
}

// UnhealthyFunctions returns the functions ranked worse than B
func (r *ComplexityResult) UnhealthyFunctions() []FunctionMetrics {
	var out []FunctionMetrics
	for _, fn := range r.AllFunctions() {
		if !fn.Rank.IsHealthy() {
			out = append(out, fn)
		}
	}
	return out
}
