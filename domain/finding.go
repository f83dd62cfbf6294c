package domain

// ToolName identifies one analysis tool pipeline and its section in a Report
type ToolName string

const (
	ToolStyleBug      ToolName = "style_bug"
	ToolAggregateLint ToolName = "aggregate_lint"
	ToolComplexity    ToolName = "complexity"
	ToolCohesion      ToolName = "cohesion"
	ToolTests         ToolName = "tests"
)

// AllTools lists every tool pipeline in report order
func AllTools() []ToolName {
	return []ToolName{ToolStyleBug, ToolAggregateLint, ToolComplexity, ToolCohesion, ToolTests}
}

// IsValid reports whether the name is one of the known tools
func (t ToolName) IsValid() bool {
	for _, known := range AllTools() {
		if t == known {
			return true
		}
	}
	return false
}

// FindingCategory classifies a linter diagnostic
type FindingCategory string

const (
	CategoryBug          FindingCategory = "bug"
	CategoryStyleError   FindingCategory = "style_error"
	CategoryStyleWarning FindingCategory = "style_warning"
	CategoryCodeError    FindingCategory = "code_error"
	CategoryNamingError  FindingCategory = "naming_error"
	CategoryLint         FindingCategory = "lint"
	CategoryOther        FindingCategory = "other"
)

// Finding is a single diagnostic emitted by a linter
type Finding struct {
	Tool     ToolName        `json:"tool" yaml:"tool"`
	File     string          `json:"file" yaml:"file"`     // slash-separated, relative to the analyzed root
	Module   string          `json:"module" yaml:"module"` // base name of File
	Line     int             `json:"line" yaml:"line"`
	Column   int             `json:"column" yaml:"column"`
	Code     string          `json:"code,omitempty" yaml:"code,omitempty"`
	Message  string          `json:"message" yaml:"message"`
	Category FindingCategory `json:"category" yaml:"category"`
	Function string          `json:"function,omitempty" yaml:"function,omitempty"`
	Source   string          `json:"source,omitempty" yaml:"source,omitempty"` // sub-tool that produced the finding
}

// StyleCategory describes one category flag of the style/bug linter
type StyleCategory struct {
	Flag        string
	Name        string
	Description string
	Category    FindingCategory
}

// DefaultStyleCategories returns the category flags requested from the style/bug linter
func DefaultStyleCategories() []StyleCategory {
	return []StyleCategory{
		{Flag: "B", Name: "Bugs", Description: "Possible code smells", Category: CategoryBug},
		{Flag: "E", Name: "StyleErrors", Description: "Style errors", Category: CategoryStyleError},
		{Flag: "W", Name: "StyleWarnings", Description: "Style warnings", Category: CategoryStyleWarning},
		{Flag: "F", Name: "CodeErrors", Description: "Code errors", Category: CategoryCodeError},
		{Flag: "N", Name: "NamingErrors", Description: "Naming errors", Category: CategoryNamingError},
	}
}

// StyleCategoryForFlag looks up a default category by its flag letter
func StyleCategoryForFlag(flag string) (StyleCategory, bool) {
	for _, c := range DefaultStyleCategories() {
		if c.Flag == flag {
			return c, true
		}
	}
	return StyleCategory{}, false
}

// FindingGroup holds the findings reported for one category flag
type FindingGroup struct {
	Flag        string          `json:"flag" yaml:"flag"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Category    FindingCategory `json:"category" yaml:"category"`
	Findings    []Finding       `json:"issues" yaml:"issues"`
}

// StyleBugResult is the structured output of the style/bug linter
type StyleBugResult struct {
	Groups []FindingGroup `json:"groups" yaml:"groups"`
}

// Tool implements ToolResult
func (r *StyleBugResult) Tool() ToolName { return ToolStyleBug }

// Group returns the group for a flag, or nil when the flag was not requested
func (r *StyleBugResult) Group(flag string) *FindingGroup {
	if r == nil {
		return nil
	}
	for i := range r.Groups {
		if r.Groups[i].Flag == flag {
			return &r.Groups[i]
		}
	}
	return nil
}

// FindingsByCategory returns every finding of the given category across groups
func (r *StyleBugResult) FindingsByCategory(category FindingCategory) []Finding {
	if r == nil {
		return nil
	}
	var out []Finding
	for _, g := range r.Groups {
		for _, f := range g.Findings {
			if f.Category == category {
				out = append(out, f)
			}
		}
	}
	return out
}

// Bugs returns the bug-category findings; empty when none were reported
func (r *StyleBugResult) Bugs() []Finding {
	return r.FindingsByCategory(CategoryBug)
}

// TotalFindings counts findings across all groups
func (r *StyleBugResult) TotalFindings() int {
	if r == nil {
		return 0
	}
	total := 0
	for _, g := range r.Groups {
		total += len(g.Findings)
	}
	return total
}

// LintSummary is the run summary reported by the aggregate linter
type LintSummary struct {
	Started     string  `json:"started" yaml:"started"`
	Completed   string  `json:"completed" yaml:"completed"`
	TimeTaken   float64 `json:"time_taken" yaml:"time_taken"`
	ModuleCount int     `json:"module_count" yaml:"module_count"`
	IssueCount  int     `json:"issue_count" yaml:"issue_count"`
}

// LintModule groups aggregate-lint findings of one module
type LintModule struct {
	Name       string    `json:"module_name" yaml:"module_name"`
	Path       string    `json:"module_path" yaml:"module_path"`
	IssueCount int       `json:"number_of_issues" yaml:"number_of_issues"`
	Issues     []Finding `json:"issues" yaml:"issues"`
}

// AggregateLintResult is the structured output of the aggregate linter
type AggregateLintResult struct {
	Summary LintSummary  `json:"summary" yaml:"summary"`
	Modules []LintModule `json:"issues" yaml:"issues"`
}

// Tool implements ToolResult
func (r *AggregateLintResult) Tool() ToolName { return ToolAggregateLint }
