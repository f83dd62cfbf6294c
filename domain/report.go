package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ToolResult is the structured output of one tool pipeline
type ToolResult interface {
	Tool() ToolName
}

// SectionStatus reports whether a tool pipeline produced a usable result
type SectionStatus string

const (
	SectionOK          SectionStatus = "ok"
	SectionUnavailable SectionStatus = "unavailable"
)

// Section is the outcome of one tool pipeline within a Report
type Section struct {
	Tool   ToolName
	Status SectionStatus
	Reason string
	Result ToolResult
}

// Available reports whether the section carries a result
func (s Section) Available() bool {
	return s.Status == SectionOK && s.Result != nil
}

// OKSection wraps a tool result into an available section
func OKSection(result ToolResult) Section {
	return Section{Tool: result.Tool(), Status: SectionOK, Result: result}
}

// UnavailableSection marks a tool's section as unavailable for the given reason
func UnavailableSection(tool ToolName, reason string) Section {
	return Section{Tool: tool, Status: SectionUnavailable, Reason: reason}
}

// Report is the combined, read-only result of every tool pipeline run against one tree.
// A Report is built once by NewReport and never modified afterwards.
type Report struct {
	root     string
	sections map[ToolName]Section
}

// NewReport builds a Report for root from the given sections.
// A later section for the same tool replaces an earlier one; sections
// with an invalid tool name are ignored.
func NewReport(root string, sections ...Section) *Report {
	r := &Report{root: root, sections: make(map[ToolName]Section, len(sections))}
	for _, s := range sections {
		if s.Result != nil && s.Tool == "" {
			s.Tool = s.Result.Tool()
		}
		if !s.Tool.IsValid() {
			continue
		}
		if s.Status == SectionOK && s.Result == nil {
			s.Status = SectionUnavailable
			s.Reason = "no result"
		}
		r.sections[s.Tool] = s
	}
	return r
}

// Root returns the analyzed root directory
func (r *Report) Root() string {
	if r == nil {
		return ""
	}
	return r.root
}

// Section returns the section for a tool; ok is false when the tool was not run
func (r *Report) Section(tool ToolName) (Section, bool) {
	if r == nil {
		return Section{}, false
	}
	s, ok := r.sections[tool]
	return s, ok
}

// Tools returns the tools present in the report in report order
func (r *Report) Tools() []ToolName {
	if r == nil {
		return nil
	}
	var out []ToolName
	for _, t := range AllTools() {
		if _, ok := r.sections[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Sections returns the sections in report order
func (r *Report) Sections() []Section {
	var out []Section
	for _, t := range r.Tools() {
		out = append(out, r.sections[t])
	}
	return out
}

// Unavailable returns the tools whose sections are unavailable
func (r *Report) Unavailable() []ToolName {
	var out []ToolName
	for _, t := range r.Tools() {
		if !r.sections[t].Available() {
			out = append(out, t)
		}
	}
	return out
}

func (r *Report) result(tool ToolName) ToolResult {
	s, ok := r.Section(tool)
	if !ok || !s.Available() {
		return nil
	}
	return s.Result
}

// StyleBug returns the style/bug linter result, or nil when unavailable
func (r *Report) StyleBug() *StyleBugResult {
	res, _ := r.result(ToolStyleBug).(*StyleBugResult)
	return res
}

// AggregateLint returns the aggregate linter result, or nil when unavailable
func (r *Report) AggregateLint() *AggregateLintResult {
	res, _ := r.result(ToolAggregateLint).(*AggregateLintResult)
	return res
}

// Complexity returns the complexity result, or nil when unavailable
func (r *Report) Complexity() *ComplexityResult {
	res, _ := r.result(ToolComplexity).(*ComplexityResult)
	return res
}

// Cohesion returns the cohesion result, or nil when unavailable
func (r *Report) Cohesion() *CohesionResult {
	res, _ := r.result(ToolCohesion).(*CohesionResult)
	return res
}

// Tests returns the test-runner outcome, or nil when unavailable
func (r *Report) Tests() *TestOutcome {
	res, _ := r.result(ToolTests).(*TestOutcome)
	return res
}

type sectionJSON struct {
	Status SectionStatus   `json:"status"`
	Reason string          `json:"reason,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

type reportJSON struct {
	Root     string                   `json:"root"`
	Sections map[ToolName]sectionJSON `json:"sections"`
}

// MarshalJSON encodes the report with sections keyed by tool name
func (r *Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{Root: r.Root(), Sections: make(map[ToolName]sectionJSON)}
	for _, t := range r.Tools() {
		s := r.sections[t]
		sj := sectionJSON{Status: s.Status, Reason: s.Reason}
		if s.Result != nil {
			data, err := json.Marshal(s.Result)
			if err != nil {
				return nil, fmt.Errorf("encode %s section: %w", t, err)
			}
			sj.Result = data
		}
		out.Sections[t] = sj
	}
	// encoding/json writes map keys in sorted order
	return json.Marshal(out)
}

// UnmarshalJSON decodes a report produced by MarshalJSON
func (r *Report) UnmarshalJSON(data []byte) error {
	var in reportJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	tools := make([]ToolName, 0, len(in.Sections))
	for t := range in.Sections {
		tools = append(tools, t)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i] < tools[j] })

	sections := make([]Section, 0, len(tools))
	for _, t := range tools {
		sj := in.Sections[t]
		s := Section{Tool: t, Status: sj.Status, Reason: sj.Reason}
		if len(sj.Result) > 0 && string(sj.Result) != "null" {
			res, err := decodeToolResult(t, sj.Result)
			if err != nil {
				return fmt.Errorf("decode %s section: %w", t, err)
			}
			s.Result = res
		}
		sections = append(sections, s)
	}
	*r = *NewReport(in.Root, sections...)
	return nil
}

func decodeToolResult(tool ToolName, data []byte) (ToolResult, error) {
	var res ToolResult
	switch tool {
	case ToolStyleBug:
		res = &StyleBugResult{}
	case ToolAggregateLint:
		res = &AggregateLintResult{}
	case ToolComplexity:
		res = &ComplexityResult{}
	case ToolCohesion:
		res = &CohesionResult{}
	case ToolTests:
		res = &TestOutcome{}
	default:
		return nil, fmt.Errorf("unknown tool %q", tool)
	}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, err
	}
	return res, nil
}
