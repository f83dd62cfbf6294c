package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/pygrade/domain"
)

// OutputFormatterImpl implements the OutputFormatter interface
type OutputFormatterImpl struct{}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// WriteJSON writes data as JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML to the writer
func WriteYAML(writer io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// GradeResultJSON wraps a GradeResult with output metadata
type GradeResultJSON struct {
	Version       string            `json:"version"`
	RunID         string            `json:"run_id"`
	GeneratedAt   string            `json:"generated_at"`
	DurationMs    int64             `json:"duration_ms"`
	Root          string            `json:"root"`
	Commit        string            `json:"commit,omitempty"`
	Cached        bool              `json:"cached"`
	Grade         domain.Grade      `json:"grade"`
	Assessment    domain.Assessment `json:"assessment"`
	Narrative     *domain.Narrative `json:"narrative"`
	NarrativeHTML string            `json:"narrative_html"`
	Report        *domain.Report    `json:"report"`
}

// SectionView is the YAML rendering of one report section
type SectionView struct {
	Tool   domain.ToolName      `yaml:"tool"`
	Status domain.SectionStatus `yaml:"status"`
	Reason string               `yaml:"reason,omitempty"`
	Result domain.ToolResult    `yaml:"result,omitempty"`
}

// GradeResultYAML is the YAML rendering of a GradeResult
type GradeResultYAML struct {
	Version     string            `yaml:"version"`
	RunID       string            `yaml:"run_id"`
	GeneratedAt string            `yaml:"generated_at"`
	Duration    string            `yaml:"duration"`
	Root        string            `yaml:"root"`
	Commit      string            `yaml:"commit,omitempty"`
	Cached      bool              `yaml:"cached"`
	Grade       domain.Grade      `yaml:"grade"`
	Assessment  domain.Assessment `yaml:"assessment"`
	Narrative   *domain.Narrative `yaml:"narrative"`
	Sections    []SectionView     `yaml:"sections"`
}

// Write writes the grade result in the specified format
func (f *OutputFormatterImpl) Write(result *domain.GradeResult, format domain.OutputFormat, writer io.Writer) error {
	if result == nil {
		return domain.NewInvalidInputError("no result to write", nil)
	}
	switch format {
	case domain.OutputFormatJSON:
		return f.writeJSON(result, writer)
	case domain.OutputFormatYAML:
		return f.writeYAML(result, writer)
	case domain.OutputFormatHTML:
		return f.WriteHTML(result, writer)
	case domain.OutputFormatText, "":
		return f.writeText(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func (f *OutputFormatterImpl) writeJSON(result *domain.GradeResult, writer io.Writer) error {
	fragment, err := RenderNarrativeHTML(result.Narrative)
	if err != nil {
		return err
	}
	return WriteJSON(writer, GradeResultJSON{
		Version:       result.Version,
		RunID:         result.RunID,
		GeneratedAt:   result.GeneratedAt.Format(time.RFC3339),
		DurationMs:    result.Duration.Milliseconds(),
		Root:          result.Root,
		Commit:        result.Commit,
		Cached:        result.Cached,
		Grade:         result.Assessment.Grade,
		Assessment:    result.Assessment,
		Narrative:     result.Narrative,
		NarrativeHTML: fragment,
		Report:        result.Report,
	})
}

func (f *OutputFormatterImpl) writeYAML(result *domain.GradeResult, writer io.Writer) error {
	view := GradeResultYAML{
		Version:     result.Version,
		RunID:       result.RunID,
		GeneratedAt: result.GeneratedAt.Format(time.RFC3339),
		Duration:    result.Duration.Round(time.Millisecond).String(),
		Root:        result.Root,
		Commit:      result.Commit,
		Cached:      result.Cached,
		Grade:       result.Assessment.Grade,
		Assessment:  result.Assessment,
		Narrative:   result.Narrative,
	}
	for _, s := range result.Report.Sections() {
		view.Sections = append(view.Sections, SectionView{
			Tool:   s.Tool,
			Status: s.Status,
			Reason: s.Reason,
			Result: s.Result,
		})
	}
	return WriteYAML(writer, view)
}

// writeText writes the tool summary followed by the narrative
func (f *OutputFormatterImpl) writeText(result *domain.GradeResult, writer io.Writer) error {
	fmt.Fprintf(writer, "\n=== pygrade Analysis Report ===\n")
	fmt.Fprintf(writer, "Root: %s\n", result.Root)
	if result.Commit != "" {
		fmt.Fprintf(writer, "Commit: %s\n", result.Commit)
	}
	fmt.Fprintf(writer, "Run: %s\n", result.RunID)
	fmt.Fprintf(writer, "Generated: %s\n", result.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "Duration: %s\n", result.Duration.Round(time.Millisecond))
	if result.Cached {
		fmt.Fprintf(writer, "Cached: yes\n")
	}
	fmt.Fprintf(writer, "Version: %s\n\n", result.Version)

	fmt.Fprintf(writer, "Tools:\n")
	for _, s := range result.Report.Sections() {
		if !s.Available() {
			fmt.Fprintf(writer, "  %-15s unavailable (%s)\n", s.Tool, s.Reason)
			continue
		}
		fmt.Fprintf(writer, "  %-15s %s\n", s.Tool, sectionSummary(s.Result))
	}
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "Scores:\n")
	for _, d := range result.Assessment.Dimensions {
		fmt.Fprintf(writer, "  %-16s %+4d  %s\n", d.Dimension, d.Delta, d.Outcome)
	}
	fmt.Fprintf(writer, "\n")

	_, err := io.WriteString(writer, RenderNarrativeText(result.Narrative))
	return err
}

func sectionSummary(result domain.ToolResult) string {
	switch r := result.(type) {
	case *domain.StyleBugResult:
		return fmt.Sprintf("%s findings, %s potential bugs",
			humanize.Comma(int64(r.TotalFindings())), humanize.Comma(int64(len(r.Bugs()))))
	case *domain.AggregateLintResult:
		return fmt.Sprintf("%s issues in %s modules",
			humanize.Comma(int64(r.Summary.IssueCount)), humanize.Comma(int64(r.Summary.ModuleCount)))
	case *domain.ComplexityResult:
		return fmt.Sprintf("%s files, %s functions, %s above rank B",
			humanize.Comma(int64(len(r.Files))), humanize.Comma(int64(len(r.AllFunctions()))),
			humanize.Comma(int64(len(r.UnhealthyFunctions()))))
	case *domain.CohesionResult:
		classes := r.AllClasses()
		if len(classes) == 0 {
			return "no classes"
		}
		return fmt.Sprintf("%s %s, mean cohesion %s%%",
			humanize.Comma(int64(len(classes))), pluralize(len(classes), "class", "classes"),
			humanize.FtoaWithDigits(r.MeanCohesion(), 2))
	case *domain.TestOutcome:
		if r.NoTestsRun() {
			return "no tests ran"
		}
		parts := []string{fmt.Sprintf("%s of %s passed", humanize.Comma(int64(r.Passed)), humanize.Comma(int64(r.Run)))}
		if r.Coverage != nil {
			parts = append(parts, fmt.Sprintf("coverage %s%%", humanize.FtoaWithDigits(r.Coverage.Percent, 1)))
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
