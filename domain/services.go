package domain

import (
	"context"
	"io"
	"time"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatHTML OutputFormat = "html"
)

// ParseOutputFormat validates a format name
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatHTML:
		return OutputFormat(s), nil
	case "":
		return OutputFormatText, nil
	}
	return "", NewInvalidInputError("unsupported output format: "+s, nil)
}

// Invocation describes one external tool run
type Invocation struct {
	Tool    ToolName
	Command string
	Args    []string
	Dir     string
	Env     []string // appended to the parent environment

	// SuccessCodes are non-zero exit codes meaning "ran fine, found issues"
	SuccessCodes []int

	// EmptyCodes are exit codes meaning "ran fine, nothing to report"
	EmptyCodes []int

	Timeout time.Duration
}

// InvocationResult holds the captured output of a finished tool run
type InvocationResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
	Empty    bool
}

// ProcessInvoker runs external analysis commands
type ProcessInvoker interface {
	Execute(ctx context.Context, inv Invocation) (*InvocationResult, error)
}

// ToolPipeline runs one tool against a tree and parses its output
type ToolPipeline interface {
	Tool() ToolName
	Enabled() bool
	Run(ctx context.Context, root string) (ToolResult, error)
}

// ReportGatherer runs every configured pipeline and merges the results
type ReportGatherer interface {
	Gather(ctx context.Context, root string) (*Report, error)
}

// ReportCache stores reports keyed by an opaque key (commit hash + settings)
type ReportCache interface {
	// Get returns ErrCacheMiss when no report exists for key
	Get(ctx context.Context, key string) (*Report, error)
	Put(ctx context.Context, key string, report *Report) error
	Close() error
}

// Synthesizer turns a report into narrative prose and a grade
type Synthesizer interface {
	Synthesize(report *Report, opts SynthesizeOptions) *Narrative
}

// PathFilter decides whether a root-relative path takes part in the report
type PathFilter interface {
	Keep(relPath string) bool
}

// FunctionLocator resolves the enclosing function name of a source line
type FunctionLocator interface {
	// Locate returns the qualified name of the innermost function containing line (1-based)
	Locate(path string, line int) (string, bool)
}

// OutputFormatter writes a grade result in the requested format
type OutputFormatter interface {
	Write(result *GradeResult, format OutputFormat, writer io.Writer) error
}

// ToolOutcome is the result of one pipeline run. Err is set when the tool
// failed or never started.
type ToolOutcome struct {
	Tool     ToolName
	Result   ToolResult
	Err      error
	Duration time.Duration
}

// ToolScheduler runs pipelines concurrently with bounded parallelism and
// returns one outcome per pipeline in input order
type ToolScheduler interface {
	Schedule(ctx context.Context, root string, pipelines []ToolPipeline) []ToolOutcome
}

// ProgressManager creates progress indicators for long-running work
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks the completion of one task group
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}
