package config

import (
	"strconv"
	"strings"
)

// Profile selects which tools a generated configuration enables
type Profile string

const (
	// ProfileFull runs every tool
	ProfileFull Profile = "full"
	// ProfileStatic runs the static tools only; tests are skipped
	ProfileStatic Profile = "static"
	// ProfileCI runs every tool with coverage and JSON output
	ProfileCI Profile = "ci"
)

// ProfilePreset holds the settings a profile changes
type ProfilePreset struct {
	TestsEnabled bool
	Coverage     bool
	OutputFormat string
	CacheEnabled bool
}

// GetProfilePresets returns presets for each profile
func GetProfilePresets() map[Profile]ProfilePreset {
	return map[Profile]ProfilePreset{
		ProfileFull: {
			TestsEnabled: true,
			OutputFormat: "text",
		},
		ProfileStatic: {
			TestsEnabled: false,
			OutputFormat: "text",
		},
		ProfileCI: {
			TestsEnabled: true,
			Coverage:     true,
			OutputFormat: "json",
			CacheEnabled: true,
		},
	}
}

// GetFullConfigTemplate returns the documented config template as YAML
func GetFullConfigTemplate(profile Profile) string {
	preset, ok := GetProfilePresets()[profile]
	if !ok {
		preset = GetProfilePresets()[ProfileFull]
	}
	defaults := DefaultConfig()

	return `# pygrade configuration
# Every key can be overridden with PYGRADE_<SECTION>_<KEY>, e.g. PYGRADE_OUTPUT_FORMAT=json

# ============================================================================
# TOOLS
# ============================================================================
# Each tool runs once per analysis. A disabled or missing tool leaves its
# section of the report unavailable and the grade is computed without it.
tools:
  # flake8 with the bugbear and naming plugins
  style_bug:
    enabled: true
    command: ` + DefaultStyleBugCommand + `
    args: []
    timeout_seconds: ` + strconv.Itoa(DefaultToolTimeoutSeconds) + `
    # Code prefixes to select; B findings are counted as potential bugs
    categories: ` + formatYAMLList(defaults.Tools.StyleBug.Categories) + `

  # prospector aggregate lint, read as JSON
  aggregate_lint:
    enabled: true
    command: ` + DefaultAggregateLintCommand + `
    args: []
    timeout_seconds: ` + strconv.Itoa(DefaultToolTimeoutSeconds) + `

  # radon raw, cc, hal and mi metrics
  complexity:
    enabled: true
    command: ` + DefaultComplexityCommand + `
    args: []
    timeout_seconds: ` + strconv.Itoa(DefaultToolTimeoutSeconds) + `

  # class cohesion
  cohesion:
    enabled: true
    command: ` + DefaultCohesionCommand + `
    args: []
    timeout_seconds: ` + strconv.Itoa(DefaultToolTimeoutSeconds) + `

  # pytest; runs the project's own tests
  tests:
    enabled: ` + strconv.FormatBool(preset.TestsEnabled) + `
    command: ` + DefaultTestsCommand + `
    args: []
    timeout_seconds: ` + strconv.Itoa(DefaultToolTimeoutSeconds) + `
    # Collect statement coverage with pytest-cov
    coverage: ` + strconv.FormatBool(preset.Coverage) + `

# ============================================================================
# ANALYSIS
# ============================================================================
analysis:
  # Findings in files matching these gitignore-style patterns are dropped
  exclude_patterns: ` + formatYAMLList(defaults.Analysis.ExcludePatterns) + `
  # Also drop findings in files ignored by the project's .gitignore
  respect_gitignore: true
  # Attach the enclosing function name to style findings
  resolve_functions: true

# ============================================================================
# GRADING
# ============================================================================
grading:
  # Append the grade and score to the summary
  include_grade: true
  # Explain each finding below its section
  include_details: false
  # Methods with a cohesion percentage below this are called out
  cohesion_method_threshold: ` + strconv.FormatFloat(DefaultCohesionMethodThreshold, 'f', -1, 64) + `

# ============================================================================
# PERFORMANCE
# ============================================================================
performance:
  # Tools run at the same time
  max_goroutines: ` + strconv.Itoa(DefaultMaxGoroutines) + `
  # Upper bound for the whole analysis
  timeout_seconds: ` + strconv.Itoa(DefaultTimeoutSeconds) + `

# ============================================================================
# CACHE
# ============================================================================
# Results are keyed by the checked-out commit and the tool settings above
cache:
  enabled: ` + strconv.FormatBool(preset.CacheEnabled) + `
  # Empty uses the user cache directory
  directory: ""

# ============================================================================
# OUTPUT
# ============================================================================
output:
  # text, json, yaml or html
  format: ` + preset.OutputFormat + `
  # Write report files here instead of stdout
  directory: ""

logging:
  # debug, info, warn or error
  level: ` + DefaultLogLevel + `
  # text or json
  format: ` + DefaultLogFormat + `
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate() string {
	return `# pygrade configuration (minimal)

tools:
  tests:
    enabled: true
    coverage: false

analysis:
  exclude_patterns: [".venv", "build", "dist"]

grading:
  include_grade: true

output:
  format: text
`
}

// formatYAMLList formats a string slice as a YAML flow sequence
func formatYAMLList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = strconv.Quote(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
