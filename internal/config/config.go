package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. PYGRADE_OUTPUT_FORMAT
const EnvPrefix = "PYGRADE"

// Default tool commands
const (
	DefaultStyleBugCommand      = "flake8"
	DefaultAggregateLintCommand = "prospector"
	DefaultComplexityCommand    = "radon"
	DefaultCohesionCommand      = "cohesion"
	DefaultTestsCommand         = "pytest"
)

// Default limits
const (
	// DefaultToolTimeoutSeconds bounds a single tool invocation
	DefaultToolTimeoutSeconds = 300

	// DefaultMaxGoroutines is the number of tool pipelines run at once
	DefaultMaxGoroutines = 5

	// DefaultTimeoutSeconds bounds the whole gather phase
	DefaultTimeoutSeconds = 900

	// DefaultCohesionMethodThreshold is the percentage below which a method
	// is called out in the cohesion details
	DefaultCohesionMethodThreshold = 50.0
)

// Default output and logging settings
const (
	DefaultOutputFormat = "text"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultCacheDirName = "pygrade"
)

// Tool section keys, matching the report's tool names
const (
	ToolStyleBug      = "style_bug"
	ToolAggregateLint = "aggregate_lint"
	ToolComplexity    = "complexity"
	ToolCohesion      = "cohesion"
	ToolTests         = "tests"
)

// Config represents the main configuration structure
type Config struct {
	// Tools configures each external analysis tool
	Tools ToolsConfig `json:"tools" mapstructure:"tools" yaml:"tools"`

	// Analysis controls which files findings are kept for
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" yaml:"analysis"`

	// Grading controls narrative generation
	Grading GradingConfig `json:"grading" mapstructure:"grading" yaml:"grading"`

	// Performance bounds concurrency and overall run time
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`

	// Cache configures the result cache keyed by commit
	Cache CacheConfig `json:"cache" mapstructure:"cache" yaml:"cache"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Logging configures the structured logger
	Logging LoggingConfig `json:"logging" mapstructure:"logging" yaml:"logging"`
}

// ToolConfig is the invocation setup shared by every tool
type ToolConfig struct {
	// Enabled turns the tool on or off; a disabled tool is reported unavailable
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`

	// Command is the executable name or path
	Command string `json:"command" mapstructure:"command" yaml:"command"`

	// Args are extra arguments appended before the target directory
	Args []string `json:"args" mapstructure:"args" yaml:"args"`

	// TimeoutSeconds bounds one invocation of the tool
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// StyleBugConfig configures flake8
type StyleBugConfig struct {
	ToolConfig `mapstructure:",squash" yaml:",inline"`

	// Categories are the flake8 code prefixes to select (B, E, W, F, N)
	Categories []string `json:"categories" mapstructure:"categories" yaml:"categories"`
}

// TestsConfig configures pytest
type TestsConfig struct {
	ToolConfig `mapstructure:",squash" yaml:",inline"`

	// Coverage adds --cov to collect statement coverage
	Coverage bool `json:"coverage" mapstructure:"coverage" yaml:"coverage"`
}

// ToolsConfig groups the per-tool settings
type ToolsConfig struct {
	StyleBug      StyleBugConfig `json:"style_bug" mapstructure:"style_bug" yaml:"style_bug"`
	AggregateLint ToolConfig     `json:"aggregate_lint" mapstructure:"aggregate_lint" yaml:"aggregate_lint"`
	Complexity    ToolConfig     `json:"complexity" mapstructure:"complexity" yaml:"complexity"`
	Cohesion      ToolConfig     `json:"cohesion" mapstructure:"cohesion" yaml:"cohesion"`
	Tests         TestsConfig    `json:"tests" mapstructure:"tests" yaml:"tests"`
}

// Tool returns the shared settings of a tool by its key
func (t *ToolsConfig) Tool(name string) (*ToolConfig, bool) {
	switch name {
	case ToolStyleBug:
		return &t.StyleBug.ToolConfig, true
	case ToolAggregateLint:
		return &t.AggregateLint, true
	case ToolComplexity:
		return &t.Complexity, true
	case ToolCohesion:
		return &t.Cohesion, true
	case ToolTests:
		return &t.Tests.ToolConfig, true
	}
	return nil, false
}

// AnalysisConfig holds file selection settings
type AnalysisConfig struct {
	// ExcludePatterns are gitignore-style patterns; findings in matching
	// files are dropped from the report
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// RespectGitignore also drops findings in files ignored by .gitignore
	RespectGitignore bool `json:"respect_gitignore" mapstructure:"respect_gitignore" yaml:"respect_gitignore"`

	// ResolveFunctions attaches the enclosing function name to style findings
	ResolveFunctions bool `json:"resolve_functions" mapstructure:"resolve_functions" yaml:"resolve_functions"`
}

// GradingConfig holds narrative settings
type GradingConfig struct {
	// IncludeGrade appends the grade block to the narrative
	IncludeGrade bool `json:"include_grade" mapstructure:"include_grade" yaml:"include_grade"`

	// IncludeDetails adds per-finding explanations to each section
	IncludeDetails bool `json:"include_details" mapstructure:"include_details" yaml:"include_details"`

	// CohesionMethodThreshold is the method percentage below which a
	// method is called out
	CohesionMethodThreshold float64 `json:"cohesion_method_threshold" mapstructure:"cohesion_method_threshold" yaml:"cohesion_method_threshold"`
}

// PerformanceConfig bounds parallel execution
type PerformanceConfig struct {
	// MaxGoroutines is the maximum number of tools run concurrently
	MaxGoroutines int `json:"max_goroutines" mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds the whole gather phase
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// CacheConfig holds result cache settings
type CacheConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`

	// Directory holds the cache database; empty means the user cache dir
	Directory string `json:"directory" mapstructure:"directory" yaml:"directory"`
}

// OutputConfig holds output settings
type OutputConfig struct {
	// Format is one of text, json, yaml, html
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// Directory is where report files are written; empty means stdout
	Directory string `json:"directory" mapstructure:"directory" yaml:"directory"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `json:"level" mapstructure:"level" yaml:"level"`

	// Format is text or json
	Format string `json:"format" mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Tools: ToolsConfig{
			StyleBug: StyleBugConfig{
				ToolConfig: defaultTool(DefaultStyleBugCommand),
				Categories: []string{"B", "E", "W", "F", "N"},
			},
			AggregateLint: defaultTool(DefaultAggregateLintCommand),
			Complexity:    defaultTool(DefaultComplexityCommand),
			Cohesion:      defaultTool(DefaultCohesionCommand),
			Tests: TestsConfig{
				ToolConfig: defaultTool(DefaultTestsCommand),
				Coverage:   false,
			},
		},
		Analysis: AnalysisConfig{
			ExcludePatterns: []string{
				".git",
				".venv",
				"venv",
				"__pycache__",
				".tox",
				"build",
				"dist",
				"*.egg-info",
			},
			RespectGitignore: true,
			ResolveFunctions: true,
		},
		Grading: GradingConfig{
			IncludeGrade:            true,
			IncludeDetails:          false,
			CohesionMethodThreshold: DefaultCohesionMethodThreshold,
		},
		Performance: PerformanceConfig{
			MaxGoroutines:  DefaultMaxGoroutines,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Cache: CacheConfig{
			Enabled: false,
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

func defaultTool(command string) ToolConfig {
	return ToolConfig{
		Enabled:        true,
		Command:        command,
		Args:           []string{},
		TimeoutSeconds: DefaultToolTimeoutSeconds,
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration, discovering a config file from
// the target directory upward when configPath is empty
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads and parses a configuration file and applies
// environment overrides. An empty path yields defaults plus environment.
func loadConfigFromFile(configPath string) (*Config, error) {
	// Create a new viper instance to avoid race conditions
	v := viper.New()
	config := DefaultConfig()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// bindEnvKeys registers every scalar key so AutomaticEnv applies during
// Unmarshal even when no config file sets the key
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"analysis.respect_gitignore",
		"analysis.resolve_functions",
		"grading.include_grade",
		"grading.include_details",
		"grading.cohesion_method_threshold",
		"performance.max_goroutines",
		"performance.timeout_seconds",
		"cache.enabled",
		"cache.directory",
		"output.format",
		"output.directory",
		"logging.level",
		"logging.format",
		"tools.tests.coverage",
	}
	for _, tool := range ToolNames() {
		for _, field := range []string{"enabled", "command", "timeout_seconds"} {
			keys = append(keys, "tools."+tool+"."+field)
		}
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// ToolNames returns the configurable tool keys in report order
func ToolNames() []string {
	return []string{ToolStyleBug, ToolAggregateLint, ToolComplexity, ToolCohesion, ToolTests}
}

// configCandidates lists the recognized file names in order of preference
var configCandidates = []string{
	"pygrade.yaml",
	"pygrade.yml",
	".pygrade.yaml",
	".pygrade.toml",
	"pygrade.json",
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for configuration files from targetPath upward,
// then in the current directory, the XDG config directory and home, and
// finally PYGRADE_CONFIG
func findDefaultConfig(targetPath string) string {
	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, configCandidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	if config := searchConfigInDirectory(".", configCandidates); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, "pygrade"), configCandidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		if config := searchConfigInDirectory(filepath.Join(home, ".config", "pygrade"), configCandidates); config != "" {
			return config
		}
		if config := searchConfigInDirectory(home, configCandidates); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv(EnvPrefix + "_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	for _, name := range ToolNames() {
		tool, _ := c.Tools.Tool(name)
		if tool.Enabled && strings.TrimSpace(tool.Command) == "" {
			return fmt.Errorf("tools.%s.command cannot be empty when the tool is enabled", name)
		}
		if tool.TimeoutSeconds < 0 {
			return fmt.Errorf("tools.%s.timeout_seconds must be >= 0, got %d", name, tool.TimeoutSeconds)
		}
	}

	if c.Tools.StyleBug.Enabled && len(c.Tools.StyleBug.Categories) == 0 {
		return fmt.Errorf("tools.style_bug.categories cannot be empty")
	}
	for _, cat := range c.Tools.StyleBug.Categories {
		if len(cat) != 1 || cat[0] < 'A' || cat[0] > 'Z' {
			return fmt.Errorf("invalid tools.style_bug.categories entry '%s', must be a single uppercase letter", cat)
		}
	}

	if c.Grading.CohesionMethodThreshold < 0 || c.Grading.CohesionMethodThreshold > 100 {
		return fmt.Errorf("grading.cohesion_method_threshold must be between 0 and 100, got %g",
			c.Grading.CohesionMethodThreshold)
	}

	if c.Performance.MaxGoroutines < 0 {
		return fmt.Errorf("performance.max_goroutines must be >= 0, got %d", c.Performance.MaxGoroutines)
	}
	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
		"html": true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, html", c.Output.Format)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid logging.level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid logging.format '%s', must be text or json", c.Logging.Format)
	}

	return nil
}

// Fingerprint is a stable string of every setting that changes the
// gathered report, used to key cached results
func (c *Config) Fingerprint() string {
	var parts []string
	for _, name := range ToolNames() {
		tool, _ := c.Tools.Tool(name)
		parts = append(parts, fmt.Sprintf("%s:%t:%s:%s", name, tool.Enabled, tool.Command, strings.Join(tool.Args, " ")))
	}
	cats := append([]string(nil), c.Tools.StyleBug.Categories...)
	sort.Strings(cats)
	excludes := append([]string(nil), c.Analysis.ExcludePatterns...)
	sort.Strings(excludes)
	parts = append(parts,
		"categories:"+strings.Join(cats, ","),
		fmt.Sprintf("coverage:%t", c.Tools.Tests.Coverage),
		"exclude:"+strings.Join(excludes, ","),
		fmt.Sprintf("gitignore:%t", c.Analysis.RespectGitignore),
		fmt.Sprintf("resolve:%t", c.Analysis.ResolveFunctions),
	)
	return strings.Join(parts, "|")
}
