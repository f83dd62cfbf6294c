package service

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/internal/config"
)

// ConfigOverrides carries command-line settings that take precedence over
// the configuration file. Nil pointers leave the file's value in place.
type ConfigOverrides struct {
	// Tools restricts the run to these tools; empty keeps the configured set
	Tools []string

	Format         string
	IncludeGrade   *bool
	IncludeDetails *bool
	CacheEnabled   *bool
	Coverage       *bool
	LogLevel       string
}

// ConfigurationLoaderImpl loads configuration and applies overrides
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration from path, or discovers it from target
// upward when path is empty
func (c *ConfigurationLoaderImpl) LoadConfig(path, target string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(path, target)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration", err)
	}
	return cfg, nil
}

// toolAliases maps default binary names to tool keys
var toolAliases = map[string]string{
	"flake8":     config.ToolStyleBug,
	"prospector": config.ToolAggregateLint,
	"radon":      config.ToolComplexity,
	"pytest":     config.ToolTests,
}

// ResolveToolName accepts a tool key or its default binary name
func ResolveToolName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := toolAliases[name]; ok {
		return alias, nil
	}
	for _, known := range config.ToolNames() {
		if name == known {
			return known, nil
		}
	}
	return "", domain.NewInvalidInputError(
		fmt.Sprintf("unknown tool %q (want one of: %s)", name, strings.Join(config.ToolNames(), ", ")), nil)
}

// MergeConfig returns a copy of base with the overrides applied
func (c *ConfigurationLoaderImpl) MergeConfig(base *config.Config, override ConfigOverrides) (*config.Config, error) {
	merged := *base

	if len(override.Tools) > 0 {
		selected := make(map[string]bool, len(override.Tools))
		for _, name := range override.Tools {
			tool, err := ResolveToolName(name)
			if err != nil {
				return nil, err
			}
			selected[tool] = true
		}
		for _, name := range config.ToolNames() {
			tc, _ := merged.Tools.Tool(name)
			tc.Enabled = selected[name]
		}
	}

	if override.Format != "" {
		merged.Output.Format = override.Format
	}
	if override.IncludeGrade != nil {
		merged.Grading.IncludeGrade = *override.IncludeGrade
	}
	if override.IncludeDetails != nil {
		merged.Grading.IncludeDetails = *override.IncludeDetails
	}
	if override.CacheEnabled != nil {
		merged.Cache.Enabled = *override.CacheEnabled
	}
	if override.Coverage != nil {
		merged.Tools.Tests.Coverage = *override.Coverage
	}
	if override.LogLevel != "" {
		merged.Logging.Level = override.LogLevel
	}

	if err := merged.Validate(); err != nil {
		return nil, domain.NewConfigError("invalid configuration", err)
	}
	return &merged, nil
}

// SynthesizeOptions derives the narrative options from cfg
func (c *ConfigurationLoaderImpl) SynthesizeOptions(cfg *config.Config) domain.SynthesizeOptions {
	return domain.SynthesizeOptions{
		IncludeGrade:   cfg.Grading.IncludeGrade,
		IncludeDetails: cfg.Grading.IncludeDetails,
	}
}
