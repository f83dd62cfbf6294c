package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/pygrade/internal/config"
	"github.com/ludo-technologies/pygrade/internal/constants"
)

func runInitCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := initCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestInitCommand_BasicConfigCreation(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "pygrade.yaml")

	out, err := runInitCmd(t, "--config", configPath)
	if err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if !strings.Contains(out, "Created ") {
		t.Errorf("Expected creation notice, got %q", out)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	contentStr := string(content)
	expectedSections := []string{
		"tools:",
		"style_bug:",
		"aggregate_lint:",
		"complexity:",
		"cohesion:",
		"tests:",
		"grading:",
		"cohesion_method_threshold",
		"logging:",
	}
	for _, section := range expectedSections {
		if !strings.Contains(contentStr, section) {
			t.Errorf("Config file missing expected section: %s", section)
		}
	}
}

func TestInitCommand_GeneratedConfigLoads(t *testing.T) {
	for _, profile := range []config.Profile{config.ProfileFull, config.ProfileStatic, config.ProfileCI} {
		t.Run(string(profile), func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "pygrade.yaml")
			if _, err := runInitCmd(t, "--config", configPath, "--profile", string(profile)); err != nil {
				t.Fatalf("init failed: %v", err)
			}

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				t.Fatalf("Generated config does not load: %v", err)
			}
			preset := config.GetProfilePresets()[profile]
			if cfg.Tools.Tests.Enabled != preset.TestsEnabled {
				t.Errorf("tests.enabled = %v, want %v", cfg.Tools.Tests.Enabled, preset.TestsEnabled)
			}
			if cfg.Output.Format != preset.OutputFormat {
				t.Errorf("output.format = %s, want %s", cfg.Output.Format, preset.OutputFormat)
			}
		})
	}
}

func TestInitCommand_UnknownProfile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "pygrade.yaml")

	if _, err := runInitCmd(t, "--config", configPath, "--profile", "django"); err == nil {
		t.Fatal("Expected error for an unknown profile")
	}
	if _, err := os.Stat(configPath); !os.IsNotExist(err) {
		t.Error("No file should be written for an unknown profile")
	}
}

func TestInitCommand_ForceOverwrite(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "pygrade.yaml")

	if err := os.WriteFile(configPath, []byte("existing: true\n"), 0644); err != nil {
		t.Fatalf("Failed to create existing file: %v", err)
	}

	_, err := runInitCmd(t, "--config", configPath)
	if err == nil {
		t.Fatal("Expected error when file exists without --force")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Expected 'already exists' error, got: %v", err)
	}

	if _, err := runInitCmd(t, "--config", configPath, "--force"); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}
	if !strings.Contains(string(content), "tools:") {
		t.Error("Config file was not overwritten with new content")
	}
}

func TestInitCommand_MinimalConfig(t *testing.T) {
	dir := t.TempDir()
	minimalPath := filepath.Join(dir, "minimal.yaml")
	fullPath := filepath.Join(dir, "full.yaml")

	if _, err := runInitCmd(t, "--config", minimalPath, "--minimal"); err != nil {
		t.Fatalf("init --minimal failed: %v", err)
	}
	if _, err := runInitCmd(t, "--config", fullPath); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	minimal, _ := os.ReadFile(minimalPath)
	full, _ := os.ReadFile(fullPath)

	if !strings.Contains(string(minimal), "minimal") {
		t.Error("Minimal config should indicate it's minimal")
	}
	if len(minimal) >= len(full) {
		t.Errorf("Minimal config (%d bytes) should be smaller than full config (%d bytes)", len(minimal), len(full))
	}
	if _, err := config.LoadConfig(minimalPath); err != nil {
		t.Errorf("Minimal config does not load: %v", err)
	}
}

func TestInitCommand_InvalidDirectory(t *testing.T) {
	_, err := runInitCmd(t, "--config", "/nonexistent/directory/pygrade.yaml")
	if err == nil {
		t.Fatal("Expected error when directory doesn't exist")
	}
	if !strings.Contains(err.Error(), "directory does not exist") {
		t.Errorf("Expected 'directory does not exist' error, got: %v", err)
	}
}

func TestInitCmd_FlagsExist(t *testing.T) {
	cmd := initCmd()

	for _, name := range []string{"config", "force", "minimal", "profile", "interactive"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("Missing expected flag: --%s", name)
		}
	}
	for short, long := range map[string]string{"c": "config", "f": "force", "i": "interactive"} {
		if cmd.Flags().ShorthandLookup(short) == nil {
			t.Errorf("Missing short flag -%s for --%s", short, long)
		}
	}
}

func TestInitCmd_DefaultConfigPath(t *testing.T) {
	flag := initCmd().Flags().Lookup("config")
	if flag == nil {
		t.Fatal("config flag not found")
	}
	if flag.DefValue != constants.ConfigFileName {
		t.Errorf("Expected default config path %s, got %s", constants.ConfigFileName, flag.DefValue)
	}
}
