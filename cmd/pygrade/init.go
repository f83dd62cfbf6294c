package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/pygrade/internal/config"
	"github.com/ludo-technologies/pygrade/internal/constants"
)

// initOptions is what init writes and where
type initOptions struct {
	path    string
	profile config.Profile
	minimal bool
	force   bool
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a pygrade configuration file",
		Long: `Write a documented pygrade.yaml for one of the tool profiles.

Profiles:
  full    every tool, including the test suite
  static  linters and metrics only
  ci      every tool with coverage, JSON output and the report cache

Examples:
  pygrade init
  pygrade init --profile static
  pygrade init --minimal --force
  pygrade init -i`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.ConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Only the tool commands and grading thresholds")
	cmd.Flags().String("profile", string(config.ProfileFull),
		"Tool profile: full, static, ci")
	cmd.Flags().BoolP("interactive", "i", false,
		"Choose the profile and path with prompts")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	opts := initOptions{}
	opts.path, _ = cmd.Flags().GetString("config")
	opts.force, _ = cmd.Flags().GetBool("force")
	opts.minimal, _ = cmd.Flags().GetBool("minimal")
	profileName, _ := cmd.Flags().GetString("profile")
	interactive, _ := cmd.Flags().GetBool("interactive")

	opts.profile = config.Profile(profileName)
	if _, ok := config.GetProfilePresets()[opts.profile]; !ok {
		return fmt.Errorf("unknown profile %q (want full, static or ci)", profileName)
	}

	if interactive {
		if err := promptInitOptions(cmd.OutOrStdout(), &opts); err != nil {
			return err
		}
	}

	written, err := writeConfigFile(opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s (%s profile)\n", written, opts.profile)
	fmt.Fprintln(out, "\nRun 'pygrade tools' to see which tools are installed, then 'pygrade analyze .'")
	return nil
}

// writeConfigFile renders the template for opts and returns the absolute path written
func writeConfigFile(opts initOptions) (string, error) {
	if !opts.force {
		if _, err := os.Stat(opts.path); err == nil {
			return "", fmt.Errorf("%s already exists. Use --force to overwrite", opts.path)
		}
	}
	if err := checkParentDir(opts.path); err != nil {
		return "", err
	}

	content := config.GetFullConfigTemplate(opts.profile)
	if opts.minimal {
		content = config.GetMinimalConfigTemplate()
	}
	if err := os.WriteFile(opts.path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	if abs, err := filepath.Abs(opts.path); err == nil {
		return abs, nil
	}
	return opts.path, nil
}

func checkParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist: %s", dir)
	}
	return nil
}

type profileChoice struct {
	Label       string
	Description string
	Value       config.Profile
}

// promptInitOptions asks for the profile, template size and path
func promptInitOptions(w io.Writer, opts *initOptions) error {
	fmt.Fprintln(w, "\npygrade setup")
	fmt.Fprintln(w)

	choices := []profileChoice{
		{"full", "flake8, prospector, radon, cohesion and pytest", config.ProfileFull},
		{"static", "everything but the test suite", config.ProfileStatic},
		{"ci", "full run with coverage, JSON output and caching", config.ProfileCI},
	}
	cursor := 0
	for i, c := range choices {
		if c.Value == opts.profile {
			cursor = i
		}
	}

	profilePrompt := promptui.Select{
		Label:     "Profile",
		Items:     choices,
		CursorPos: cursor,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "> {{ .Label | cyan }}  {{ .Description | faint }}",
			Inactive: "  {{ .Label }}  {{ .Description | faint }}",
			Selected: "Profile: {{ .Label | green }}",
		},
	}
	idx, _, err := profilePrompt.Run()
	if err != nil {
		return fmt.Errorf("profile selection cancelled: %w", err)
	}
	opts.profile = choices[idx].Value

	minimalPrompt := promptui.Prompt{
		Label:     "Minimal template",
		IsConfirm: true,
	}
	if _, err := minimalPrompt.Run(); err == nil {
		opts.minimal = true
	} else if !errors.Is(err, promptui.ErrAbort) {
		return fmt.Errorf("template choice cancelled: %w", err)
	}

	pathPrompt := promptui.Prompt{
		Label:    "Config path",
		Default:  opts.path,
		Validate: checkParentDir,
	}
	path, err := pathPrompt.Run()
	if err != nil {
		return fmt.Errorf("config path input cancelled: %w", err)
	}
	if path != "" {
		opts.path = path
	}
	return nil
}
