package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/pygrade/app"
	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/service"
)

// CheckExitError is a custom error type for check command exit codes
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

var (
	checkMinGrade    string
	checkMinScore    int
	checkSelectTools []string
	checkVerbose     bool
	checkJSON        bool
	checkNoCache     bool
	checkConfigPath  string
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <path>",
		Short: "Grade gate for CI/CD pipelines",
		Long: `Grade a Python project and fail when it falls below the required grade or score.

Exit codes:
  0 - All checks pass
  1 - Grade or score below the threshold
  2 - Analysis error (invalid path, bad configuration, etc.)

Tools that could not run are reported as warnings and do not fail the check.

Examples:
  # Require at least a passing grade
  pygrade check --min-grade G .

  # Require a minimum score
  pygrade check --min-score 15 src/

  # JSON output for machine parsing
  pygrade check --json --min-grade VG .`,
		RunE:          runCheck,
		SilenceUsage:  true, // Don't print usage on errors (we handle our own output)
		SilenceErrors: true, // Don't print error messages (we handle our own output)
	}

	cmd.Flags().StringVar(&checkMinGrade, "min-grade", "",
		"Minimum grade required: IG, G, VG")
	cmd.Flags().IntVar(&checkMinScore, "min-score", 0,
		"Minimum score required")
	cmd.Flags().StringSliceVarP(&checkSelectTools, "select", "s", nil,
		"Tools to run (comma-separated): style_bug,aggregate_lint,complexity,cohesion,tests")
	cmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false,
		"Show detailed output")
	cmd.Flags().BoolVar(&checkJSON, "json", false,
		"Output results as JSON")
	cmd.Flags().BoolVar(&checkNoCache, "no-cache", false,
		"Do not read or store cached reports")
	cmd.Flags().StringVarP(&checkConfigPath, "config", "c", "",
		"Path to config file")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return &CheckExitError{Code: app.CheckExitError, Message: "exactly one path must be specified"}
	}
	root := args[0]

	thresholds := app.CheckThresholds{
		MinScore:    checkMinScore,
		HasMinScore: cmd.Flags().Changed("min-score"),
	}
	if checkMinGrade != "" {
		label, err := domain.ParseGradeLabel(checkMinGrade)
		if err != nil {
			return &CheckExitError{Code: app.CheckExitError, Message: err.Error()}
		}
		thresholds.MinGrade = label
	}

	overrides := service.ConfigOverrides{Tools: checkSelectTools}
	if checkNoCache {
		disabled := false
		overrides.CacheEnabled = &disabled
	}
	cfg, err := loadConfig(checkConfigPath, root, overrides)
	if err != nil {
		return &CheckExitError{Code: app.CheckExitError, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}

	g, err := newGrader(cfg, root, !checkJSON)
	if err != nil {
		return &CheckExitError{Code: app.CheckExitError, Message: err.Error()}
	}
	defer g.Close()

	result, err := g.Run(root, "")
	if err != nil {
		return &CheckExitError{Code: app.CheckExitError, Message: err.Error()}
	}

	check := app.EvaluateCheck(result, thresholds)
	if checkJSON {
		return outputCheckJSON(cmd.OutOrStdout(), check)
	}
	return outputCheckText(cmd.OutOrStdout(), check)
}

func outputCheckText(w io.Writer, result *domain.CheckResult) error {
	if result.Passed {
		fmt.Fprintf(w, "PASS: grade %s (score %d)\n", result.Grade.Label, result.Grade.Score)
	} else {
		fmt.Fprintf(w, "FAIL: grade %s (score %d)\n", result.Grade.Label, result.Grade.Score)
		fmt.Fprintf(w, "  Violations: %d\n", result.Summary.TotalViolations)
	}

	for _, v := range result.Violations {
		severity := "ERROR"
		if v.Severity == "warning" {
			severity = "WARN"
		}
		fmt.Fprintf(w, "  [%s] %s: %s\n", severity, v.Category, v.Message)
	}

	if checkVerbose {
		fmt.Fprintf(w, "\nSummary:\n")
		fmt.Fprintf(w, "  Tools run: %d\n", result.Summary.ToolsRun)
		fmt.Fprintf(w, "  Lint issues: %d\n", result.Summary.LintIssues)
		fmt.Fprintf(w, "  Potential bugs: %d\n", result.Summary.BugFindings)
		fmt.Fprintf(w, "  Complex functions: %d\n", result.Summary.ComplexFunctions)
		fmt.Fprintf(w, "  Tests: %d run, %d failed\n", result.Summary.TestsRun, result.Summary.TestsFailed)
		fmt.Fprintf(w, "  Duration: %dms\n", result.Duration)
	}

	if !result.Passed {
		return &CheckExitError{Code: result.ExitCode, Message: ""}
	}
	return nil
}

func outputCheckJSON(w io.Writer, result *domain.CheckResult) error {
	if err := service.WriteJSON(w, result); err != nil {
		return &CheckExitError{Code: app.CheckExitError, Message: fmt.Sprintf("failed to encode JSON: %v", err)}
	}

	if !result.Passed {
		return &CheckExitError{Code: result.ExitCode, Message: ""}
	}
	return nil
}
