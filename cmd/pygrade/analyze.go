package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/service"
)

const defaultHTMLReport = "pygrade-report.html"

var (
	selectTools   []string
	outputFormat  string
	configPath    string
	jsonOutput    bool
	htmlOutput    bool
	outputPath    string
	withDetails   bool
	noGrade       bool
	noCache       bool
	withCoverage  bool
	analyzeCommit string
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <path>",
		Short: "Analyze and grade a Python project",
		Long: `Run the analysis tools on a Python project and write the graded report.

Tools that are not installed or fail are reported as unavailable; the grade
is computed from the remaining tools.

Examples:
  pygrade analyze .
  pygrade analyze --select flake8,radon src/
  pygrade analyze --details --json src/
  pygrade analyze --html -o report.html .`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringSliceVarP(&selectTools, "select", "s", nil,
		"Tools to run (comma-separated): style_bug,aggregate_lint,complexity,cohesion,tests")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "",
		"Output format: text, json, yaml, html (default from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false,
		"Output results as JSON (shorthand for --format json)")
	cmd.Flags().BoolVar(&htmlOutput, "html", false,
		"Output results as HTML (shorthand for --format html)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"Output file path (default: stdout, "+defaultHTMLReport+" for HTML)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().BoolVar(&withDetails, "details", false,
		"Explain every finding in the narrative")
	cmd.Flags().BoolVar(&noGrade, "no-grade", false,
		"Leave the grade out of the narrative")
	cmd.Flags().BoolVar(&noCache, "no-cache", false,
		"Do not read or store cached reports")
	cmd.Flags().BoolVar(&withCoverage, "coverage", false,
		"Collect statement coverage while running the tests")
	cmd.Flags().StringVar(&analyzeCommit, "commit", "",
		"Commit hash used as the cache key (default: HEAD of the analyzed repository)")

	return cmd
}

// analyzeOverrides collects the flags that were set explicitly
func analyzeOverrides(cmd *cobra.Command) service.ConfigOverrides {
	o := service.ConfigOverrides{Tools: selectTools}

	switch {
	case jsonOutput:
		o.Format = string(domain.OutputFormatJSON)
	case htmlOutput:
		o.Format = string(domain.OutputFormatHTML)
	default:
		o.Format = outputFormat
	}
	if cmd.Flags().Changed("details") {
		o.IncludeDetails = &withDetails
	}
	if cmd.Flags().Changed("no-grade") {
		includeGrade := !noGrade
		o.IncludeGrade = &includeGrade
	}
	if noCache {
		disabled := false
		o.CacheEnabled = &disabled
	}
	if cmd.Flags().Changed("coverage") {
		o.Coverage = &withCoverage
	}
	return o
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	root := args[0]

	cfg, err := loadConfig(configPath, root, analyzeOverrides(cmd))
	if err != nil {
		return err
	}
	format, err := domain.ParseOutputFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	target := reportPath(format, outputPath, cfg.Output.Directory)

	// Progress bars go to stderr; keep them off when stdout carries machine output
	showProgress := target != "" || format == domain.OutputFormatText
	g, err := newGrader(cfg, root, showProgress)
	if err != nil {
		return err
	}
	defer g.Close()

	result, err := g.Run(root, analyzeCommit)
	if err != nil {
		return err
	}

	if target == "" {
		return writeReport(result, format, cmd.OutOrStdout())
	}
	if err := writeReportFile(result, format, target); err != nil {
		return err
	}
	absPath, _ := filepath.Abs(target)
	fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to: %s\n", absPath)
	return nil
}

// reportPath picks the file the report is written to; empty means stdout.
// HTML always goes to a file.
func reportPath(format domain.OutputFormat, output, dir string) string {
	if output != "" {
		return output
	}
	if format == domain.OutputFormatHTML {
		return filepath.Join(dir, defaultHTMLReport)
	}
	if dir != "" {
		ext := string(format)
		if format == domain.OutputFormatText {
			ext = "txt"
		}
		return filepath.Join(dir, "pygrade-report."+ext)
	}
	return ""
}

func writeReportFile(result *domain.GradeResult, format domain.OutputFormat, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := writeReport(result, format, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeReport(result *domain.GradeResult, format domain.OutputFormat, w io.Writer) error {
	return service.NewOutputFormatter().Write(result, format, w)
}
