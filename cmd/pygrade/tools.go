package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/internal/config"
	"github.com/ludo-technologies/pygrade/service"
)

var (
	toolsJSON       bool
	toolsConfigPath string
)

func toolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools [path]",
		Short: "Show which analysis tools are installed",
		Long: `Resolve each configured tool command on PATH without running it.

A missing tool is not an error for analyze; its section of the report is
marked unavailable.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTools,
	}

	cmd.Flags().BoolVar(&toolsJSON, "json", false,
		"Output results as JSON")
	cmd.Flags().StringVarP(&toolsConfigPath, "config", "c", "",
		"Path to config file")

	return cmd
}

func runTools(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	cfg, err := loadConfig(toolsConfigPath, target, service.ConfigOverrides{})
	if err != nil {
		return err
	}

	tools := resolveTools(cfg, service.NewProcessInvoker(newLogger(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)))
	if toolsJSON {
		return service.WriteJSON(cmd.OutOrStdout(), tools)
	}
	writeToolsText(cmd.OutOrStdout(), cfg, tools)
	return nil
}

func resolveTools(cfg *config.Config, invoker *service.ProcessInvokerImpl) []service.ToolAvailability {
	var out []service.ToolAvailability
	for _, name := range config.ToolNames() {
		tc, _ := cfg.Tools.Tool(name)
		out = append(out, invoker.Resolve(domain.ToolName(name), tc.Command))
	}
	return out
}

func writeToolsText(w io.Writer, cfg *config.Config, tools []service.ToolAvailability) {
	for _, t := range tools {
		tc, _ := cfg.Tools.Tool(string(t.Tool))
		status := "missing"
		if t.Available {
			status = t.Path
		}
		if !tc.Enabled {
			status += " (disabled)"
		}
		fmt.Fprintf(w, "%-15s %-12s %s\n", t.Tool, t.Command, status)
	}
}
