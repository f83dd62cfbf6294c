package main

import (
	"fmt"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/pygrade/service"
)

var cacheConfigPath string

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the report cache",
		Long: `Reports are cached per commit and configuration fingerprint in a
SQLite database under cache.directory (default: the user cache directory).`,
	}

	cmd.PersistentFlags().StringVarP(&cacheConfigPath, "config", "c", "",
		"Path to config file")

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show where the cache lives and how many reports it holds",
		Args:  cobra.NoArgs,
		RunE:  runCacheStats,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached report",
		Args:  cobra.NoArgs,
		RunE:  runCacheClear,
	})
	return cmd
}

func openConfiguredCache() (*service.SQLiteReportCache, error) {
	cfg, err := loadConfig(cacheConfigPath, ".", service.ConfigOverrides{})
	if err != nil {
		return nil, err
	}
	return service.OpenReportCache(cfg.Cache.Directory)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	cache, err := openConfiguredCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	n, err := cache.Count(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s cached\n", cache.Path(), english.Plural(int(n), "report", ""))
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	cache, err := openConfiguredCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	n, err := cache.Count(cmd.Context())
	if err != nil {
		return err
	}
	if err := cache.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", english.Plural(int(n), "report", ""), cache.Path())
	return nil
}
