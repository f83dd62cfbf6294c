package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/service"
)

// seedCache writes a config pointing at a fresh cache directory holding n reports
func seedCache(t *testing.T, n int) (configPath, cacheDir string) {
	t.Helper()
	dir := t.TempDir()
	cacheDir = filepath.Join(dir, "cache")
	configPath = filepath.Join(dir, "pygrade.yaml")
	content := "cache:\n  enabled: true\n  directory: " + cacheDir + "\nlogging:\n  level: error\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cache, err := service.OpenReportCache(cacheDir)
	if err != nil {
		t.Fatalf("OpenReportCache failed: %v", err)
	}
	defer cache.Close()
	for i := 0; i < n; i++ {
		report := domain.NewReport("/src", domain.OKSection(&domain.CohesionResult{}))
		key := service.ReportCacheKey(strings.Repeat(string(rune('a'+i)), 40), "fp")
		if err := cache.Put(context.Background(), key, report); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	return configPath, cacheDir
}

func runCacheCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := cacheCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestCacheCmd_Stats(t *testing.T) {
	configPath, cacheDir := seedCache(t, 2)

	out, err := runCacheCmd(t, "stats", "--config", configPath)
	if err != nil {
		t.Fatalf("cache stats failed: %v", err)
	}
	if !strings.Contains(out, "2 reports cached") {
		t.Errorf("Expected report count, got %q", out)
	}
	if !strings.Contains(out, cacheDir) {
		t.Errorf("Expected cache path under %s, got %q", cacheDir, out)
	}
}

func TestCacheCmd_Clear(t *testing.T) {
	configPath, cacheDir := seedCache(t, 3)

	out, err := runCacheCmd(t, "clear", "--config", configPath)
	if err != nil {
		t.Fatalf("cache clear failed: %v", err)
	}
	if !strings.Contains(out, "Removed 3 reports") {
		t.Errorf("Expected removal notice, got %q", out)
	}

	cache, err := service.OpenReportCache(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()
	n, err := cache.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Expected an empty cache after clear, got %d reports", n)
	}
}

func TestCacheCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range cacheCmd().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"stats", "clear"} {
		if !names[want] {
			t.Errorf("Missing cache subcommand %s", want)
		}
	}
}
