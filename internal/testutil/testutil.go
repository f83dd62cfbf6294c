// Package testutil provides fake tool executables and Python tree fixtures
// for testing pygrade components
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// FakeTool describes a stand-in executable for one analysis tool
type FakeTool struct {
	// Stdout is printed verbatim
	Stdout string
	// Stderr is printed to standard error
	Stderr string
	// ExitCode is returned by the script
	ExitCode int
	// Sleep delays the script, in seconds
	Sleep int
	// BySubcommand selects output by the first argument, e.g. radon's
	// raw/cc/hal/mi; entries override Stdout
	BySubcommand map[string]string
}

// RequireShell skips the test when POSIX shell scripts cannot run
func RequireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}
}

// WriteFakeTool writes an executable script named name into dir and
// returns its path. The script records its arguments in <name>.args.
func WriteFakeTool(t *testing.T, dir, name string, tool FakeTool) string {
	t.Helper()
	RequireShell(t)

	payloadDir := filepath.Join(dir, "."+name+".out")
	if err := os.MkdirAll(payloadDir, 0755); err != nil {
		t.Fatalf("Failed to create payload dir: %v", err)
	}
	writeFile(t, filepath.Join(payloadDir, "stdout"), tool.Stdout)
	writeFile(t, filepath.Join(payloadDir, "stderr"), tool.Stderr)

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&b, "printf '%%s\\n' \"$@\" > %q\n", filepath.Join(dir, name+".args"))
	if tool.Sleep > 0 {
		fmt.Fprintf(&b, "sleep %d\n", tool.Sleep)
	}
	if len(tool.BySubcommand) > 0 {
		b.WriteString("case \"$1\" in\n")
		for sub, out := range tool.BySubcommand {
			file := filepath.Join(payloadDir, "sub-"+sub)
			writeFile(t, file, out)
			fmt.Fprintf(&b, "  %s) cat %q; exit %d ;;\n", sub, file, tool.ExitCode)
		}
		b.WriteString("esac\n")
	}
	fmt.Fprintf(&b, "cat %q\n", filepath.Join(payloadDir, "stdout"))
	fmt.Fprintf(&b, "cat %q >&2\n", filepath.Join(payloadDir, "stderr"))
	fmt.Fprintf(&b, "exit %d\n", tool.ExitCode)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0755); err != nil {
		t.Fatalf("Failed to write fake tool: %v", err)
	}
	return path
}

// ReadArgs returns the arguments the fake tool name was last called with
func ReadArgs(t *testing.T, dir, name string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name+".args"))
	if err != nil {
		t.Fatalf("Fake tool %s was not called: %v", name, err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// PythonTree is a small project used across tests
var PythonTree = map[string]string{
	"app/__init__.py": "",
	"app/models.py": `class Account:
    def __init__(self, owner):
        self.owner = owner
        self.balance = 0

    def deposit(self, amount):
        self.balance += amount
        return self.balance


def helper(items=[]):
    return items
`,
	"app/util.py": `import os


def walk(root):
    for entry in os.listdir(root):
        if entry.startswith("."):
            continue
        yield entry
`,
	"tests/test_models.py": `from app.models import Account


def test_deposit():
    assert Account("a").deposit(5) == 5
`,
	"build/generated.py": "x = 1\n",
	".gitignore":         "build/\n",
}

// WritePythonTree writes files (relative path to content) under a new
// temporary directory and returns its path
func WritePythonTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		writeFile(t, filepath.Join(root, filepath.FromSlash(rel)), content)
	}
	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}
