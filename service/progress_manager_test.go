package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ludo-technologies/pygrade/domain"
)

func TestNewProgressManager_Disabled(t *testing.T) {
	pm := NewProgressManager(false)
	if pm.IsInteractive() {
		t.Error("expected a silent progress manager when disabled")
	}
	if _, ok := pm.(SilentProgress); !ok {
		t.Errorf("expected SilentProgress, got %T", pm)
	}
}

func TestNewProgressManager_CIIsSilent(t *testing.T) {
	t.Setenv("CI", "true")
	if IsInteractiveEnvironment() {
		t.Error("CI environments should not be interactive")
	}
	if NewProgressManager(true).IsInteractive() {
		t.Error("progress should stay silent in CI even when enabled")
	}
}

func TestNewProgressManager_OptOutVariable(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("PYGRADE_NO_PROGRESS", "1")
	if IsInteractiveEnvironment() {
		t.Error("PYGRADE_NO_PROGRESS should disable progress")
	}
}

func TestSilentProgress(t *testing.T) {
	var pm domain.ProgressManager = SilentProgress{}
	task := pm.StartTask("Running tools", 5)
	task.Increment(1)
	task.Describe("style_bug")
	task.Complete()
	pm.Close()
}

func TestTerminalProgress_ListsFinishedTools(t *testing.T) {
	var buf bytes.Buffer
	pm := NewTerminalProgress(&buf)
	if !pm.IsInteractive() {
		t.Error("terminal progress should be interactive")
	}

	task := pm.StartTask("Running tools", 2)
	task.Describe("style_bug")
	task.Increment(1)
	task.Describe("tests")
	task.Increment(1)

	tp := task.(*toolProgress)
	if got := strings.Join(tp.finished, ","); got != "style_bug,tests" {
		t.Errorf("finished tools = %q", got)
	}

	task.Complete()
	pm.Close()

	if !strings.Contains(buf.String(), "Running tools") {
		t.Errorf("expected the task label in the output, got %q", buf.String())
	}
}

func TestTerminalProgress_CloseAfterCompleteIsSafe(t *testing.T) {
	pm := NewTerminalProgress(&bytes.Buffer{})
	task := pm.StartTask("Running tools", 1)
	task.Complete()
	pm.Close()
	pm.Close()
}
