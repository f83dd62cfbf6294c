package parser

import (
	"errors"
	"testing"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lintReport = `{
  "summary": {
    "started": "2024-03-01 10:00:00.000000",
    "completed": "2024-03-01 10:00:02.500000",
    "time_taken": "2.50",
    "message_count": 4
  },
  "messages": [
    {
      "source": "pylint",
      "code": "unused-import",
      "location": {"path": "/repo/pkg/util.py", "module": "pkg.util", "function": null, "line": 1, "character": 0},
      "message": "Unused import os"
    },
    {
      "source": "pyflakes",
      "code": "F841",
      "location": {"path": "app.py", "module": "app", "function": "main", "line": 10, "character": 4},
      "message": "local variable 'x' is assigned to but never used"
    },
    {
      "source": "pylint",
      "code": "line-too-long",
      "location": {"path": "/repo/pkg/util.py", "module": "pkg.util", "function": "helper", "line": 22, "character": 0},
      "message": "Line too long (120/100)"
    },
    {
      "source": "dodgy",
      "code": "secret",
      "location": {"path": null, "line": null, "character": null},
      "message": "Possible hardcoded secret"
    }
  ]
}`

func TestParseAggregateLint_GroupsByModule(t *testing.T) {
	result, err := ParseAggregateLint([]byte(lintReport), "/repo")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01 10:00:00.000000", result.Summary.Started)
	assert.InDelta(t, 2.5, result.Summary.TimeTaken, 1e-9)
	assert.Equal(t, 2, result.Summary.ModuleCount)
	assert.Equal(t, 4, result.Summary.IssueCount, "issue count includes path-less messages")

	require.Len(t, result.Modules, 2)
	util := result.Modules[0]
	assert.Equal(t, "util", util.Name)
	assert.Equal(t, "pkg/util.py", util.Path)
	assert.Equal(t, 2, util.IssueCount)
	require.Len(t, util.Issues, 2)
	assert.Equal(t, "unused-import", util.Issues[0].Code)
	assert.Equal(t, "pylint", util.Issues[0].Source)
	assert.Equal(t, "", util.Issues[0].Function)
	assert.Equal(t, "helper", util.Issues[1].Function)
	assert.Equal(t, 22, util.Issues[1].Line)

	app := result.Modules[1]
	assert.Equal(t, "app", app.Name)
	assert.Equal(t, "app.py", app.Path)
	assert.Equal(t, 4, app.Issues[0].Column)
	assert.Equal(t, domain.CategoryLint, app.Issues[0].Category)
}

func TestParseAggregateLint_NumericTimeTakenAndNoise(t *testing.T) {
	data := []byte("Check Information\n=================\n" +
		`{"summary": {"started": "s", "completed": "c", "time_taken": 0.75}, "messages": []}` +
		"\ntrailing text")

	result, err := ParseAggregateLint(data, "/repo")
	require.NoError(t, err)
	assert.InDelta(t, 0.75, result.Summary.TimeTaken, 1e-9)
	assert.Equal(t, 0, result.Summary.IssueCount)
	assert.NotNil(t, result.Modules)
	assert.Empty(t, result.Modules)
}

func TestParseAggregateLint_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not json", "Traceback (most recent call last):\n  boom"},
		{"truncated", `{"summary": {"started": "s"`},
		{"missing summary", `{"messages": []}`},
		{"missing messages", `{"summary": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAggregateLint([]byte(tt.data), "/repo")
			require.Error(t, err)

			var parseErr *domain.ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, domain.ToolAggregateLint, parseErr.Tool)
		})
	}
}
