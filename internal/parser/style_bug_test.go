package parser

import (
	"testing"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStyleBug_SingleDiagnostic(t *testing.T) {
	result := ParseStyleBug("src/a.py:12:4: B001 do not use bare except\n", "/repo", []string{"B"})

	require.Len(t, result.Groups, 1)
	bugs := result.Group("B")
	require.NotNil(t, bugs)
	require.Len(t, bugs.Findings, 1)

	f := bugs.Findings[0]
	assert.Equal(t, "a.py", f.Module)
	assert.Equal(t, "src/a.py", f.File)
	assert.Equal(t, 12, f.Line)
	assert.Equal(t, 4, f.Column)
	assert.Equal(t, "B001", f.Code)
	assert.Equal(t, "Do not use bare except", f.Message)
	assert.Equal(t, domain.CategoryBug, f.Category)
	assert.Equal(t, domain.ToolStyleBug, f.Tool)
}

func TestParseStyleBug_GroupsByFlag(t *testing.T) {
	output := `./pkg/mod.py:1:1: F401 'os' imported but unused
./pkg/mod.py:3:80: E501 line too long (88 > 79 characters)
./pkg/mod.py:7:5: N802 function name 'doThing' should be lowercase
./pkg/mod.py:9:1: W391 blank line at end of file
/repo/pkg/other.py:4:9: B006 Do not use mutable data structures for argument defaults
`
	result := ParseStyleBug(output, "/repo", nil)

	require.Len(t, result.Groups, 5, "default flags produce five groups")
	assert.Equal(t, []string{"B", "E", "W", "F", "N"}, []string{
		result.Groups[0].Flag, result.Groups[1].Flag, result.Groups[2].Flag, result.Groups[3].Flag, result.Groups[4].Flag,
	})
	assert.Equal(t, 5, result.TotalFindings())

	assert.Equal(t, "pkg/other.py", result.Group("B").Findings[0].File, "absolute path made root-relative")
	assert.Equal(t, "pkg/mod.py", result.Group("F").Findings[0].File, "leading ./ stripped")
	assert.Equal(t, "'os' imported but unused", result.Group("F").Findings[0].Message, "quote first rune is unchanged")
	assert.Equal(t, domain.CategoryNamingError, result.Group("N").Findings[0].Category)
}

func TestParseStyleBug_SkipsUnparseableLines(t *testing.T) {
	output := `warning: something odd
pkg/a.py:oops:1: E1 broken
pkg/a.py:2:1: E302 expected 2 blank lines, found 1

pkg/a.py:3:1: C901 'f' is too complex (12)
`
	result := ParseStyleBug(output, "/repo", []string{"E", "W"})

	require.Len(t, result.Groups, 2)
	assert.Len(t, result.Group("E").Findings, 1)
	assert.Empty(t, result.Group("W").Findings)
	assert.NotNil(t, result.Group("W").Findings, "empty groups carry an empty slice")
	assert.Nil(t, result.Group("C"), "unrequested flags are not grouped")
}

func TestParseStyleBug_EmptyOutput(t *testing.T) {
	result := ParseStyleBug("", "/repo", nil)
	assert.Equal(t, 0, result.TotalFindings())
	assert.Empty(t, result.Bugs())
}

func TestParseStyleBug_WindowsPath(t *testing.T) {
	result := ParseStyleBug(`C:\repo\src\a.py:3:1: E265 block comment should start with '# '`, `C:\repo`, []string{"E"})

	require.Len(t, result.Group("E").Findings, 1)
	assert.Equal(t, "src/a.py", result.Group("E").Findings[0].File)
	assert.Equal(t, "a.py", result.Group("E").Findings[0].Module)
}

func TestRelativePath(t *testing.T) {
	tests := []struct {
		root, in, want string
	}{
		{"/repo", "/repo/a/b.py", "a/b.py"},
		{"/repo/", "/repo/a.py", "a.py"},
		{"/repo", "./a.py", "a.py"},
		{"/repo", "a/../b.py", "b.py"},
		{"/repo", "/elsewhere/c.py", "/elsewhere/c.py"},
		{"/repo", "", ""},
		{"/repo", "/repository/x.py", "/repository/x.py"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativePath(tt.root, tt.in), "RelativePath(%q, %q)", tt.root, tt.in)
	}
}
