package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cohesionOutput = `File: shapes/circle.py
  Class: Circle (3:0)
    Function: __init__ 2/2 100.00%
      Variable: radius True
      Variable: name True
    Function: area 1/2 50.00%
      Variable: radius True
      Variable: name False
    Function: unit staticmethod 0/2 0.00%
      Variable: radius False
      Variable: name False
    Total: 50.00%
  Class: Square (20:0)
    Function: side 1/1 100.00%
      Variable: length True
    Total: 100.00%
File: shapes/__init__.py
File: shapes/util.py
  Class: Helper (1:0)
    Function: run 1/1 100.00%
      Variable: state True
    Total: 100.00%
`

func TestParseCohesion_Hierarchy(t *testing.T) {
	result := ParseCohesion(cohesionOutput)

	require.Len(t, result.Files, 3, "one file record per File: header")
	circleFile := result.Files[0]
	assert.Equal(t, "shapes/circle.py", circleFile.Filename)
	require.Len(t, circleFile.Classes, 2)

	circle := circleFile.Classes[0]
	assert.Equal(t, "Circle", circle.Name)
	assert.Equal(t, 3, circle.Line)
	assert.Equal(t, 0, circle.Column)
	assert.Equal(t, 50.0, circle.Total)
	assert.True(t, circle.TotalReported)
	require.Len(t, circle.Methods, 3)

	init := circle.Methods[0]
	assert.Equal(t, "__init__", init.Name)
	assert.Equal(t, "2/2", init.Ratio)
	assert.Equal(t, 100.0, init.Percentage)
	assert.Equal(t, "", init.MethodType)
	require.Len(t, init.Variables, 2)
	assert.True(t, init.Variables[0].CohesiveUse)

	unit := circle.Methods[2]
	assert.Equal(t, "staticmethod", unit.MethodType)
	assert.Equal(t, 0.0, unit.Percentage)
	assert.False(t, unit.Variables[1].CohesiveUse)

	assert.Empty(t, result.Files[1].Classes)
	assert.Len(t, result.AllClasses(), 3)
}

func TestParseCohesion_MethodCountPerFile(t *testing.T) {
	result := ParseCohesion(cohesionOutput)

	// each file's method count equals its Function: header count
	chunks := strings.Split(cohesionOutput, "File: ")[1:]
	require.Len(t, result.Files, len(chunks))
	for i, chunk := range chunks {
		want := strings.Count(chunk, "Function:")
		got := 0
		for _, c := range result.Files[i].Classes {
			got += len(c.Methods)
		}
		assert.Equal(t, want, got, "file %s", result.Files[i].Filename)
	}
}

func TestParseCohesion_FlushesTailWithoutTotal(t *testing.T) {
	output := `File: a.py
  Class: Open (1:0)
    Function: first 1/1 100.00%
      Variable: x True
    Function: second 1/2 50.00%
      Variable: x True`

	result := ParseCohesion(output)

	require.Len(t, result.Files, 1)
	require.Len(t, result.Files[0].Classes, 1, "class ending mid-input is flushed")
	class := result.Files[0].Classes[0]
	require.Len(t, class.Methods, 2, "method ending mid-input is flushed")
	assert.Len(t, class.Methods[1].Variables, 1)
	assert.False(t, class.TotalReported)
	assert.Equal(t, 75.0, class.Total, "total falls back to the method mean")
}

func TestParseCohesion_NewClassFlushesPrevious(t *testing.T) {
	output := `File: a.py
  Class: A (1:0)
    Function: m 1/1 100.00%
  Class: B (5:4)
    Function: n 0/1 0.00%
    Total: 0.00%`

	result := ParseCohesion(output)

	require.Len(t, result.Files[0].Classes, 2)
	assert.Equal(t, "A", result.Files[0].Classes[0].Name)
	assert.Len(t, result.Files[0].Classes[0].Methods, 1)
	assert.Equal(t, 4, result.Files[0].Classes[1].Column)
}

func TestParseCohesion_StrayLines(t *testing.T) {
	output := `    Function: orphan 1/1 100.00%
      Variable: x True
    Total: 10.00%
  Class: NoFile (1:0)
some unrelated warning
File: b.py
      Variable: y True
`
	result := ParseCohesion(output)

	require.Len(t, result.Files, 1)
	assert.Equal(t, "b.py", result.Files[0].Filename)
	assert.Empty(t, result.Files[0].Classes)
}

func TestParseCohesion_Empty(t *testing.T) {
	result := ParseCohesion("")
	assert.NotNil(t, result.Files)
	assert.Empty(t, result.Files)
	assert.Equal(t, 0.0, result.MeanCohesion())
}
