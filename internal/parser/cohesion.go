package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ludo-technologies/pygrade/domain"
)

var classPattern = regexp.MustCompile(`^Class:\s+(\S+)(?:\s+\((\d+):(\d+)\))?`)

// cohesionState is the four-level state machine behind ParseCohesion.
// Each open record is flushed into its parent when a sibling or ancestor
// opens and at end of input.
type cohesionState struct {
	result *domain.CohesionResult
	file   *domain.CohesionFile
	class  *domain.CohesionClass
	method *domain.CohesionMethod
}

// ParseCohesion parses the cohesion tool's verbose hierarchical output.
// Leading indentation is not significant; lines that do not fit the
// current state are ignored.
func ParseCohesion(output string) *domain.CohesionResult {
	s := &cohesionState{result: &domain.CohesionResult{Files: []domain.CohesionFile{}}}
	for _, line := range splitLines(output) {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "File:"):
			s.openFile(strings.TrimSpace(strings.TrimPrefix(line, "File:")))
		case strings.HasPrefix(line, "Class:"):
			s.openClass(line)
		case strings.HasPrefix(line, "Function:"):
			s.openMethod(strings.Fields(strings.TrimPrefix(line, "Function:")))
		case strings.HasPrefix(line, "Variable:"):
			s.addVariable(strings.Fields(strings.TrimPrefix(line, "Variable:")))
		case strings.HasPrefix(line, "Total:"):
			s.closeClass(strings.TrimSpace(strings.TrimPrefix(line, "Total:")))
		}
	}
	s.flushFile()
	return s.result
}

func (s *cohesionState) openFile(name string) {
	s.flushFile()
	s.file = &domain.CohesionFile{Filename: name, Classes: []domain.CohesionClass{}}
}

func (s *cohesionState) openClass(line string) {
	if s.file == nil {
		return
	}
	s.flushClass()
	m := classPattern.FindStringSubmatch(line)
	if m == nil {
		return
	}
	c := &domain.CohesionClass{Name: m[1], Methods: []domain.CohesionMethod{}}
	c.Line, _ = strconv.Atoi(m[2])
	c.Column, _ = strconv.Atoi(m[3])
	s.class = c
}

// openMethod handles "<name> [<type>] [<a>/<b>] <pct>%"
func (s *cohesionState) openMethod(fields []string) {
	if s.class == nil || len(fields) == 0 {
		return
	}
	s.flushMethod()
	m := &domain.CohesionMethod{Name: fields[0], Variables: []domain.CohesionVariable{}}
	for _, f := range fields[1:] {
		switch {
		case strings.HasSuffix(f, "%"):
			m.Percentage = parsePercent(f)
		case strings.Contains(f, "/"):
			m.Ratio = f
		default:
			m.MethodType = f
		}
	}
	s.method = m
}

func (s *cohesionState) addVariable(fields []string) {
	if s.method == nil || len(fields) == 0 {
		return
	}
	v := domain.CohesionVariable{Name: fields[0]}
	if len(fields) > 1 {
		v.CohesiveUse = strings.EqualFold(fields[1], "true")
	}
	s.method.Variables = append(s.method.Variables, v)
}

func (s *cohesionState) closeClass(total string) {
	if s.class == nil {
		return
	}
	s.flushMethod()
	s.class.Total = parsePercent(total)
	s.class.TotalReported = true
	s.file.Classes = append(s.file.Classes, *s.class)
	s.class = nil
}

func (s *cohesionState) flushMethod() {
	if s.method == nil {
		return
	}
	s.class.Methods = append(s.class.Methods, *s.method)
	s.method = nil
}

func (s *cohesionState) flushClass() {
	if s.class == nil {
		return
	}
	s.flushMethod()
	if len(s.class.Methods) > 0 {
		sum := 0.0
		for _, m := range s.class.Methods {
			sum += m.Percentage
		}
		s.class.Total = sum / float64(len(s.class.Methods))
	}
	s.file.Classes = append(s.file.Classes, *s.class)
	s.class = nil
}

func (s *cohesionState) flushFile() {
	if s.file == nil {
		return
	}
	s.flushClass()
	s.result.Files = append(s.result.Files, *s.file)
	s.file = nil
}

func parsePercent(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")), 64)
	if err != nil {
		return 0
	}
	return v
}
