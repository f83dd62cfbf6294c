package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/internal/analyzer"
)

// sectionHeader matches "==== TITLE ====" lines of a test transcript
var sectionHeader = regexp.MustCompile(`^=+\s*(.*?)\s*=+$`)

// ParseTestRun counts passed and failed tests in a test-runner transcript.
//
// Failures come from the "____ name ____" headers of the FAILURES section,
// or from FAILED summary lines when that section is absent. Passes come from
// PASSED lines after the PASSES header, or anywhere in the transcript when
// there is no PASSES header.
func ParseTestRun(output string) *domain.TestOutcome {
	lines := splitLines(output)
	outcome := domain.EmptyTestOutcome()

	failuresAt, passesAt := -1, -1
	for i, line := range lines {
		m := sectionHeader.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		switch m[1] {
		case "FAILURES":
			if failuresAt < 0 {
				failuresAt = i
			}
		case "PASSES":
			if passesAt < 0 {
				passesAt = i
			}
		}
	}

	if failuresAt >= 0 {
		for _, line := range lines[failuresAt+1:] {
			line = strings.TrimSpace(line)
			if sectionHeader.MatchString(line) {
				break
			}
			if strings.HasPrefix(line, "___") {
				if name := strings.Trim(line, "_ "); name != "" {
					outcome.FailedTests = append(outcome.FailedTests, name)
				}
			}
		}
	} else {
		for _, line := range lines {
			if name, ok := summaryTestName(line, "FAILED "); ok {
				outcome.FailedTests = append(outcome.FailedTests, name)
			}
		}
	}

	from := 0
	if passesAt >= 0 {
		from = passesAt + 1
	}
	for _, line := range lines[from:] {
		if name, ok := summaryTestName(line, "PASSED "); ok {
			outcome.PassedTests = append(outcome.PassedTests, name)
		}
	}

	outcome.Passed = len(outcome.PassedTests)
	outcome.Failed = len(outcome.FailedTests)
	outcome.Run = outcome.Passed + outcome.Failed
	if outcome.Run > 0 {
		outcome.PercentagePassed = analyzer.RoundTo(float64(outcome.Passed)/float64(outcome.Run)*100, 2)
	}
	return outcome
}

// summaryTestName extracts the test name from "PASSED path::Class::name" or
// "FAILED path::name - reason"
func summaryTestName(line, prefix string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	id := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	if i := strings.Index(id, " - "); i >= 0 {
		id = id[:i]
	}
	parts := strings.Split(id, "::")
	name := strings.TrimSpace(parts[len(parts)-1])
	return name, name != ""
}

// ParseCoverage reads the TOTAL line of a coverage report:
// "TOTAL <statements> <missed> [<branches> <partial>] <percent>%".
// It returns nil when no TOTAL line is present.
func ParseCoverage(output string) *domain.Coverage {
	for _, line := range splitLines(output) {
		fields := strings.Fields(line)
		if len(fields) < 4 || fields[0] != "TOTAL" {
			continue
		}
		statements, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		missed, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		last := fields[len(fields)-1]
		if !strings.HasSuffix(last, "%") {
			continue
		}
		return &domain.Coverage{
			Statements: statements,
			Missed:     missed,
			Percent:    parsePercent(last),
		}
	}
	return nil
}
