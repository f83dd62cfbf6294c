package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ludo-technologies/pygrade/domain"
)

// diagnosticPattern matches "<file>:<row>:<col>: <code> <message>"
var diagnosticPattern = regexp.MustCompile(`^(.+?):(\d+):(\d+):\s+([A-Z]+[0-9]+)\s+(.*)$`)

// DefaultStyleFlags returns the category flags requested by default
func DefaultStyleFlags() []string {
	cats := domain.DefaultStyleCategories()
	flags := make([]string, 0, len(cats))
	for _, c := range cats {
		flags = append(flags, c.Flag)
	}
	return flags
}

// ParseStyleBug parses style/bug linter output into one group per requested
// flag. A diagnostic belongs to the group whose flag is the first letter of
// its code; diagnostics for unrequested flags and unparseable lines are skipped.
func ParseStyleBug(output, root string, flags []string) *domain.StyleBugResult {
	if len(flags) == 0 {
		flags = DefaultStyleFlags()
	}

	result := &domain.StyleBugResult{Groups: make([]domain.FindingGroup, 0, len(flags))}
	index := make(map[string]int, len(flags))
	for _, flag := range flags {
		flag = strings.ToUpper(strings.TrimSpace(flag))
		if flag == "" {
			continue
		}
		if _, dup := index[flag]; dup {
			continue
		}
		group := domain.FindingGroup{Flag: flag, Name: flag, Category: domain.CategoryOther, Findings: []domain.Finding{}}
		if c, ok := domain.StyleCategoryForFlag(flag); ok {
			group.Name, group.Description, group.Category = c.Name, c.Description, c.Category
		}
		index[flag] = len(result.Groups)
		result.Groups = append(result.Groups, group)
	}

	for _, line := range splitLines(output) {
		finding, ok := parseDiagnostic(line, root)
		if !ok {
			continue
		}
		i, ok := index[finding.Code[:1]]
		if !ok {
			continue
		}
		g := &result.Groups[i]
		finding.Category = g.Category
		g.Findings = append(g.Findings, finding)
	}
	return result
}

func parseDiagnostic(line, root string) (domain.Finding, bool) {
	m := diagnosticPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return domain.Finding{}, false
	}
	row, err := strconv.Atoi(m[2])
	if err != nil {
		return domain.Finding{}, false
	}
	col, err := strconv.Atoi(m[3])
	if err != nil {
		return domain.Finding{}, false
	}
	file := RelativePath(root, m[1])
	return domain.Finding{
		Tool:    domain.ToolStyleBug,
		File:    file,
		Module:  ModuleName(file),
		Line:    row,
		Column:  col,
		Code:    m[4],
		Message: capitalize(strings.TrimSpace(m[5])),
	}, true
}
