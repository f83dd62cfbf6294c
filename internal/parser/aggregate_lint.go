package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"path"
	"strconv"
	"strings"

	"github.com/ludo-technologies/pygrade/domain"
)

type lintLocation struct {
	Path      *string `json:"path"`
	Line      *int    `json:"line"`
	Character *int    `json:"character"`
	Function  *string `json:"function"`
}

type lintMessage struct {
	Source   string       `json:"source"`
	Code     string       `json:"code"`
	Location lintLocation `json:"location"`
	Message  string       `json:"message"`
}

type lintSummary struct {
	Started   string          `json:"started"`
	Completed string          `json:"completed"`
	TimeTaken json.RawMessage `json:"time_taken"`
}

type lintOutput struct {
	Summary  *lintSummary   `json:"summary"`
	Messages *[]lintMessage `json:"messages"`
}

// ParseAggregateLint parses the aggregate linter's JSON report. Messages are
// grouped by root-relative module path in first-seen order; messages without
// a path are dropped but still counted in the summary's issue count.
func ParseAggregateLint(data []byte, root string) (*domain.AggregateLintResult, error) {
	start := bytes.IndexByte(data, '{')
	if start < 0 {
		return nil, domain.NewParseError(domain.ToolAggregateLint, errors.New("no JSON object in output"))
	}

	var out lintOutput
	// Decode rather than Unmarshal so trailing output after the object is ignored
	if err := json.NewDecoder(bytes.NewReader(data[start:])).Decode(&out); err != nil {
		return nil, domain.NewParseError(domain.ToolAggregateLint, err)
	}
	if out.Summary == nil {
		return nil, domain.NewParseError(domain.ToolAggregateLint, errors.New("missing summary"))
	}
	if out.Messages == nil {
		return nil, domain.NewParseError(domain.ToolAggregateLint, errors.New("missing messages"))
	}

	messages := *out.Messages
	result := &domain.AggregateLintResult{
		Summary: domain.LintSummary{
			Started:    out.Summary.Started,
			Completed:  out.Summary.Completed,
			TimeTaken:  parseSeconds(out.Summary.TimeTaken),
			IssueCount: len(messages),
		},
		Modules: []domain.LintModule{},
	}

	index := make(map[string]int)
	for _, msg := range messages {
		if msg.Location.Path == nil || strings.TrimSpace(*msg.Location.Path) == "" {
			continue
		}
		modulePath := RelativePath(root, *msg.Location.Path)
		i, seen := index[modulePath]
		if !seen {
			base := ModuleName(modulePath)
			i = len(result.Modules)
			index[modulePath] = i
			result.Modules = append(result.Modules, domain.LintModule{
				Name:   strings.TrimSuffix(base, path.Ext(base)),
				Path:   modulePath,
				Issues: []domain.Finding{},
			})
		}
		m := &result.Modules[i]
		m.Issues = append(m.Issues, domain.Finding{
			Tool:     domain.ToolAggregateLint,
			File:     modulePath,
			Module:   m.Name,
			Line:     derefInt(msg.Location.Line),
			Column:   derefInt(msg.Location.Character),
			Code:     msg.Code,
			Message:  msg.Message,
			Category: domain.CategoryLint,
			Function: derefString(msg.Location.Function),
			Source:   msg.Source,
		})
		m.IssueCount++
	}
	result.Summary.ModuleCount = len(result.Modules)
	return result, nil
}

// parseSeconds accepts a JSON number or a numeric string
func parseSeconds(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v
		}
	}
	return 0
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
