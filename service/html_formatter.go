package service

import (
	"html/template"
	"io"
	"sort"
	"time"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/internal/analyzer"
)

// maxHTMLRows caps the rows of each HTML table
const maxHTMLRows = 20

// HTMLData represents the data for HTML template
type HTMLData struct {
	GeneratedAt string
	Duration    int64
	Version     string
	RunID       string
	Root        string
	Commit      string
	Cached      bool
	Grade       domain.Grade
	HasGrade    bool
	Narrative   template.HTML
	Dimensions  []domain.DimensionScore
	Sections    []domain.Section
	Functions   []complexFunction
	Bugs        []domain.Finding
	Tests       *domain.TestOutcome
}

type complexFunction struct {
	File string
	domain.FunctionMetrics
}

// WriteHTML writes the grade result as a standalone HTML page
func (f *OutputFormatterImpl) WriteHTML(result *domain.GradeResult, writer io.Writer) error {
	fragment, err := RenderNarrativeHTML(result.Narrative)
	if err != nil {
		return err
	}

	generated := result.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	// RenderNarrativeHTML escapes every value it interpolates
	data := HTMLData{
		GeneratedAt: generated.Format("2006-01-02 15:04:05"),
		Duration:    result.Duration.Milliseconds(),
		Version:     result.Version,
		RunID:       result.RunID,
		Root:        result.Root,
		Commit:      result.Commit,
		Cached:      result.Cached,
		Grade:       result.Assessment.Grade,
		HasGrade:    result.Narrative != nil && result.Narrative.IncludeGrade,
		Narrative:   template.HTML(fragment),
		Dimensions:  result.Assessment.Dimensions,
		Sections:    result.Report.Sections(),
		Functions:   mostComplexFunctions(result.Report.Complexity(), maxHTMLRows),
		Bugs:        result.Report.StyleBug().Bugs(),
		Tests:       result.Report.Tests(),
	}

	funcMap := template.FuncMap{
		"scoreClass": ScoreClass,
		"gradeClass": func(label domain.GradeLabel) string {
			switch label {
			case domain.GradeVG:
				return "grade-vg"
			case domain.GradeG:
				return "grade-g"
			default:
				return "grade-ig"
			}
		},
		"riskClass": func(rank domain.ComplexityRank) string {
			return "risk-" + analyzer.RiskLevel(rank)
		},
	}

	tmpl := template.Must(template.New("grade").Funcs(funcMap).Parse(htmlTemplate))
	return tmpl.Execute(writer, data)
}

func mostComplexFunctions(res *domain.ComplexityResult, limit int) []complexFunction {
	if res == nil {
		return nil
	}
	var out []complexFunction
	for _, file := range res.Files {
		for _, fn := range file.Functions {
			out = append(out, complexFunction{File: file.File, FunctionMetrics: fn})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Complexity > out[j].Complexity
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>pygrade Analysis Report</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
        }
        .container { max-width: 1200px; margin: 0 auto; padding: 20px; }
        .header, .panel {
            background: white;
            border-radius: 10px;
            padding: 30px;
            margin-bottom: 20px;
            box-shadow: 0 10px 30px rgba(0,0,0,0.1);
        }
        .header h1 { color: #667eea; margin-bottom: 10px; }
        .header .subtitle { color: #666; font-size: 14px; }
        .score-badge {
            display: inline-block;
            padding: 10px 20px;
            border-radius: 50px;
            font-size: 24px;
            font-weight: bold;
            margin: 10px 0;
        }
        .grade-vg { background: #4caf50; color: white; }
        .grade-g { background: #ff9800; color: white; }
        .grade-ig { background: #f44336; color: white; }
        .narrative h3 { margin: 16px 0 8px; color: #2c3e50; }
        .narrative h5 { margin: 16px 0 4px; font-size: 16px; color: #667eea; }
        .narrative p { margin-bottom: 6px; }
        .narrative ul { margin: 6px 0 6px 24px; }
        .text-danger { color: #f44336; }
        .text-secondary { color: #666; }
        .text-success { color: #4caf50; }
        .table { width: 100%; border-collapse: collapse; margin: 20px 0; }
        .table th, .table td { padding: 12px; text-align: left; border-bottom: 1px solid #ddd; }
        .table th { background: #f8f9fa; font-weight: 600; }
        .risk-low { color: #4caf50; }
        .risk-medium { color: #ff9800; }
        .risk-high { color: #f44336; }
        .status-ok { color: #4caf50; }
        .status-unavailable { color: #f44336; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>pygrade Analysis Report</h1>
            <p class="subtitle">{{.Root}}{{if .Commit}} @ {{.Commit}}{{end}}</p>
            <p class="subtitle">Generated: {{.GeneratedAt}} | Duration: {{.Duration}}ms | Version: {{.Version}} | Run: {{.RunID}}{{if .Cached}} | cached{{end}}</p>
            {{if .HasGrade}}
            <div class="score-badge {{gradeClass .Grade.Label}}">
                Grade: {{.Grade.Label}} (score {{.Grade.Score}})
            </div>
            {{end}}
        </div>

        <div class="panel narrative">
            {{.Narrative}}
        </div>

        <div class="panel">
            <h2>Scores</h2>
            <table class="table">
                <thead>
                    <tr><th>Dimension</th><th>Outcome</th><th>Points</th></tr>
                </thead>
                <tbody>
                    {{range .Dimensions}}
                    <tr>
                        <td>{{.Dimension}}</td>
                        <td>{{.Outcome}}</td>
                        <td class="{{scoreClass .Delta}}">{{.Delta}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>

            <h2>Tools</h2>
            <table class="table">
                <thead>
                    <tr><th>Tool</th><th>Status</th><th>Reason</th></tr>
                </thead>
                <tbody>
                    {{range .Sections}}
                    <tr>
                        <td>{{.Tool}}</td>
                        <td class="status-{{.Status}}">{{.Status}}</td>
                        <td>{{.Reason}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </div>

        {{if .Functions}}
        <div class="panel">
            <h2>Most complex functions</h2>
            <table class="table">
                <thead>
                    <tr><th>Function</th><th>File</th><th>Lines</th><th>Complexity</th><th>Rank</th></tr>
                </thead>
                <tbody>
                    {{range .Functions}}
                    <tr>
                        <td>{{.FullName}}</td>
                        <td>{{.File}}</td>
                        <td>{{.StartLine}}-{{.EndLine}}</td>
                        <td>{{.Complexity}}</td>
                        <td class="{{riskClass .Rank}}">{{.Rank}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </div>
        {{end}}

        {{if .Bugs}}
        <div class="panel">
            <h2>Potential bugs</h2>
            <table class="table">
                <thead>
                    <tr><th>File</th><th>Line</th><th>Function</th><th>Code</th><th>Message</th></tr>
                </thead>
                <tbody>
                    {{range .Bugs}}
                    <tr>
                        <td>{{.File}}</td>
                        <td>{{.Line}}</td>
                        <td>{{.Function}}</td>
                        <td>{{.Code}}</td>
                        <td>{{.Message}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </div>
        {{end}}

        {{with .Tests}}{{if .FailedTests}}
        <div class="panel">
            <h2>Failed tests</h2>
            <ul>
                {{range .FailedTests}}<li>{{.}}</li>{{end}}
            </ul>
        </div>
        {{end}}{{end}}
    </div>
</body>
</html>`
