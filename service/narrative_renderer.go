package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/ludo-technologies/pygrade/domain"
)

var narrativeTemplate = template.Must(template.New("narrative").Funcs(template.FuncMap{
	"scoreClass": ScoreClass,
}).Parse(
	`<h3>{{.Title}}</h3><p>{{.Intro}}</p>` +
		`{{range .Sections}}<h5>{{.Heading}}</h5><p>{{.Lead}}</p><p>{{.Paragraph}}</p>` +
		`{{if .Details}}<ul>{{range .Details}}<li>{{.}}</li>{{end}}</ul>{{end}}{{end}}` +
		`{{if .IncludeGrade}}{{$class := scoreClass .Grade.Score}}` +
		`<h3>Your grade is: <span class="{{$class}}">{{.Grade.Label}}</span></h3>` +
		`<p>{{.GradeNote}}</p><p>Your code got a score of <span class="{{$class}}">{{.Grade.Score}}</span>.</p>` +
		`<p>Here are the limits used in grading:</p>` +
		`<ul>{{range .Thresholds}}<li>{{.}}</li>{{end}}</ul>{{end}}`,
))

// ScoreClass returns the CSS class used to color a score
func ScoreClass(score int) string {
	switch {
	case score < domain.GradeGMinScore:
		return "text-danger"
	case score < domain.GradeVGMinScore:
		return "text-secondary"
	default:
		return "text-success"
	}
}

// RenderNarrativeHTML renders the narrative as an HTML fragment. Every text
// value is escaped.
func RenderNarrativeHTML(n *domain.Narrative) (string, error) {
	if n == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := narrativeTemplate.Execute(&buf, n); err != nil {
		return "", fmt.Errorf("failed to render narrative: %w", err)
	}
	return buf.String(), nil
}

// RenderNarrativeText renders the narrative as plain text
func RenderNarrativeText(n *domain.Narrative) string {
	if n == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", n.Title)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", len(n.Title)))
	fmt.Fprintf(&b, "%s\n", n.Intro)

	for _, s := range n.Sections {
		fmt.Fprintf(&b, "\n%s\n", s.Heading)
		fmt.Fprintf(&b, "%s\n", strings.Repeat("-", len(s.Heading)))
		fmt.Fprintf(&b, "%s\n%s\n", s.Lead, s.Paragraph)
		for _, d := range s.Details {
			fmt.Fprintf(&b, "  - %s\n", d)
		}
	}

	if n.IncludeGrade {
		fmt.Fprintf(&b, "\nYour grade is: %s\n", n.Grade.Label)
		fmt.Fprintf(&b, "%s\n", n.GradeNote)
		fmt.Fprintf(&b, "Your code got a score of %d.\n", n.Grade.Score)
		fmt.Fprintf(&b, "Here are the limits used in grading:\n")
		for _, t := range n.Thresholds {
			fmt.Fprintf(&b, "  - %s\n", t)
		}
	}
	return b.String()
}
