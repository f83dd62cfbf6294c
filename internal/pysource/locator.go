// Package pysource locates functions in Python source with tree-sitter.
package pysource

import (
	"context"
	"fmt"
	"os"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Span is the line range of one function definition (1-based, inclusive)
type Span struct {
	Name      string // qualified, e.g. "Parser.parse" or "outer.inner"
	StartLine int
	EndLine   int
}

// Contains reports whether line falls inside the span
func (s Span) Contains(line int) bool {
	return line >= s.StartLine && line <= s.EndLine
}

// FunctionSpans parses Python source and returns the span of every function,
// in source order
func FunctionSpans(ctx context.Context, source []byte) ([]Span, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse python source: %v", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("no root node in parse tree")
	}

	var spans []Span
	collectSpans(root, source, "", &spans)
	return spans, nil
}

func collectSpans(node *sitter.Node, source []byte, prefix string, spans *[]Span) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		childPrefix := prefix
		switch child.Type() {
		case "function_definition", "class_definition":
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				break
			}
			name := nameNode.Content(source)
			if prefix != "" {
				name = prefix + "." + name
			}
			if child.Type() == "function_definition" {
				*spans = append(*spans, Span{
					Name:      name,
					StartLine: int(child.StartPoint().Row) + 1,
					EndLine:   endLine(child),
				})
			}
			childPrefix = name
		}
		collectSpans(child, source, childPrefix, spans)
	}
}

// endLine returns the last 1-based line of a node; a range ending at column 0
// stops on the previous line
func endLine(node *sitter.Node) int {
	end := node.EndPoint()
	if end.Column == 0 && end.Row > node.StartPoint().Row {
		return int(end.Row)
	}
	return int(end.Row) + 1
}

// Innermost returns the smallest span containing line
func Innermost(spans []Span, line int) (Span, bool) {
	var best Span
	found := false
	for _, s := range spans {
		if !s.Contains(line) {
			continue
		}
		if !found || s.EndLine-s.StartLine < best.EndLine-best.StartLine {
			best, found = s, true
		}
	}
	return best, found
}

// Locator resolves enclosing function names and caches parsed files.
// It is safe for concurrent use.
type Locator struct {
	mu    sync.Mutex
	cache map[string][]Span
}

// NewLocator creates an empty Locator
func NewLocator() *Locator {
	return &Locator{cache: make(map[string][]Span)}
}

// Locate returns the qualified name of the innermost function containing line.
// Unreadable or unparseable files yield no match.
func (l *Locator) Locate(path string, line int) (string, bool) {
	spans, ok := l.spans(path)
	if !ok {
		return "", false
	}
	s, found := Innermost(spans, line)
	return s.Name, found
}

func (l *Locator) spans(path string) ([]Span, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if spans, ok := l.cache[path]; ok {
		return spans, spans != nil
	}
	source, err := os.ReadFile(path)
	if err != nil {
		l.cache[path] = nil
		return nil, false
	}
	spans, err := FunctionSpans(context.Background(), source)
	if err != nil {
		l.cache[path] = nil
		return nil, false
	}
	if spans == nil {
		spans = []Span{}
	}
	l.cache[path] = spans
	return spans, true
}
