package parser

import (
	"path"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// RelativePath normalizes a path reported by a tool into a slash-separated
// path relative to root. Relative input is taken as relative to root already.
// Paths outside root are returned cleaned but otherwise unchanged.
func RelativePath(root, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")

	if isAbs(p) && root != "" {
		cleanRoot := strings.ReplaceAll(filepath.Clean(root), "\\", "/")
		if rel, ok := trimRoot(path.Clean(p), cleanRoot); ok {
			return rel
		}
		return path.Clean(p)
	}

	rel := path.Clean(p)
	return strings.TrimPrefix(rel, "./")
}

func isAbs(p string) bool {
	if strings.HasPrefix(p, "/") {
		return true
	}
	// drive-letter paths such as C:/src/a.py
	return len(p) > 2 && p[1] == ':' && p[2] == '/'
}

func trimRoot(p, root string) (string, bool) {
	if p == root {
		return ".", true
	}
	prefix := strings.TrimSuffix(root, "/") + "/"
	if strings.HasPrefix(p, prefix) {
		return strings.TrimPrefix(p, prefix), true
	}
	return "", false
}

// ModuleName returns the base file name of a slash-separated path
func ModuleName(p string) string {
	return path.Base(strings.ReplaceAll(p, "\\", "/"))
}

// capitalize upper-cases the first rune and leaves the rest untouched
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// splitLines splits tool output into lines, dropping carriage returns
func splitLines(output string) []string {
	output = strings.ReplaceAll(output, "\r\n", "\n")
	return strings.Split(output, "\n")
}
