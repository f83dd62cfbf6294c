package service

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// GitignorePathFilter drops paths matched by configured exclude patterns or
// by the root's .gitignore
type GitignorePathFilter struct {
	excludes  *ignore.GitIgnore
	gitignore *ignore.GitIgnore
}

// NewPathFilter compiles exclude patterns and, when respectGitignore is set,
// the .gitignore at root. A missing .gitignore is not an error.
func NewPathFilter(root string, excludePatterns []string, respectGitignore bool) (*GitignorePathFilter, error) {
	f := &GitignorePathFilter{}
	if len(excludePatterns) > 0 {
		f.excludes = ignore.CompileIgnoreLines(excludePatterns...)
	}
	if respectGitignore {
		path := filepath.Join(root, ".gitignore")
		if _, err := os.Stat(path); err == nil {
			gi, err := ignore.CompileIgnoreFile(path)
			if err != nil {
				return nil, err
			}
			f.gitignore = gi
		}
	}
	return f, nil
}

// Keep reports whether a root-relative path takes part in the report
func (f *GitignorePathFilter) Keep(relPath string) bool {
	if f == nil || relPath == "" {
		return true
	}
	p := strings.TrimPrefix(filepath.ToSlash(relPath), "./")
	if f.excludes != nil && f.excludes.MatchesPath(p) {
		return false
	}
	if f.gitignore != nil && f.gitignore.MatchesPath(p) {
		return false
	}
	return true
}

// keepAll is the filter used when none is configured
type keepAll struct{}

func (keepAll) Keep(string) bool { return true }
