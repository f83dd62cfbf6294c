package app

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/pygrade/domain"
)

// FileHelper provides file operation utilities
type FileHelper struct{}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// CollectPythonFiles returns the root-relative, slash-separated paths of the
// Python sources under root that filter keeps. Filtered directories are not
// descended into.
func (h *FileHelper) CollectPythonFiles(root string, filter domain.PathFilter) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if filter != nil && !filter.Keep(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if h.IsPythonFile(path) && (filter == nil || filter.Keep(rel)) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// IsPythonFile checks if a file is a Python source based on extension
func (h *FileHelper) IsPythonFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".py" || ext == ".pyi"
}

// DirExists checks if a directory exists
func (h *FileHelper) DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
