// Package gitref resolves the HEAD commit of a checked-out tree.
package gitref

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
)

// ErrNotRepository is returned when no .git entry exists at the root
var ErrNotRepository = errors.New("not a git checkout")

// HeadCommit returns the commit hash HEAD points at in the checkout at root.
// Only root itself is inspected; parent directories are not searched.
// Linked worktrees, submodule gitdir files, packed refs and a detached HEAD
// are all resolved without object files.
func HeadCommit(root string) (string, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{
		DetectDotGit:          false,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", ErrNotRepository
		}
		return "", fmt.Errorf("open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}
