package gitref

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const (
	commitA = "1f0e3dad99908345f7439f8ffabdffc4e2b7a8c1"
	commitB = "9a4c1b2f3e5d6a7b8c9d0e1f2a3b4c5d6e7f8a9b"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestHeadCommit_LooseRef(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/main\n")
	writeFile(t, filepath.Join(root, ".git", "refs", "heads", "main"), commitA+"\n")

	got, err := HeadCommit(root)
	if err != nil {
		t.Fatalf("HeadCommit failed: %v", err)
	}
	if got != commitA {
		t.Errorf("Expected %s, got %s", commitA, got)
	}
}

func TestHeadCommit_PackedRef(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/release\n")
	writeFile(t, filepath.Join(root, ".git", "packed-refs"),
		"# pack-refs with: peeled fully-peeled sorted\n"+
			commitA+" refs/heads/main\n"+
			commitB+" refs/heads/release\n"+
			"^"+commitA+"\n")

	got, err := HeadCommit(root)
	if err != nil {
		t.Fatalf("HeadCommit failed: %v", err)
	}
	if got != commitB {
		t.Errorf("Expected %s, got %s", commitB, got)
	}
}

func TestHeadCommit_DetachedHead(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), commitB+"\n")

	got, err := HeadCommit(root)
	if err != nil {
		t.Fatalf("HeadCommit failed: %v", err)
	}
	if got != commitB {
		t.Errorf("Expected %s, got %s", commitB, got)
	}
}

func TestHeadCommit_GitdirFile(t *testing.T) {
	root := t.TempDir()
	modDir := filepath.Join(t.TempDir(), "modules", "sub")
	writeFile(t, filepath.Join(modDir, "HEAD"), "ref: refs/heads/main\n")
	writeFile(t, filepath.Join(modDir, "refs", "heads", "main"), commitA)
	writeFile(t, filepath.Join(root, ".git"), "gitdir: "+modDir+"\n")

	got, err := HeadCommit(root)
	if err != nil {
		t.Fatalf("HeadCommit failed: %v", err)
	}
	if got != commitA {
		t.Errorf("Expected %s, got %s", commitA, got)
	}
}

func TestHeadCommit_LinkedWorktree(t *testing.T) {
	common := filepath.Join(t.TempDir(), "main", ".git")
	wtGitDir := filepath.Join(common, "worktrees", "feature")
	writeFile(t, filepath.Join(common, "HEAD"), "ref: refs/heads/main\n")
	writeFile(t, filepath.Join(common, "refs", "heads", "main"), commitA+"\n")
	writeFile(t, filepath.Join(common, "refs", "heads", "feature"), commitB+"\n")
	writeFile(t, filepath.Join(wtGitDir, "HEAD"), "ref: refs/heads/feature\n")
	writeFile(t, filepath.Join(wtGitDir, "commondir"), "../..\n")

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git"), "gitdir: "+wtGitDir+"\n")

	got, err := HeadCommit(root)
	if err != nil {
		t.Fatalf("HeadCommit failed: %v", err)
	}
	if got != commitB {
		t.Errorf("Expected the worktree branch %s, got %s", commitB, got)
	}
}

func TestHeadCommit_NotRepository(t *testing.T) {
	_, err := HeadCommit(t.TempDir())
	if !errors.Is(err, ErrNotRepository) {
		t.Errorf("Expected ErrNotRepository, got %v", err)
	}
}

func TestHeadCommit_UnresolvedRef(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/gone\n")

	if _, err := HeadCommit(root); err == nil {
		t.Error("Expected error for unresolved ref")
	}
}
