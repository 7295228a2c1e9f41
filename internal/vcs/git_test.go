package vcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/repoguard/repoguard/pkg/preprocess"
)

func pythonLang(t *testing.T) preprocess.Language {
	t.Helper()
	lang, ok := preprocess.Lookup("python")
	if !ok {
		t.Fatal("python language missing")
	}
	return lang
}

func initGitRepo(t *testing.T, path string) *git.Repository {
	t.Helper()
	repo, err := git.PlainInit(path, false)
	if err != nil {
		t.Fatalf("Failed to init git repo: %v", err)
	}
	return repo
}

func writeFileAndCommit(t *testing.T, repo *git.Repository, repoPath, filename, content, message string) {
	t.Helper()

	filePath := filepath.Join(repoPath, filename)
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file %s: %v", filename, err)
	}

	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Failed to get worktree: %v", err)
	}
	if _, err := w.Add(filename); err != nil {
		t.Fatalf("Failed to add file %s: %v", filename, err)
	}
	_, err = w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test Author",
			Email: "author@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
}

func TestExtractFiles(t *testing.T) {
	dir := t.TempDir()
	m := NewMaterializer(pythonLang(t))

	write := func(rel, content string) {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("main.py", "x = 1\n")
	write("pkg/util.py", "y = 2\n")
	write("README.md", "docs\n")
	write(".git/config", "[core]\n")
	write(".venv/lib.py", "hidden = True\n")

	files, err := m.extractFiles(dir)
	if err != nil {
		t.Fatalf("extractFiles: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("got %d files, want 2: %v", len(files), files)
	}
	if files["main.py"] != "x = 1\n" {
		t.Errorf("main.py content = %q", files["main.py"])
	}
	if _, ok := files["pkg/util.py"]; !ok {
		t.Error("nested source file missing; paths must be slash-separated and repo-relative")
	}
	if _, ok := files[".venv/lib.py"]; ok {
		t.Error("hidden directories must be skipped")
	}
}

func TestCommitWindow(t *testing.T) {
	dir := t.TempDir()
	repo := initGitRepo(t, dir)

	writeFileAndCommit(t, repo, dir, "main.py", "x = 1\n", "first commit")
	writeFileAndCommit(t, repo, dir, "main.py", "x = 2\ny = 3\n", "second commit")

	m := NewMaterializer(pythonLang(t), WithMaxCommits(10))
	records, err := m.commitWindow(repo, "repo-1")
	if err != nil {
		t.Fatalf("commitWindow: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Log walks newest first.
	newest := records[0]
	if newest.RepoID != "repo-1" {
		t.Errorf("RepoID = %s, want repo-1", newest.RepoID)
	}
	if newest.Message != "second commit" {
		t.Errorf("Message = %q, want second commit", newest.Message)
	}
	if len(newest.Hash) != 8 {
		t.Errorf("Hash = %q, want 8-char short hash", newest.Hash)
	}
	if len(newest.AddedLines) == 0 {
		t.Error("second commit added lines; AddedLines should be populated")
	}
	if len(newest.RemovedLines) == 0 {
		t.Error("second commit replaced a line; RemovedLines should be populated")
	}

	root := records[1]
	if root.Message != "first commit" {
		t.Errorf("Message = %q, want first commit", root.Message)
	}
	if len(root.AddedLines) != 1 || root.AddedLines[0] != "x = 1" {
		t.Errorf("root AddedLines = %v, want [x = 1]", root.AddedLines)
	}
}

func TestCommitWindowCap(t *testing.T) {
	dir := t.TempDir()
	repo := initGitRepo(t, dir)

	for i := 0; i < 5; i++ {
		writeFileAndCommit(t, repo, dir, "main.py",
			"x = "+string(rune('0'+i))+"\n", "commit")
	}

	m := NewMaterializer(pythonLang(t), WithMaxCommits(3))
	records, err := m.commitWindow(repo, "repo-1")
	if err != nil {
		t.Fatalf("commitWindow: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want cap of 3", len(records))
	}
}

func TestCommitWindowDisabled(t *testing.T) {
	dir := t.TempDir()
	repo := initGitRepo(t, dir)
	writeFileAndCommit(t, repo, dir, "main.py", "x = 1\n", "only commit")

	m := &Materializer{lang: pythonLang(t), maxCommits: 0}
	records, err := m.commitWindow(repo, "repo-1")
	if err != nil {
		t.Fatalf("commitWindow: %v", err)
	}
	if records != nil {
		t.Errorf("records = %v, want nil with a zero window", records)
	}
}

func TestSplitLines(t *testing.T) {
	got := splitLines("a\n\n  \nb\n")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("splitLines = %v, want [a b]", got)
	}
	if splitLines("") != nil && len(splitLines("")) != 0 {
		t.Errorf("splitLines(\"\") should be empty")
	}
}
