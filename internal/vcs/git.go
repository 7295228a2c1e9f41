// Package vcs materializes repository contents for analysis: it clones
// a repository, extracts the source files for the target language, and
// snapshots a bounded window of recent commits with their added and
// removed lines.
package vcs

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/repoguard/repoguard/pkg/models"
	"github.com/repoguard/repoguard/pkg/preprocess"
)

// FileTree maps repository-relative paths to file contents.
type FileTree map[string]string

// Snapshot is the materialized view of one repository for one job.
type Snapshot struct {
	RepoID  string
	Files   FileTree
	Commits []models.CommitRecord
}

// Materializer clones repositories and extracts their contents.
type Materializer struct {
	lang       preprocess.Language
	maxCommits int
	tempDir    string
}

// Option is a functional option for configuring Materializer.
type Option func(*Materializer)

// WithMaxCommits caps the most-recent-commit window per repository.
func WithMaxCommits(max int) Option {
	return func(m *Materializer) {
		if max >= 0 {
			m.maxCommits = max
		}
	}
}

// WithTempDir sets the parent directory for clones.
func WithTempDir(dir string) Option {
	return func(m *Materializer) {
		m.tempDir = dir
	}
}

// NewMaterializer creates a Materializer for the given target language.
// The language variant is fixed per job; it is not re-dispatched per file.
func NewMaterializer(lang preprocess.Language, opts ...Option) *Materializer {
	m := &Materializer{
		lang:       lang,
		maxCommits: 50,
		tempDir:    os.TempDir(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Materialize clones url at branch and returns the repository snapshot.
// The returned cleanup removes the clone directory and is safe to call
// even on error. When the requested branch does not exist the default
// branch is tried, then master.
func (m *Materializer) Materialize(ctx context.Context, url, branch string) (*Snapshot, func(), error) {
	dir, err := os.MkdirTemp(m.tempDir, "repoguard-clone-")
	if err != nil {
		return nil, func() {}, err
	}
	cleanup := func() { os.RemoveAll(dir) }

	repo, err := m.clone(ctx, url, branch, dir)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("clone %s: %w", url, err)
	}

	files, err := m.extractFiles(dir)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("extract files from %s: %w", url, err)
	}

	commits, err := m.commitWindow(repo, url)
	if err != nil {
		// Missing or shallow history is not fatal; file-level analysis
		// proceeds with an empty commit window.
		slog.Warn("commit extraction failed", "repo", url, "err", err)
		commits = nil
	}

	slog.Info("materialized repository",
		"repo", url, "files", len(files), "commits", len(commits))

	return &Snapshot{RepoID: url, Files: files, Commits: commits}, cleanup, nil
}

func (m *Materializer) clone(ctx context.Context, url, branch, dir string) (*git.Repository, error) {
	depth := m.maxCommits
	if depth <= 0 {
		depth = 1
	}

	opts := &git.CloneOptions{
		URL:          url,
		Depth:        depth,
		SingleBranch: true,
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, opts)
	if err == nil {
		return repo, nil
	}
	if branch == "" {
		return nil, err
	}

	// Requested branch may not exist upstream; fall back to the
	// repository default, then master.
	for _, fallback := range []plumbing.ReferenceName{"", plumbing.Master} {
		os.RemoveAll(dir)
		opts.ReferenceName = fallback
		repo, retryErr := git.PlainCloneContext(ctx, dir, false, opts)
		if retryErr == nil {
			slog.Warn("branch not found, used fallback", "repo", url, "branch", branch)
			return repo, nil
		}
	}
	return nil, err
}

// extractFiles walks the clone and reads every file carrying one of the
// language's source extensions. Hidden directories are skipped.
func (m *Materializer) extractFiles(root string) (FileTree, error) {
	files := make(FileTree)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !m.lang.HasExtension(name) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("failed to read file", "path", path, "err", err)
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// commitWindow snapshots the most recent commits, bounded by the
// configured cap, with the added and removed lines of each.
func (m *Materializer) commitWindow(repo *git.Repository, repoID string) ([]models.CommitRecord, error) {
	if m.maxCommits == 0 {
		return nil, nil
	}
	head, err := repo.Head()
	if err != nil {
		return nil, err
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var records []models.CommitRecord
	err = iter.ForEach(func(c *object.Commit) error {
		if len(records) >= m.maxCommits {
			return storer.ErrStop
		}
		added, removed := commitDiffLines(c)
		records = append(records, models.CommitRecord{
			RepoID:       repoID,
			Hash:         c.Hash.String()[:8],
			Message:      strings.TrimSpace(c.Message),
			AddedLines:   added,
			RemovedLines: removed,
			Timestamp:    c.Author.When,
		})
		return nil
	})
	if err != nil {
		return records, err
	}
	return records, nil
}

// commitDiffLines collects the added and removed lines of a commit
// against its first parent. A root commit contributes whole-file
// additions. Unchanged context lines are excluded.
func commitDiffLines(c *object.Commit) (added, removed []string) {
	var patch *object.Patch
	var err error

	if c.NumParents() > 0 {
		parent, perr := c.Parent(0)
		if perr != nil {
			return nil, nil
		}
		patch, err = parent.Patch(c)
	} else {
		patch, err = rootPatch(c)
	}
	if err != nil || patch == nil {
		return nil, nil
	}

	for _, fp := range patch.FilePatches() {
		for _, chunk := range fp.Chunks() {
			switch chunk.Type() {
			case diff.Add:
				added = append(added, splitLines(chunk.Content())...)
			case diff.Delete:
				removed = append(removed, splitLines(chunk.Content())...)
			}
		}
	}
	return added, removed
}

// rootPatch diffs a parentless commit against the empty tree.
func rootPatch(c *object.Commit) (*object.Patch, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	changes, err := object.DiffTree(nil, tree)
	if err != nil {
		return nil, err
	}
	return changes.Patch()
}

func splitLines(content string) []string {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	out := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
