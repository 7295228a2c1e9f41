package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/repoguard/repoguard/internal/embedcache"
	"github.com/repoguard/repoguard/internal/fileproc"
	"github.com/repoguard/repoguard/internal/job"
	"github.com/repoguard/repoguard/internal/vcs"
	"github.com/repoguard/repoguard/pkg/analyzer/commits"
	"github.com/repoguard/repoguard/pkg/models"
	"github.com/repoguard/repoguard/pkg/preprocess"
	"github.com/repoguard/repoguard/pkg/similarity"
)

// Stage progress floors. Progress is raised to the floor when a stage
// begins and advances proportionally within it.
const (
	progressCloning       = 0
	progressPreprocessing = 20
	progressEmbedding     = 40
	progressScoring       = 75
	progressReasoning     = 85
	progressReport        = 95
)

// repoData carries one repository's comparable files and prepared
// commit docs between stages.
type repoData struct {
	repoID string
	files  []models.SourceFile
	docs   []commits.Doc
}

// Run drives a submitted job through every stage and returns the final
// snapshot. All failure handling happens at stage boundaries: the job
// either completes with a full report or fails with no report.
func (s *Service) Run(ctx context.Context, j *job.Job, req Request) models.JobSnapshot {
	req = s.resolve(req)

	normalizer, err := preprocess.New(req.Language,
		preprocess.WithAggressive(req.Aggressive || s.cfg.Preprocess.Aggressive),
		preprocess.WithMaxChars(s.cfg.Preprocess.MaxChars),
		preprocess.WithMinTokens(s.cfg.Preprocess.MinTokens),
	)
	if err != nil {
		j.Fail(err)
		return j.Snapshot()
	}

	combiner := similarity.NewCombiner(s.cfg.Weights, s.cfg.Bands)
	commitAnalyzer := commits.New(s.cfg.Commits, normalizer, combiner, req.Threshold)

	materializer := s.materializer
	if materializer == nil {
		materializer = vcs.NewMaterializer(normalizer.Language(),
			vcs.WithMaxCommits(s.cfg.Commits.MaxPerRepo))
	}

	// Stage: cloning.
	if !s.advance(j, models.StatusCloning, progressCloning) {
		return j.Snapshot()
	}
	snapshots, err := s.materializeAll(ctx, j, materializer, req)
	if err != nil {
		j.Fail(err)
		return j.Snapshot()
	}

	// Stage: preprocessing.
	if !s.advance(j, models.StatusPreprocessing, progressPreprocessing) {
		return j.Snapshot()
	}
	repos := s.preprocessAll(j, snapshots, normalizer, commitAnalyzer, req.Repos)

	// Stage: embedding.
	if !s.advance(j, models.StatusEmbedding, progressEmbedding) {
		return j.Snapshot()
	}
	if s.embed == nil {
		j.Fail(similarity.ErrNoEmbedder)
		return j.Snapshot()
	}
	cache := embedcache.New(similarity.NewEmbedder(s.embed, 0))
	if err := s.embedAll(ctx, j, cache, repos); err != nil {
		j.Fail(fmt.Errorf("embedding failed: %w", err))
		return j.Snapshot()
	}

	// Stage: scoring.
	if !s.advance(j, models.StatusScoring, progressScoring) {
		return j.Snapshot()
	}
	comparisons, flags, pairsCompared := s.scoreAll(j, repos, cache, combiner, commitAnalyzer, req.Threshold)

	// Stage: reasoning.
	if !s.advance(j, models.StatusReasoning, progressReasoning) {
		return j.Snapshot()
	}
	s.explainFlagged(ctx, comparisons)

	// Report assembly.
	report := s.buildReport(j.ID(), req, comparisons, flags, pairsCompared)
	s.notify(j, progressReport, "report")
	if err := j.Complete(report); err != nil {
		j.Fail(err)
		return j.Snapshot()
	}
	s.notify(j, 100, "completed")
	return j.Snapshot()
}

// advance checks for cancellation at the stage boundary, then
// transitions. Returns false when the job can no longer proceed.
func (s *Service) advance(j *job.Job, next models.JobStatus, floor int) bool {
	if j.Canceled() {
		j.Fail(job.ErrCanceled)
		return false
	}
	if err := j.Transition(next, floor); err != nil {
		j.Fail(err)
		return false
	}
	s.notify(j, floor, string(next))
	return true
}

func (s *Service) notify(j *job.Job, floor int, stage string) {
	j.SetProgress(floor)
	if s.onProgress != nil {
		s.onProgress(j.Snapshot().Progress, stage)
	}
}

// stageTicker returns a progress callback that advances the job from
// floor toward floor+span as units complete.
func (s *Service) stageTicker(j *job.Job, floor, span, total int) fileproc.ProgressFunc {
	if total <= 0 {
		return nil
	}
	var done atomic.Int64
	return func() {
		n := int(done.Add(1))
		s.notify(j, floor+span*n/total, "")
	}
}

// materializeAll clones every repository. A single failed repository
// fails the whole job, with the originating repository identified.
func (s *Service) materializeAll(ctx context.Context, j *job.Job, m Materializer, req Request) ([]*vcs.Snapshot, error) {
	tick := s.stageTicker(j, progressCloning, progressPreprocessing-progressCloning, len(req.Repos))

	snapshots, errs := fileproc.MapWithContext(ctx, req.Repos,
		func(url string) string { return url },
		func(ctx context.Context, url string) (*vcs.Snapshot, error) {
			snap, cleanup, err := m.Materialize(ctx, url, req.Branch)
			defer cleanup()
			if err != nil {
				return nil, err
			}
			return snap, nil
		}, tick)
	if errs != nil {
		first := errs.Errors[0]
		return nil, fmt.Errorf("repository %s failed to materialize: %w", first.Key, first.Err)
	}
	return snapshots, nil
}

// preprocessAll normalizes every file and prepares commit docs. Pure
// per-file work, parallel across files; undersized files are excluded
// as noise, never surfaced as errors.
func (s *Service) preprocessAll(j *job.Job, snapshots []*vcs.Snapshot, normalizer *preprocess.Normalizer, commitAnalyzer *commits.Analyzer, order []string) []repoData {
	byID := make(map[string]*vcs.Snapshot, len(snapshots))
	totalFiles := 0
	for _, snap := range snapshots {
		byID[snap.RepoID] = snap
		totalFiles += len(snap.Files)
	}
	tick := s.stageTicker(j, progressPreprocessing, progressEmbedding-progressPreprocessing, totalFiles)

	// Preserve submission order so matrix indices are stable.
	repos := make([]repoData, 0, len(order))
	for _, repoID := range order {
		snap := byID[repoID]
		if snap == nil {
			continue
		}

		type entry struct {
			path    string
			content string
		}
		entries := make([]entry, 0, len(snap.Files))
		for path, content := range snap.Files {
			entries = append(entries, entry{path: path, content: content})
		}

		files := fileproc.MapWithProgress(entries, func(e entry) (models.SourceFile, error) {
			normalized := normalizer.Normalize(e.content)
			if !normalizer.Comparable(normalized) {
				return models.SourceFile{}, errSkipped
			}
			return models.SourceFile{
				RepoID:      repoID,
				Path:        e.path,
				RawText:     e.content,
				Normalized:  normalized,
				Fingerprint: preprocess.Fingerprint(normalized),
			}, nil
		}, tick)

		docs := commitAnalyzer.BuildDocs(snap.Commits)
		repos = append(repos, repoData{
			repoID: repoID,
			files:  files,
			docs:   docs,
		})
		slog.Info("preprocessed repository",
			"repo", repoID, "comparable_files", len(files),
			"excluded", len(snap.Files)-len(files), "commits", len(docs))
	}
	return repos
}

// embedAll batches every distinct normalized text (files, commit
// diffs, commit messages) into the cache, then freezes it.
func (s *Service) embedAll(ctx context.Context, j *job.Job, cache *embedcache.Cache, repos []repoData) error {
	var texts []string
	for _, r := range repos {
		for _, f := range r.files {
			texts = append(texts, f.Normalized)
		}
		texts = append(texts, commits.Texts(r.docs)...)
	}
	tick := s.stageTicker(j, progressEmbedding, progressScoring-progressEmbedding, len(texts))
	return cache.Populate(ctx, texts, tick)
}

var errSkipped = fmt.Errorf("excluded from comparison")
