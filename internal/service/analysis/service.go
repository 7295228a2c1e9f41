// Package analysis orchestrates the similarity engine: it validates
// submissions, drives jobs through their stages, and assembles the
// final report. Stages run sequentially because each depends on the
// previous stage's full output; within a stage, independent units run
// in parallel.
package analysis

import (
	"context"
	"fmt"

	"github.com/repoguard/repoguard/internal/job"
	"github.com/repoguard/repoguard/internal/vcs"
	"github.com/repoguard/repoguard/pkg/config"
	"github.com/repoguard/repoguard/pkg/models"
	"github.com/repoguard/repoguard/pkg/preprocess"
	"github.com/repoguard/repoguard/pkg/similarity"
)

// Materializer is the cloning collaborator: it turns a repository URL
// into a file tree and commit window.
type Materializer interface {
	Materialize(ctx context.Context, url, branch string) (*vcs.Snapshot, func(), error)
}

// Explainer generates a prose explanation for a flagged repository
// pair. The capability is optional; when absent the report carries an
// empty explanation instead.
type Explainer interface {
	Explain(ctx context.Context, pair models.RepoPairResult) (string, error)
}

// ProgressFunc receives display progress updates (0-100 plus the stage
// name). Distinct from the job's own progress field, which pollers read.
type ProgressFunc func(percent int, stage string)

// Service runs analysis jobs.
type Service struct {
	cfg          *config.Config
	registry     *job.Registry
	materializer Materializer
	embed        similarity.EmbedFunc
	explainer    Explainer
	onProgress   ProgressFunc
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.cfg = cfg
	}
}

// WithRegistry sets the job registry shared with status pollers.
func WithRegistry(r *job.Registry) Option {
	return func(s *Service) {
		s.registry = r
	}
}

// WithMaterializer sets the cloning collaborator.
func WithMaterializer(m Materializer) Option {
	return func(s *Service) {
		s.materializer = m
	}
}

// WithEmbedFunc sets the embedding function.
func WithEmbedFunc(embed similarity.EmbedFunc) Option {
	return func(s *Service) {
		s.embed = embed
	}
}

// WithExplainer sets the optional explanation generator.
func WithExplainer(e Explainer) Option {
	return func(s *Service) {
		s.explainer = e
	}
}

// WithProgress sets the display progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Service) {
		s.onProgress = fn
	}
}

// New creates an analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:      config.LoadOrDefault(),
		registry: job.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry exposes the job registry for status polling.
func (s *Service) Registry() *job.Registry {
	return s.registry
}

// Request describes one analysis submission. Zero values fall back to
// the service configuration; in particular a Threshold of 0 means "use
// the configured default", so a literal zero cutoff must be set through
// the analysis.threshold config key.
type Request struct {
	Repos      []string
	Branch     string
	Language   string
	Threshold  float64
	Aggressive bool
}

func (s *Service) resolve(req Request) Request {
	if req.Language == "" {
		req.Language = s.cfg.Analysis.Language
	}
	if req.Threshold == 0 {
		req.Threshold = s.cfg.Analysis.Threshold
	}
	if req.Branch == "" {
		req.Branch = s.cfg.Analysis.Branch
	}
	return req
}

// Submit validates a request and registers a queued job. Validation
// failures surface immediately, before any stage runs, with no job
// created.
func (s *Service) Submit(req Request) (*job.Job, error) {
	req = s.resolve(req)

	if len(req.Repos) < 2 {
		return nil, fmt.Errorf("%w (got %d)", config.ErrTooFewRepos, len(req.Repos))
	}
	if len(req.Repos) > s.cfg.Analysis.MaxRepos {
		return nil, fmt.Errorf("%w: %d > %d", config.ErrTooManyRepos, len(req.Repos), s.cfg.Analysis.MaxRepos)
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		return nil, fmt.Errorf("%w (got %g)", config.ErrThresholdRange, req.Threshold)
	}
	if _, ok := preprocess.Lookup(req.Language); !ok {
		return nil, fmt.Errorf("%w: %q", config.ErrUnsupportedLanguage, req.Language)
	}

	return s.registry.Create(req.Repos, req.Threshold, req.Language), nil
}
