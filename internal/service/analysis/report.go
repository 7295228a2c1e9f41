package analysis

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/repoguard/repoguard/pkg/models"
	"github.com/repoguard/repoguard/pkg/similarity"
)

// explainFlagged fills in explanations for flagged pairs. Absence of
// the explainer, or a failed generation, degrades to an empty
// explanation; it never fails the job.
func (s *Service) explainFlagged(ctx context.Context, comparisons []models.RepoPairResult) {
	if s.explainer == nil {
		return
	}
	for i := range comparisons {
		if !comparisons[i].Flagged {
			continue
		}
		text, err := s.explainer.Explain(ctx, comparisons[i])
		if err != nil {
			slog.Warn("explanation generation failed",
				"repo_a", comparisons[i].RepoA, "repo_b", comparisons[i].RepoB, "err", err)
			continue
		}
		comparisons[i].Explanation = text
	}
}

// buildReport assembles the engine's sole output contract.
func (s *Service) buildReport(jobID string, req Request, comparisons []models.RepoPairResult, flags []models.CommitFlag, pairsCompared int) *models.Report {
	suspicious := make([]models.RepoPairResult, 0)
	for _, c := range comparisons {
		if c.Flagged {
			suspicious = append(suspicious, c)
		}
	}
	sort.Slice(suspicious, func(i, j int) bool {
		return suspicious[i].RepoSimilarity > suspicious[j].RepoSimilarity
	})

	return &models.Report{
		JobID:     jobID,
		Timestamp: time.Now(),
		Parameters: models.Parameters{
			Repositories: req.Repos,
			Language:     req.Language,
			Branch:       req.Branch,
			Threshold:    req.Threshold,
		},
		Summary: models.Summary{
			TotalRepos:             len(req.Repos),
			SuspiciousPairs:        len(suspicious),
			TotalFilePairsCompared: pairsCompared,
		},
		RepositoryMatrix: similarity.BuildMatrix(req.Repos, comparisons),
		SuspiciousPairs:  suspicious,
		AllComparisons:   comparisons,
		CommitFlags:      flags,
	}
}
