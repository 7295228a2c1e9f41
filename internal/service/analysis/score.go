package analysis

import (
	"sort"

	"github.com/repoguard/repoguard/internal/embedcache"
	"github.com/repoguard/repoguard/internal/fileproc"
	"github.com/repoguard/repoguard/internal/job"
	"github.com/repoguard/repoguard/pkg/analyzer/commits"
	"github.com/repoguard/repoguard/pkg/models"
	"github.com/repoguard/repoguard/pkg/similarity"
)

// pairTask is the scoring unit for one unordered repository pair.
type pairTask struct {
	i, j int
}

// pairOutcome is the immutable result of scoring one repository pair.
type pairOutcome struct {
	i, j     int
	result   models.RepoPairResult
	flags    []models.CommitFlag
	compared int
}

// scoreAll scores every unordered repository pair: all cross-repository
// file pairs plus the commit window comparison. The embedding cache is
// frozen before this stage starts, so parallel readers never race a
// writer.
func (s *Service) scoreAll(j *job.Job, repos []repoData, cache *embedcache.Cache, combiner *similarity.Combiner, commitAnalyzer *commits.Analyzer, threshold float64) ([]models.RepoPairResult, []models.CommitFlag, int) {
	score := func(textA, textB string) (float64, float64) {
		tok := similarity.TokenSimilarity(textA, textB)
		vecA, _ := cache.Vector(textA)
		vecB, _ := cache.Vector(textB)
		return tok, similarity.SemanticSimilarity(vecA, vecB)
	}

	var tasks []pairTask
	for i := 0; i < len(repos); i++ {
		for k := i + 1; k < len(repos); k++ {
			tasks = append(tasks, pairTask{i: i, j: k})
		}
	}
	tick := s.stageTicker(j, progressScoring, progressReasoning-progressScoring, len(tasks))

	outcomes := fileproc.MapWithProgress(tasks, func(t pairTask) (pairOutcome, error) {
		repoA, repoB := repos[t.i], repos[t.j]

		filePairs := scoreFilePairs(repoA, repoB, score, combiner)
		result := similarity.AggregateRepoPair(repoA.repoID, repoB.repoID, filePairs, threshold)
		// The full pair set feeds aggregation; the report keeps only
		// pairs that reached a band.
		result.FilePairs = bandedOnly(result.FilePairs)

		return pairOutcome{
			i:        t.i,
			j:        t.j,
			result:   result,
			flags:    commitAnalyzer.Compare(repoA.docs, repoB.docs, score),
			compared: len(repoA.files) * len(repoB.files),
		}, nil
	}, tick)

	// Pool output order is arbitrary; restore submission order.
	sort.Slice(outcomes, func(a, b int) bool {
		if outcomes[a].i != outcomes[b].i {
			return outcomes[a].i < outcomes[b].i
		}
		return outcomes[a].j < outcomes[b].j
	})

	var (
		comparisons []models.RepoPairResult
		flags       []models.CommitFlag
		compared    int
	)
	for _, o := range outcomes {
		comparisons = append(comparisons, o.result)
		flags = append(flags, o.flags...)
		compared += o.compared
	}
	return comparisons, flags, compared
}

// scoreFilePairs computes every cross-repository file pair score.
// Identical normalized fingerprints short-circuit to a perfect score
// without touching the embedding cache.
func scoreFilePairs(repoA, repoB repoData, score commits.ScoreFunc, combiner *similarity.Combiner) []models.FilePairScore {
	pairs := make([]models.FilePairScore, 0, len(repoA.files)*len(repoB.files))
	for _, fa := range repoA.files {
		for _, fb := range repoB.files {
			var tok, sem float64
			if fa.Fingerprint == fb.Fingerprint {
				tok, sem = 1.0, 1.0
			} else {
				tok, sem = score(fa.Normalized, fb.Normalized)
			}
			combined, band := combiner.Combine(tok, sem)
			pairs = append(pairs, models.FilePairScore{
				FileA:         fa.Path,
				FileB:         fb.Path,
				TokenScore:    tok,
				SemanticScore: sem,
				CombinedScore: combined,
				Band:          band,
			})
		}
	}
	return pairs
}

func bandedOnly(pairs []models.FilePairScore) []models.FilePairScore {
	kept := pairs[:0]
	for _, p := range pairs {
		if p.Band != models.BandNone {
			kept = append(kept, p)
		}
	}
	return kept
}
