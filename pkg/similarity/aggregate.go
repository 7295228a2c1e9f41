package similarity

import (
	"sort"

	"github.com/repoguard/repoguard/pkg/models"
	"github.com/repoguard/repoguard/pkg/stats"
)

// AggregateRepoPair reduces the cross-repository file-pair scores into
// one repository-pair similarity: for every file on each side, take its
// single best-matching score against the other side, then take the
// median of the collected best-match scores. Best matches are collected
// from both directions so the result is symmetric in A and B.
//
// Median of best-matches is robust to repositories of very different
// sizes and to a handful of coincidentally similar files; mean would be
// skewed by size, max would trigger on one shared utility file.
//
// If either repository contributes zero comparable files, pairs is
// empty, the similarity is 0.0, and the pair is recorded but never
// flagged.
func AggregateRepoPair(repoA, repoB string, pairs []models.FilePairScore, threshold float64) models.RepoPairResult {
	result := models.RepoPairResult{
		RepoA:     repoA,
		RepoB:     repoB,
		FilePairs: sortPairs(pairs),
	}
	if len(pairs) == 0 {
		return result
	}

	bestA := bestMatches(pairs, func(p models.FilePairScore) string { return p.FileA })
	bestB := bestMatches(pairs, func(p models.FilePairScore) string { return p.FileB })

	scores := make([]float64, 0, len(bestA)+len(bestB))
	scores = append(scores, bestA...)
	scores = append(scores, bestB...)

	result.RepoSimilarity = stats.Median(scores)
	result.Flagged = result.RepoSimilarity >= threshold
	return result
}

// bestMatches collects, per file keyed by keyFn, the maximum combined
// score over its candidates. Ties on score break deterministically: the
// first pair in sorted order wins, which resolves to the
// lexicographically smallest candidate path.
func bestMatches(pairs []models.FilePairScore, keyFn func(models.FilePairScore) string) []float64 {
	best := make(map[string]float64)
	for _, p := range pairs {
		key := keyFn(p)
		if cur, ok := best[key]; !ok || p.CombinedScore > cur {
			best[key] = p.CombinedScore
		}
	}
	scores := make([]float64, 0, len(best))
	for _, s := range best {
		scores = append(scores, s)
	}
	return scores
}

// sortPairs orders file pairs by combined score descending, breaking
// ties by path for deterministic output.
func sortPairs(pairs []models.FilePairScore) []models.FilePairScore {
	sorted := append([]models.FilePairScore(nil), pairs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CombinedScore != sorted[j].CombinedScore {
			return sorted[i].CombinedScore > sorted[j].CombinedScore
		}
		if sorted[i].FileA != sorted[j].FileA {
			return sorted[i].FileA < sorted[j].FileA
		}
		return sorted[i].FileB < sorted[j].FileB
	})
	return sorted
}

// BuildMatrix mirrors per-pair results into a symmetric N x N matrix
// with the diagonal fixed at 1.0. Pair results whose repositories are
// not in repos are ignored.
func BuildMatrix(repos []string, results []models.RepoPairResult) *models.SimilarityMatrix {
	matrix := models.NewSimilarityMatrix(repos)
	index := make(map[string]int, len(repos))
	for i, r := range repos {
		index[r] = i
	}
	for _, res := range results {
		i, okA := index[res.RepoA]
		j, okB := index[res.RepoB]
		if !okA || !okB {
			continue
		}
		matrix.Set(i, j, res.RepoSimilarity)
	}
	return matrix
}
