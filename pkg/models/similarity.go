package models

// Band represents the confidence label derived from a combined similarity score.
type Band string

const (
	BandNone     Band = "none" // below the lowest cut point
	BandLow      Band = "low"
	BandMedium   Band = "medium"
	BandHigh     Band = "high"
	BandCritical Band = "critical"
)

// Rank returns the ordering of a band, with critical highest.
// Useful for sorting flagged pairs by severity.
func (b Band) Rank() int {
	switch b {
	case BandCritical:
		return 4
	case BandHigh:
		return 3
	case BandMedium:
		return 2
	case BandLow:
		return 1
	default:
		return 0
	}
}

// SourceFile represents a single source file within one analysis job.
// Identity is (RepoID, Path). Immutable once normalized.
type SourceFile struct {
	RepoID     string `json:"repo_id"`
	Path       string `json:"path"`
	RawText    string `json:"-"`
	Normalized string `json:"-"`
	// Fingerprint is a blake3 hash of the normalized text, used to
	// short-circuit scoring of byte-identical content.
	Fingerprint [32]byte `json:"-"`
}

// FilePairScore holds the similarity scores for one cross-repository file pair.
type FilePairScore struct {
	FileA         string  `json:"file_a"`
	FileB         string  `json:"file_b"`
	TokenScore    float64 `json:"token_score"`
	SemanticScore float64 `json:"semantic_score"`
	CombinedScore float64 `json:"combined_score"`
	Band          Band    `json:"band"`
}

// RepoPairResult aggregates all file-pair scores between two repositories.
// FilePairs is ordered by combined score descending.
type RepoPairResult struct {
	RepoA          string          `json:"repo_a"`
	RepoB          string          `json:"repo_b"`
	RepoSimilarity float64         `json:"repo_similarity"`
	FilePairs      []FilePairScore `json:"file_pairs"`
	Flagged        bool            `json:"flagged"`
	// Explanation is filled by the optional explainer; empty when absent.
	Explanation string `json:"explanation,omitempty"`
}

// SimilarityMatrix is a symmetric N x N repository similarity matrix
// with the diagonal fixed at 1.0.
type SimilarityMatrix struct {
	Repos  []string    `json:"repos"`
	Values [][]float64 `json:"similarities"`
}

// NewSimilarityMatrix creates a zeroed matrix with diagonal 1.0.
func NewSimilarityMatrix(repos []string) *SimilarityMatrix {
	n := len(repos)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		values[i][i] = 1.0
	}
	return &SimilarityMatrix{
		Repos:  append([]string(nil), repos...),
		Values: values,
	}
}

// Set records the similarity for an unordered repository pair, mirrored
// into both cells. Setting the diagonal is ignored (fixed at 1.0).
func (m *SimilarityMatrix) Set(i, j int, sim float64) {
	if i == j {
		return
	}
	m.Values[i][j] = sim
	m.Values[j][i] = sim
}

// At returns the similarity between repositories i and j.
func (m *SimilarityMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// Size returns the number of repositories in the matrix.
func (m *SimilarityMatrix) Size() int {
	return len(m.Repos)
}
