package models

import "time"

// Summary holds the headline counts for a completed analysis.
type Summary struct {
	TotalRepos             int `json:"total_repos"`
	SuspiciousPairs        int `json:"suspicious_pairs"`
	TotalFilePairsCompared int `json:"total_file_pairs_compared"`
}

// Parameters echoes the configuration the analysis ran with.
type Parameters struct {
	Repositories []string `json:"repositories"`
	Language     string   `json:"language"`
	Branch       string   `json:"branch,omitempty"`
	Threshold    float64  `json:"threshold"`
}

// Report is the engine's sole output contract. Immutable once attached
// to a completed job.
type Report struct {
	JobID            string            `json:"job_id"`
	Timestamp        time.Time         `json:"timestamp"`
	Parameters       Parameters        `json:"parameters"`
	Summary          Summary           `json:"summary"`
	RepositoryMatrix *SimilarityMatrix `json:"repository_matrix"`
	// SuspiciousPairs is ordered by repository similarity descending.
	SuspiciousPairs []RepoPairResult `json:"suspicious_pairs"`
	AllComparisons  []RepoPairResult `json:"all_comparisons"`
	CommitFlags     []CommitFlag     `json:"commit_flags"`
}
