package models

import "time"

// CommitRecord is a read-only snapshot of one commit, taken once per job.
type CommitRecord struct {
	RepoID       string    `json:"repo_id"`
	Hash         string    `json:"hash"`
	Message      string    `json:"message"`
	AddedLines   []string  `json:"-"`
	RemovedLines []string  `json:"-"`
	Timestamp    time.Time `json:"timestamp"`
}

// CommitSignal names which similarity signal triggered a commit flag.
type CommitSignal string

const (
	SignalDiff    CommitSignal = "diff"
	SignalMessage CommitSignal = "message"
)

// CommitFlag records a suspicious cross-repository commit pair.
type CommitFlag struct {
	RepoA             string       `json:"repo_a"`
	RepoB             string       `json:"repo_b"`
	CommitA           string       `json:"commit_a"`
	CommitB           string       `json:"commit_b"`
	MessageSimilarity float64      `json:"message_similarity"`
	DiffSimilarity    float64      `json:"diff_similarity"`
	Signal            CommitSignal `json:"signal"`
	Reason            string       `json:"reason"`
}
