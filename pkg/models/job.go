package models

import "time"

// JobStatus is the lifecycle state of an analysis job.
type JobStatus string

const (
	StatusQueued        JobStatus = "queued"
	StatusCloning       JobStatus = "cloning"
	StatusPreprocessing JobStatus = "preprocessing"
	StatusEmbedding     JobStatus = "embedding"
	StatusScoring       JobStatus = "scoring"
	StatusReasoning     JobStatus = "reasoning"
	StatusCompleted     JobStatus = "completed"
	StatusFailed        JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// stageOrder defines the one-directional stage sequence. Failed is
// reachable from any non-terminal state and has no successor.
var stageOrder = map[JobStatus]int{
	StatusQueued:        0,
	StatusCloning:       1,
	StatusPreprocessing: 2,
	StatusEmbedding:     3,
	StatusScoring:       4,
	StatusReasoning:     5,
	StatusCompleted:     6,
}

// CanTransition reports whether moving from s to next is legal.
func (s JobStatus) CanTransition(next JobStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusFailed {
		return true
	}
	from, ok := stageOrder[s]
	if !ok {
		return false
	}
	to, ok := stageOrder[next]
	if !ok {
		return false
	}
	return to > from
}

// JobSnapshot is an immutable view of a job handed to status pollers.
// A poller sees either the pre-transition or post-transition state,
// never a half-written one.
type JobSnapshot struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Progress  int       `json:"progress"`
	Repos     []string  `json:"repos"`
	Threshold float64   `json:"threshold"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
	Error     string    `json:"error,omitempty"`
	Result    *Report   `json:"result,omitempty"`
}
