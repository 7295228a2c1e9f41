// Package job tracks analysis jobs through their staged lifecycle.
// Each job is written by exactly one worker context; pollers receive
// immutable snapshots and never observe a half-written transition.
package job

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/repoguard/repoguard/pkg/models"
)

// ErrIllegalTransition is returned when a stage transition would move
// backwards or out of a terminal state.
var ErrIllegalTransition = errors.New("illegal job state transition")

// ErrCanceled is recorded as the failure cause of a canceled job.
var ErrCanceled = errors.New("job canceled")

// Job is one analysis job. All mutation goes through its methods; the
// internal mutex makes each transition atomic with respect to
// Snapshot readers.
type Job struct {
	mu sync.Mutex

	id        string
	status    models.JobStatus
	progress  int
	repos     []string
	threshold float64
	language  string
	createdAt time.Time
	err       string
	result    *models.Report
	canceled  bool
}

// New creates a queued job.
func New(id string, repos []string, threshold float64, language string) *Job {
	return &Job{
		id:        id,
		status:    models.StatusQueued,
		repos:     append([]string(nil), repos...),
		threshold: threshold,
		language:  language,
		createdAt: time.Now(),
	}
}

// ID returns the job's opaque identifier.
func (j *Job) ID() string {
	return j.id
}

// Transition moves the job to the next stage and bumps progress to at
// least floor. Transitions are one-directional; no state is revisited,
// and progress never decreases.
func (j *Job) Transition(next models.JobStatus, floor int) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, j.status, next)
	}
	j.status = next
	if floor > j.progress {
		j.progress = floor
	}
	if next == models.StatusCompleted {
		j.progress = 100
	}
	return nil
}

// SetProgress raises progress within the current stage. Lower values
// are ignored so progress stays monotonically non-decreasing even on
// partial stage completion.
func (j *Job) SetProgress(p int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if p > j.progress && p <= 100 {
		j.progress = p
	}
}

// Fail records the failing stage's cause and transitions to failed.
// A failed job exposes no result.
func (j *Job) Fail(cause error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.Terminal() {
		return
	}
	j.status = models.StatusFailed
	j.err = cause.Error()
	j.result = nil
}

// Complete attaches the report and transitions to completed.
func (j *Job) Complete(report *models.Report) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.status.CanTransition(models.StatusCompleted) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, j.status, models.StatusCompleted)
	}
	j.status = models.StatusCompleted
	j.progress = 100
	j.result = report
	return nil
}

// Cancel requests early termination. Idempotent: requesting
// cancellation twice has no additional effect. The running worker
// observes the request at the next stage boundary.
func (j *Job) Cancel() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.canceled = true
}

// Canceled reports whether cancellation was requested. Workers check
// this at stage boundaries so job state is never corrupted mid-stage.
func (j *Job) Canceled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.canceled
}

// Snapshot returns an immutable view of the job. The snapshot reflects
// either the pre-transition or post-transition state, never a partial
// write, and a non-completed job never carries a result.
func (j *Job) Snapshot() models.JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := models.JobSnapshot{
		ID:        j.id,
		Status:    j.status,
		Progress:  j.progress,
		Repos:     append([]string(nil), j.repos...),
		Threshold: j.threshold,
		Language:  j.language,
		CreatedAt: j.createdAt,
		Error:     j.err,
	}
	if j.status == models.StatusCompleted {
		snap.Result = j.result
	}
	return snap
}
