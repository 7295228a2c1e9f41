package job

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sort"
	"sync"

	"github.com/repoguard/repoguard/pkg/models"
)

// ErrNotFound is returned for unknown job identifiers.
var ErrNotFound = errors.New("job not found")

// Registry is an arena of jobs addressed by opaque identifier. Writes
// for one job route through the single worker context that owns it;
// the registry itself only guards the id-to-job index.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Create registers a new queued job and returns it.
func (r *Registry) Create(repos []string, threshold float64, language string) *Job {
	j := New(newID(), repos, threshold, language)
	r.mu.Lock()
	r.jobs[j.id] = j
	r.mu.Unlock()
	return j
}

// Get returns the job for id.
func (r *Registry) Get(id string) (*Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return j, nil
}

// Snapshot returns the immutable view of the job with the given id.
func (r *Registry) Snapshot(id string) (models.JobSnapshot, error) {
	j, err := r.Get(id)
	if err != nil {
		return models.JobSnapshot{}, err
	}
	return j.Snapshot(), nil
}

// List returns snapshots of all jobs, ordered by creation time.
func (r *Registry) List() []models.JobSnapshot {
	r.mu.RLock()
	snaps := make([]models.JobSnapshot, 0, len(r.jobs))
	for _, j := range r.jobs {
		snaps = append(snaps, j.Snapshot())
	}
	r.mu.RUnlock()
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.Before(snaps[j].CreatedAt)
	})
	return snaps
}

// newID returns a 32-hex-character random identifier.
func newID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return hex.EncodeToString(buf[:])
}
