package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/coursehub/internal/domain/job"
)

// JobsRepo is the in-process queue used when STORE=memory.
type JobsRepo struct {
	mu    sync.Mutex
	items map[string]job.Job
	now   func() time.Time
}

func NewJobsRepo() *JobsRepo {
	return &JobsRepo{
		items: make(map[string]job.Job),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *JobsRepo) Create(_ context.Context, j job.Job) (job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if j.IdempotencyKey != nil {
		for _, existing := range r.items {
			if existing.IdempotencyKey != nil && *existing.IdempotencyKey == *j.IdempotencyKey {
				return existing, nil
			}
		}
	}

	r.items[j.ID] = j
	return j, nil
}

func (r *JobsRepo) ClaimNext(_ context.Context, workerID string) (job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	ready := make([]job.Job, 0)
	for _, j := range r.items {
		if j.Status == job.StatusPending && !j.RunAt.After(now) && j.Attempts < j.MaxAttempts {
			ready = append(ready, j)
		}
	}
	if len(ready) == 0 {
		return job.Job{}, job.ErrJobNotFound
	}

	sort.Slice(ready, func(a, b int) bool {
		if !ready[a].RunAt.Equal(ready[b].RunAt) {
			return ready[a].RunAt.Before(ready[b].RunAt)
		}
		return ready[a].CreatedAt.Before(ready[b].CreatedAt)
	})

	j := ready[0]
	j.Status = job.StatusProcessing
	j.LockedAt = &now
	j.LockedBy = &workerID
	j.UpdatedAt = now
	r.items[j.ID] = j

	return j, nil
}

func (r *JobsRepo) MarkDone(_ context.Context, id string) error {
	return r.mutate(id, func(j *job.Job) {
		j.Status = job.StatusDone
		j.LastError = nil
	})
}

func (r *JobsRepo) MarkFailed(_ context.Context, id, errMsg string) error {
	return r.mutate(id, func(j *job.Job) {
		j.Status = job.StatusFailed
		j.Attempts++
		j.LastError = &errMsg
	})
}

func (r *JobsRepo) Reschedule(_ context.Context, id string, runAt time.Time, errMsg string) error {
	return r.mutate(id, func(j *job.Job) {
		j.Status = job.StatusPending
		j.Attempts++
		j.RunAt = runAt
		j.LastError = &errMsg
	})
}

func (r *JobsRepo) GetByID(_ context.Context, id string) (job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.items[id]
	if !ok {
		return job.Job{}, job.ErrJobNotFound
	}
	return j, nil
}

func (r *JobsRepo) mutate(id string, fn func(*job.Job)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.items[id]
	if !ok {
		return job.ErrJobNotFound
	}

	fn(&j)
	j.LockedAt = nil
	j.LockedBy = nil
	j.UpdatedAt = r.now()
	r.items[id] = j
	return nil
}
