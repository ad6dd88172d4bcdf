package storage

import (
	"context"
	"time"

	"github.com/captcha-dashboard/internal/models"
	"github.com/captcha-dashboard/internal/types"
)

// CreateJob adds a job. Every new job starts queued, with zero retries and
// no result, whatever the input carries.
func (s *Store) CreateJob(_ context.Context, job *models.Job) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j := job.Clone()
	j.ID = s.newIDLocked()
	j.Status = types.JobStatusQueued
	j.RetryCount = 0
	j.Result = nil
	j.ErrorMessage = nil
	j.CompletedAt = nil
	if j.CreatedAt.IsZero() {
		j.CreatedAt = s.now()
	}
	s.jobs[j.ID] = j
	return j.Clone(), nil
}

// GetJob retrieves a job by ID
func (s *Store) GetJob(_ context.Context, id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return j.Clone(), nil
}

// ListJobs returns all jobs, most recent first
func (s *Store) ListJobs(_ context.Context) ([]*models.Job, error) {
	return s.filterJobs(func(*models.Job) bool { return true }), nil
}

// ListJobsByStatus returns jobs in the given status, most recent first
func (s *Store) ListJobsByStatus(_ context.Context, status types.JobStatus) ([]*models.Job, error) {
	return s.filterJobs(func(j *models.Job) bool { return j.Status == status }), nil
}

// ListJobsCompletedToday returns completed jobs created on now's calendar
// day, in now's location
func (s *Store) ListJobsCompletedToday(_ context.Context, now time.Time) ([]*models.Job, error) {
	y, m, d := now.Date()
	return s.filterJobs(func(j *models.Job) bool {
		if j.Status != types.JobStatusCompleted {
			return false
		}
		jy, jm, jd := j.CreatedAt.In(now.Location()).Date()
		return jy == y && jm == m && jd == d
	}), nil
}

func (s *Store) filterJobs(keep func(*models.Job) bool) []*models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if keep(j) {
			out = append(out, j.Clone())
		}
	}
	sortJobs(s, out)
	return out
}

// UpdateJob applies a partial update. Leaving the completed status clears
// CompletedAt.
func (s *Store) UpdateJob(_ context.Context, id string, patch models.JobPatch) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	applyJobPatch(j, patch)
	return j.Clone(), nil
}

func applyJobPatch(j *models.Job, patch models.JobPatch) {
	if patch.Status != nil {
		j.Status = *patch.Status
	}
	if patch.ClearResult {
		j.Result = nil
	} else if patch.Result != nil {
		j.Result = cloneString(patch.Result)
	}
	if patch.ErrorMessage != nil {
		j.ErrorMessage = cloneString(patch.ErrorMessage)
	}
	if patch.RetryCount != nil {
		j.RetryCount = *patch.RetryCount
	}
	if patch.CompletedAt != nil {
		j.CompletedAt = cloneTime(patch.CompletedAt)
	}
	if j.Status != types.JobStatusCompleted {
		j.CompletedAt = nil
	}
}

// DeleteJob removes a job. Deleting an absent ID is not an error.
func (s *Store) DeleteJob(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.jobs, id)
	delete(s.insertionOrder, id)
	return nil
}

// BeginJobProcessing moves a queued or failed job to processing. Exactly one
// concurrent caller wins; the rest get ErrJobBusy.
func (s *Store) BeginJobProcessing(_ context.Context, id string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	switch j.Status {
	case types.JobStatusProcessing:
		return nil, ErrJobBusy
	case types.JobStatusCompleted:
		return nil, ErrJobFinished
	}

	j.Status = types.JobStatusProcessing
	return j.Clone(), nil
}

// ReleaseJob returns a processing job to the status it had before the
// attempt: failed when an earlier attempt left an error, queued otherwise.
// The retry count is unchanged. Jobs not in processing are left alone.
func (s *Store) ReleaseJob(_ context.Context, id string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if j.Status == types.JobStatusProcessing {
		j.Status = types.JobStatusQueued
		if j.ErrorMessage != nil {
			j.Status = types.JobStatusFailed
		}
	}
	return j.Clone(), nil
}

// CompleteJob records a successful solve and credits the job's reward to the
// default user in one step
func (s *Store) CompleteJob(_ context.Context, id string, result string) (*models.Job, *models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, nil, ErrNotFound
	}
	if j.Status == types.JobStatusCompleted {
		return nil, nil, ErrJobFinished
	}

	tx, err := s.creditEarningLocked(s.defaultUserID, j.ID, j.Reward)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	status := types.JobStatusCompleted
	applyJobPatch(j, models.JobPatch{Status: &status, Result: &result, CompletedAt: &now})
	j.ErrorMessage = nil
	return j.Clone(), tx, nil
}

// FailJob records a failed solve and bumps the retry count
func (s *Store) FailJob(_ context.Context, id string, message string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}

	status := types.JobStatusFailed
	retries := j.RetryCount + 1
	applyJobPatch(j, models.JobPatch{Status: &status, ErrorMessage: &message, RetryCount: &retries})
	return j.Clone(), nil
}

// JobCounts returns the number of completed jobs and the total job count
func (s *Store) JobCounts(_ context.Context) (completed, total int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, j := range s.jobs {
		if j.Status == types.JobStatusCompleted {
			completed++
		}
	}
	return completed, len(s.jobs)
}
