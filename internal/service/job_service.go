package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/captcha-dashboard/internal/adapter"
	"github.com/captcha-dashboard/internal/circuitbreaker"
	apperrors "github.com/captcha-dashboard/internal/errors"
	"github.com/captcha-dashboard/internal/logging"
	"github.com/captcha-dashboard/internal/metrics"
	"github.com/captcha-dashboard/internal/models"
	"github.com/captcha-dashboard/internal/storage"
	"github.com/captcha-dashboard/internal/types"
	"github.com/captcha-dashboard/internal/validation"
)

// JobService owns the job lifecycle: queued -> processing -> completed | failed
type JobService struct {
	store      *storage.Store
	activity   *ActivityService
	completion adapter.CompletionClient
}

// NewJobService creates a job service. completion may be nil, in which case
// ProcessJob reports the capability as unavailable.
func NewJobService(store *storage.Store, activity *ActivityService, completion adapter.CompletionClient) *JobService {
	return &JobService{
		store:      store,
		activity:   activity,
		completion: completion,
	}
}

// CanProcess reports whether a completion backend is configured
func (s *JobService) CanProcess() bool {
	return s.completion != nil
}

// CreateJobRequest is the input for creating a job
type CreateJobRequest struct {
	PlatformID *string        `json:"platformId,omitempty"`
	ExternalID *string        `json:"externalId,omitempty"`
	Type       string         `json:"type" validate:"required,oneof=captcha typing"`
	SubType    *string        `json:"subType,omitempty" validate:"omitempty,max=64"`
	Reward     string         `json:"reward" validate:"required,decimal"`
	Data       models.JobData `json:"data"`
}

// CreateJob validates the request and stores a queued job
func (s *JobService) CreateJob(ctx context.Context, req *CreateJobRequest) (*models.Job, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr.ToCategorizedError()
	}

	reward, err := validation.ParseMoney(req.Reward)
	if err != nil || reward.IsNegative() {
		return nil, apperrors.NewInvalidParameterError("reward", "must be a non-negative decimal")
	}

	if req.PlatformID != nil && *req.PlatformID != "" {
		if _, err := s.store.GetPlatform(ctx, *req.PlatformID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, apperrors.NewInvalidParameterError("platformId", "platform does not exist")
			}
			return nil, storeError(err, "platform", *req.PlatformID)
		}
	}

	job, err := s.store.CreateJob(ctx, &models.Job{
		PlatformID: req.PlatformID,
		ExternalID: req.ExternalID,
		Type:       types.JobType(req.Type),
		SubType:    req.SubType,
		Reward:     reward,
		Data:       req.Data,
	})
	if err != nil {
		return nil, storeError(err, "job", "")
	}

	s.activity.Record(ctx, &job.ID, "Job created", fmt.Sprintf("%s job queued with reward $%s", job.Type, job.Reward.StringFixed(4)), types.ActivityInfo)
	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"jobId": job.ID,
		"type":  job.Type,
	}).Info("Job created")

	return job, nil
}

// GetJob returns one job
func (s *JobService) GetJob(ctx context.Context, id string) (*models.Job, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, storeError(err, "job", id)
	}
	return job, nil
}

// ListJobs returns all jobs newest first, optionally filtered by status
func (s *JobService) ListJobs(ctx context.Context, status string) ([]*models.Job, error) {
	if status == "" {
		jobs, err := s.store.ListJobs(ctx)
		return jobs, storeError(err, "job", "")
	}

	st := types.JobStatus(status)
	if !st.Valid() {
		return nil, apperrors.NewInvalidParameterError("status", "must be one of: queued processing completed failed")
	}
	jobs, err := s.store.ListJobsByStatus(ctx, st)
	return jobs, storeError(err, "job", "")
}

// DeleteJob removes a job at any status. The store delete is idempotent, so
// the existence check lives here.
func (s *JobService) DeleteJob(ctx context.Context, id string) error {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return storeError(err, "job", id)
	}
	if err := s.store.DeleteJob(ctx, id); err != nil {
		return storeError(err, "job", id)
	}

	if job.PlatformID != nil {
		s.refreshPlatform(ctx, *job.PlatformID)
	}
	s.activity.Record(ctx, nil, "Job cancelled", fmt.Sprintf("%s job %s removed while %s", job.Type, job.ID, job.Status), types.ActivityInfo)
	return nil
}

// ProcessJob solves a job with the completion backend. One attempt is made;
// a failure is persisted on the job and returned, never retried here.
func (s *JobService) ProcessJob(ctx context.Context, id string) (*models.Job, error) {
	if _, err := s.store.GetJob(ctx, id); err != nil {
		return nil, storeError(err, "job", id)
	}
	if s.completion == nil {
		return nil, apperrors.NewServiceUnavailableError("completion")
	}

	job, err := s.store.BeginJobProcessing(ctx, id)
	if err != nil {
		return nil, storeError(err, "job", id)
	}

	logger := logging.FromContext(ctx).WithFields(map[string]interface{}{
		"jobId": job.ID,
		"type":  job.Type,
	})
	logger.Debug("Job processing started")

	start := time.Now()
	result, solveErr := s.solveOrFail(ctx, job, start)
	if solveErr != nil {
		if circuitbreaker.IsOpen(solveErr) {
			return nil, s.release(ctx, job)
		}
		return nil, s.fail(ctx, job, solveErr, start)
	}

	completed, _, err := s.store.CompleteJob(ctx, id, result)
	if err != nil {
		return nil, storeError(err, "job", id)
	}
	if completed.PlatformID != nil {
		s.refreshPlatform(ctx, *completed.PlatformID)
	}

	metrics.RecordJobProcessed(string(job.Type), "completed", time.Since(start))
	s.activity.Record(ctx, &completed.ID, "Job completed", fmt.Sprintf("Earned $%s", completed.Reward.StringFixed(4)), types.ActivitySuccess)
	logger.WithField("duration", time.Since(start).String()).Info("Job completed")

	return completed, nil
}

// solveOrFail runs solve and records a panicking completion client as a
// failed attempt before the panic continues, so the job does not stay in
// processing.
func (s *JobService) solveOrFail(ctx context.Context, job *models.Job, start time.Time) (string, error) {
	defer func() {
		if rec := recover(); rec != nil {
			_ = s.fail(ctx, job, fmt.Errorf("completion client panicked: %v", rec), start)
			panic(rec)
		}
	}()
	return s.solve(ctx, job)
}

// release hands the job back unchanged when the completion breaker refused
// the call. No attempt was made, so the retry count stays as it was.
func (s *JobService) release(ctx context.Context, job *models.Job) error {
	released, err := s.store.ReleaseJob(ctx, job.ID)
	if err != nil {
		return storeError(err, "job", job.ID)
	}
	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"jobId":  job.ID,
		"status": released.Status,
	}).Warn("Completion backend unavailable, job released")
	return apperrors.NewServiceUnavailableError("completion")
}

// solve routes the payload to the matching completion operation
func (s *JobService) solve(ctx context.Context, job *models.Job) (string, error) {
	data := job.Data

	switch job.Type {
	case types.JobTypeCaptcha:
		if data.HasImage() {
			return s.completion.SolveImageCaptcha(ctx, data.ImageURL)
		}
		if data.HasText() {
			return s.completion.SolveTextCaptcha(ctx, data.Text)
		}
		return "", apperrors.NewInvalidJobDataError(job.Type, "captcha job requires data.imageUrl or data.text")

	case types.JobTypeTyping:
		if data.HasImage() {
			return s.completion.TranscribeImage(ctx, data.ImageURL)
		}
		if data.HasText() && data.Format != "" {
			return s.completion.ConvertTextFormat(ctx, data.Text, data.Format)
		}
		return "", apperrors.NewInvalidJobDataError(job.Type, "typing job requires data.imageUrl, or data.text together with data.format")
	}

	return "", apperrors.NewInvalidJobDataError(job.Type, fmt.Sprintf("unsupported job type %q", job.Type))
}

// fail persists a failed attempt and returns the error for the caller
func (s *JobService) fail(ctx context.Context, job *models.Job, cause error, start time.Time) error {
	message := cause.Error()

	failed, err := s.store.FailJob(ctx, job.ID, message)
	if err != nil {
		return storeError(err, "job", job.ID)
	}
	if failed.PlatformID != nil {
		s.refreshPlatform(ctx, *failed.PlatformID)
	}

	metrics.RecordJobProcessed(string(job.Type), "failed", time.Since(start))
	s.activity.Record(ctx, &job.ID, "Job failed", message, types.ActivityError)
	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"jobId":      job.ID,
		"type":       job.Type,
		"retryCount": failed.RetryCount,
	}).WithError(cause).Error("Job failed")

	var catErr *apperrors.CategorizedError
	if errors.As(cause, &catErr) && catErr.Code == apperrors.CodeInvalidJobData {
		return catErr
	}
	return apperrors.NewProcessingFailureError(job.ID, cause)
}

func (s *JobService) refreshPlatform(ctx context.Context, platformID string) {
	if _, err := s.store.RefreshPlatformStats(ctx, platformID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logging.FromContext(ctx).WithError(err).WithField("platformId", platformID).Warn("Failed to refresh platform stats")
	}
}
