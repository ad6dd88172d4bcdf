package service

import (
	"context"

	"github.com/captcha-dashboard/internal/logging"
	"github.com/captcha-dashboard/internal/models"
	"github.com/captcha-dashboard/internal/storage"
	"github.com/captcha-dashboard/internal/types"
)

const (
	// DefaultActivityLimit is used when a caller gives no limit
	DefaultActivityLimit = 50
	// MaxActivityLimit caps a single page of activity
	MaxActivityLimit = 500
)

// ActivityService reads the audit trail and appends to it on behalf of the
// other services
type ActivityService struct {
	store *storage.Store
}

// NewActivityService creates a new activity service
func NewActivityService(store *storage.Store) *ActivityService {
	return &ActivityService{store: store}
}

// ListActivityLogs returns the newest entries first. A limit of zero or less
// means DefaultActivityLimit; larger limits are capped at MaxActivityLimit.
func (s *ActivityService) ListActivityLogs(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}

	logs, err := s.store.ListActivityLogs(ctx, limit)
	if err != nil {
		return nil, storeError(err, "activity log", "")
	}
	return logs, nil
}

// Record appends an entry. A failed append is logged and never fails the
// operation that produced it.
func (s *ActivityService) Record(ctx context.Context, jobID *string, action, details string, status types.ActivityStatus) {
	entry := &models.ActivityLog{
		JobID:  jobID,
		Action: action,
		Status: status,
	}
	if details != "" {
		entry.Details = &details
	}

	if _, err := s.store.CreateActivityLog(ctx, entry); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("action", action).Warn("Failed to record activity")
	}
}
