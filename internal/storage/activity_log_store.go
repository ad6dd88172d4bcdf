package storage

import (
	"context"

	"github.com/captcha-dashboard/internal/models"
)

func cloneActivityLog(l *models.ActivityLog) *models.ActivityLog {
	c := *l
	c.JobID = cloneString(l.JobID)
	c.Details = cloneString(l.Details)
	return &c
}

// CreateActivityLog appends an entry. Entries are never updated or deleted.
func (s *Store) CreateActivityLog(_ context.Context, entry *models.ActivityLog) (*models.ActivityLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := cloneActivityLog(entry)
	l.ID = s.newIDLocked()
	l.CreatedAt = s.now()
	s.activityLogs = append(s.activityLogs, l)
	return cloneActivityLog(l), nil
}

// ListActivityLogs returns up to limit entries, newest first. A limit of zero
// or less returns every entry.
func (s *Store) ListActivityLogs(_ context.Context, limit int) ([]*models.ActivityLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.activityLogs)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]*models.ActivityLog, 0, n)
	for i := len(s.activityLogs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, cloneActivityLog(s.activityLogs[i]))
	}
	return out, nil
}
