package models

import (
	"time"

	"github.com/captcha-dashboard/internal/types"
)

// ActivityLog is an append-only audit entry. Entries are never mutated.
type ActivityLog struct {
	ID        string               `json:"id"`
	JobID     *string              `json:"jobId,omitempty"`
	Action    string               `json:"action"`
	Details   *string              `json:"details,omitempty"`
	Status    types.ActivityStatus `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
}
