package models

import (
	"time"

	"github.com/captcha-dashboard/internal/types"
)

// Platform represents a configured external CAPTCHA vendor. It is bookkeeping
// only; no live health check is made against ApiURL.
type Platform struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	APIKey        string               `json:"apiKey"`
	APIURL        string               `json:"apiUrl"`
	Status        types.PlatformStatus `json:"status"`
	JobsCompleted int                  `json:"jobsCompleted"`
	SuccessRate   float64              `json:"successRate"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// PlatformPatch carries the fields a partial platform update may change
type PlatformPatch struct {
	Name          *string
	APIKey        *string
	APIURL        *string
	Status        *types.PlatformStatus
	JobsCompleted *int
	SuccessRate   *float64
}
