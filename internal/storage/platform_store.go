package storage

import (
	"context"
	"math"
	"sort"

	"github.com/captcha-dashboard/internal/models"
	"github.com/captcha-dashboard/internal/types"
)

func clonePlatform(p *models.Platform) *models.Platform {
	c := *p
	return &c
}

// CreatePlatform adds a platform. Status defaults to connected.
func (s *Store) CreatePlatform(_ context.Context, platform *models.Platform) (*models.Platform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := clonePlatform(platform)
	p.ID = s.newIDLocked()
	if p.Status == "" {
		p.Status = types.PlatformConnected
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.platforms[p.ID] = p
	return clonePlatform(p), nil
}

// GetPlatform retrieves a platform by ID
func (s *Store) GetPlatform(_ context.Context, id string) (*models.Platform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.platforms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePlatform(p), nil
}

// ListPlatforms returns all platforms in creation order
func (s *Store) ListPlatforms(_ context.Context) ([]*models.Platform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Platform, 0, len(s.platforms))
	for _, p := range s.platforms {
		out = append(out, clonePlatform(p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return s.insertionOrder[out[i].ID] < s.insertionOrder[out[j].ID]
	})
	return out, nil
}

// UpdatePlatform applies a partial update
func (s *Store) UpdatePlatform(_ context.Context, id string, patch models.PlatformPatch) (*models.Platform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.platforms[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.APIKey != nil {
		p.APIKey = *patch.APIKey
	}
	if patch.APIURL != nil {
		p.APIURL = *patch.APIURL
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.JobsCompleted != nil {
		p.JobsCompleted = *patch.JobsCompleted
	}
	if patch.SuccessRate != nil {
		p.SuccessRate = *patch.SuccessRate
	}
	return clonePlatform(p), nil
}

// DeletePlatform removes a platform. Deleting an absent ID is not an error.
// Jobs keep their platformId reference.
func (s *Store) DeletePlatform(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.platforms, id)
	delete(s.insertionOrder, id)
	return nil
}

// RefreshPlatformStats recomputes a platform's completed count and success
// rate from the jobs bound to it
func (s *Store) RefreshPlatformStats(_ context.Context, platformID string) (*models.Platform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.platforms[platformID]
	if !ok {
		return nil, ErrNotFound
	}

	total, completed := 0, 0
	for _, j := range s.jobs {
		if j.PlatformID == nil || *j.PlatformID != platformID {
			continue
		}
		total++
		if j.Status == types.JobStatusCompleted {
			completed++
		}
	}

	p.JobsCompleted = completed
	p.SuccessRate = SuccessRate(completed, total)
	return clonePlatform(p), nil
}

// SuccessRate returns completed/total as a percentage rounded to two
// decimals, or 0 when total is 0
func SuccessRate(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	rate := float64(completed) / float64(total) * 100
	return math.Round(rate*100) / 100
}
