package service

import (
	"context"
	"fmt"

	"github.com/captcha-dashboard/internal/models"
	"github.com/captcha-dashboard/internal/storage"
	"github.com/captcha-dashboard/internal/types"
	"github.com/captcha-dashboard/internal/validation"
)

// PlatformService manages configured CAPTCHA vendors
type PlatformService struct {
	store    *storage.Store
	activity *ActivityService
}

// NewPlatformService creates a new platform service
func NewPlatformService(store *storage.Store, activity *ActivityService) *PlatformService {
	return &PlatformService{store: store, activity: activity}
}

// CreatePlatformRequest is the input for adding a platform
type CreatePlatformRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	APIKey string `json:"apiKey" validate:"max=512"`
	APIURL string `json:"apiUrl" validate:"required,http_url"`
	Status string `json:"status,omitempty" validate:"omitempty,oneof=connected disconnected error"`
}

// UpdatePlatformRequest is a partial update; absent fields are left alone
type UpdatePlatformRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	APIKey *string `json:"apiKey,omitempty" validate:"omitempty,max=512"`
	APIURL *string `json:"apiUrl,omitempty" validate:"omitempty,http_url"`
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=connected disconnected error"`
}

// CreatePlatform stores a platform; status defaults to connected
func (s *PlatformService) CreatePlatform(ctx context.Context, req *CreatePlatformRequest) (*models.Platform, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr.ToCategorizedError()
	}

	p, err := s.store.CreatePlatform(ctx, &models.Platform{
		Name:   req.Name,
		APIKey: req.APIKey,
		APIURL: req.APIURL,
		Status: types.PlatformStatus(req.Status),
	})
	if err != nil {
		return nil, storeError(err, "platform", req.Name)
	}

	s.activity.Record(ctx, nil, "Platform added", fmt.Sprintf("%s (%s)", p.Name, p.Status), types.ActivityInfo)
	return p, nil
}

// GetPlatform returns one platform
func (s *PlatformService) GetPlatform(ctx context.Context, id string) (*models.Platform, error) {
	p, err := s.store.GetPlatform(ctx, id)
	if err != nil {
		return nil, storeError(err, "platform", id)
	}
	return p, nil
}

// ListPlatforms returns platforms in the order they were added
func (s *PlatformService) ListPlatforms(ctx context.Context) ([]*models.Platform, error) {
	platforms, err := s.store.ListPlatforms(ctx)
	if err != nil {
		return nil, storeError(err, "platform", "")
	}
	return platforms, nil
}

// UpdatePlatform applies a partial update
func (s *PlatformService) UpdatePlatform(ctx context.Context, id string, req *UpdatePlatformRequest) (*models.Platform, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr.ToCategorizedError()
	}

	patch := models.PlatformPatch{
		Name:   req.Name,
		APIKey: req.APIKey,
		APIURL: req.APIURL,
	}
	if req.Status != nil {
		st := types.PlatformStatus(*req.Status)
		patch.Status = &st
	}

	p, err := s.store.UpdatePlatform(ctx, id, patch)
	if err != nil {
		return nil, storeError(err, "platform", id)
	}
	return p, nil
}

// DeletePlatform removes a platform. Jobs keep their dangling platformId.
func (s *PlatformService) DeletePlatform(ctx context.Context, id string) error {
	p, err := s.store.GetPlatform(ctx, id)
	if err != nil {
		return storeError(err, "platform", id)
	}
	if err := s.store.DeletePlatform(ctx, id); err != nil {
		return storeError(err, "platform", id)
	}

	s.activity.Record(ctx, nil, "Platform removed", p.Name, types.ActivityInfo)
	return nil
}
