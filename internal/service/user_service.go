package service

import (
	"context"

	"github.com/captcha-dashboard/internal/models"
	"github.com/captcha-dashboard/internal/storage"
)

// UserService exposes the account that owns the balance
type UserService struct {
	store *storage.Store
}

// NewUserService creates a new user service
func NewUserService(store *storage.Store) *UserService {
	return &UserService{store: store}
}

// GetCurrentUser returns the default account. Password is never serialized.
func (s *UserService) GetCurrentUser(ctx context.Context) (*models.User, error) {
	u, err := s.store.DefaultUser(ctx)
	if err != nil {
		return nil, storeError(err, "user", storage.DefaultUsername)
	}
	return u, nil
}
