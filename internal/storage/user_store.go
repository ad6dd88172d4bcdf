package storage

import (
	"context"

	"github.com/captcha-dashboard/internal/models"
)

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (s *Store) insertUserLocked(user *models.User) *models.User {
	u := cloneUser(user)
	u.ID = s.newIDLocked()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.ID] = u
	return u
}

// CreateUser adds a user; usernames are unique
func (s *Store) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return nil, ErrAlreadyExists
		}
	}
	return cloneUser(s.insertUserLocked(user)), nil
}

// GetUser retrieves a user by ID
func (s *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

// GetUserByUsername retrieves a user by username
func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

// DefaultUser returns the account the dashboard operates on
func (s *Store) DefaultUser(_ context.Context) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[s.defaultUserID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

// UpdateUser changes the username or password. Balance and total earnings
// only move through CreditEarning and DebitWithdrawal.
func (s *Store) UpdateUser(_ context.Context, id string, patch models.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Username != nil {
		for otherID, other := range s.users {
			if otherID != id && other.Username == *patch.Username {
				return nil, ErrAlreadyExists
			}
		}
		u.Username = *patch.Username
	}
	if patch.Password != nil {
		u.Password = *patch.Password
	}
	return cloneUser(u), nil
}
