// Package storage holds the dashboard's records in process memory.
//
// Store is safe for concurrent use. Every read returns a copy, so callers
// can never mutate a stored record except through the Store's methods.
package storage

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/captcha-dashboard/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a unique key is taken
	ErrAlreadyExists = errors.New("record already exists")
	// ErrJobBusy is returned when a job already has a solve in flight
	ErrJobBusy = errors.New("job is already processing")
	// ErrJobFinished is returned when a completed job is processed again
	ErrJobFinished = errors.New("job is already completed")
	// ErrInsufficientBalance is returned when a debit exceeds the balance
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// DefaultUsername is the account every store is provisioned with
const DefaultUsername = "demo_user"

// Option configures a Store
type Option func(*Store)

// WithClock overrides the store's time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithSettingsStore replaces the in-memory settings map, e.g. with Redis
func WithSettingsStore(settings SettingsStore) Option {
	return func(s *Store) {
		s.settings = settings
	}
}

// WithDemoData seeds platforms, a job history and activity after construction
func WithDemoData() Option {
	return func(s *Store) {
		s.seedDemo = true
	}
}

// Store is the in-memory record store
type Store struct {
	mu  sync.RWMutex
	seq uint64
	now func() time.Time

	users          map[string]*models.User
	defaultUserID  string
	platforms      map[string]*models.Platform
	jobs           map[string]*models.Job
	transactions   map[string]*models.Transaction
	activityLogs   []*models.ActivityLog
	insertionOrder map[string]uint64

	settings SettingsStore
	seedDemo bool
}

// NewStore creates a store holding only the default user
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:            time.Now,
		users:          make(map[string]*models.User),
		platforms:      make(map[string]*models.Platform),
		jobs:           make(map[string]*models.Job),
		transactions:   make(map[string]*models.Transaction),
		insertionOrder: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.settings == nil {
		s.settings = NewMemorySettingsStore(s.now)
	}

	user := s.insertUserLocked(&models.User{Username: DefaultUsername, Password: "demo"})
	s.defaultUserID = user.ID

	if s.seedDemo {
		seedDemoData(s)
	}
	return s
}

// Now returns the store's current time
func (s *Store) Now() time.Time {
	return s.now()
}

func (s *Store) newIDLocked() string {
	id := uuid.New().String()
	s.seq++
	s.insertionOrder[id] = s.seq
	return id
}

// newerFirst orders records most recent first, breaking createdAt ties by
// insertion order
func (s *Store) newerFirst(aID string, aAt time.Time, bID string, bAt time.Time) bool {
	if !aAt.Equal(bAt) {
		return aAt.After(bAt)
	}
	return s.insertionOrder[aID] > s.insertionOrder[bID]
}

func sortJobs(s *Store, jobs []*models.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return s.newerFirst(jobs[i].ID, jobs[i].CreatedAt, jobs[j].ID, jobs[j].CreatedAt)
	})
}

func sortTransactions(s *Store, txs []*models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return s.newerFirst(txs[i].ID, txs[i].CreatedAt, txs[j].ID, txs[j].CreatedAt)
	})
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
