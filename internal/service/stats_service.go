package service

import (
	"context"

	"github.com/captcha-dashboard/internal/models"
	"github.com/captcha-dashboard/internal/storage"
	"github.com/shopspring/decimal"
)

// StatsService computes the dashboard summary. Nothing is cached; every call
// scans the store's current contents.
type StatsService struct {
	store *storage.Store
}

// NewStatsService creates a new stats service
func NewStatsService(store *storage.Store) *StatsService {
	return &StatsService{store: store}
}

// GetDashboardStats returns balance, total earnings, jobs completed today,
// the all-time success rate and the sum of pending withdrawals
func (s *StatsService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	user, err := s.store.DefaultUser(ctx)
	if err != nil {
		return nil, storeError(err, "user", storage.DefaultUsername)
	}

	today, err := s.store.ListJobsCompletedToday(ctx, s.store.Now())
	if err != nil {
		return nil, storeError(err, "job", "")
	}

	pending, err := s.store.ListPendingWithdrawals(ctx)
	if err != nil {
		return nil, storeError(err, "transaction", "")
	}
	pendingTotal := decimal.Zero
	for _, tx := range pending {
		pendingTotal = pendingTotal.Add(tx.Amount)
	}

	completed, total := s.store.JobCounts(ctx)

	return &models.DashboardStats{
		Balance:            user.Balance,
		TotalEarnings:      user.TotalEarnings,
		JobsCompletedToday: len(today),
		SuccessRate:        storage.SuccessRate(completed, total),
		PendingWithdrawals: pendingTotal,
	}, nil
}
