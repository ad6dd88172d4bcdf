package storage

import (
	"context"

	"github.com/captcha-dashboard/internal/models"
	"github.com/captcha-dashboard/internal/types"
	"github.com/shopspring/decimal"
)

func cloneTransaction(t *models.Transaction) *models.Transaction {
	c := *t
	c.JobID = cloneString(t.JobID)
	c.PaymentAddress = cloneString(t.PaymentAddress)
	c.TransactionHash = cloneString(t.TransactionHash)
	c.CompletedAt = cloneTime(t.CompletedAt)
	if t.PaymentMethod != nil {
		m := *t.PaymentMethod
		c.PaymentMethod = &m
	}
	return &c
}

func (s *Store) insertTransactionLocked(tx *models.Transaction) *models.Transaction {
	t := cloneTransaction(tx)
	t.ID = s.newIDLocked()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	s.transactions[t.ID] = t
	return t
}

// GetTransaction retrieves a transaction by ID
func (s *Store) GetTransaction(_ context.Context, id string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTransaction(t), nil
}

// ListTransactions returns all transactions, most recent first
func (s *Store) ListTransactions(_ context.Context) ([]*models.Transaction, error) {
	return s.filterTransactions(func(*models.Transaction) bool { return true }), nil
}

// ListPendingWithdrawals returns withdrawals awaiting settlement, most recent first
func (s *Store) ListPendingWithdrawals(_ context.Context) ([]*models.Transaction, error) {
	return s.filterTransactions((*models.Transaction).IsPendingWithdrawal), nil
}

func (s *Store) filterTransactions(keep func(*models.Transaction) bool) []*models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if keep(t) {
			out = append(out, cloneTransaction(t))
		}
	}
	sortTransactions(s, out)
	return out
}

// UpdateTransaction changes settlement fields. Amounts are fixed at creation
// so the balance never drifts from the ledger.
func (s *Store) UpdateTransaction(_ context.Context, id string, patch models.TransactionPatch) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Status != nil {
		t.Status = *patch.Status
		if t.Status == types.TransactionCompleted && t.CompletedAt == nil {
			now := s.now()
			t.CompletedAt = &now
		}
	}
	if patch.TransactionHash != nil {
		t.TransactionHash = cloneString(patch.TransactionHash)
	}
	return cloneTransaction(t), nil
}

// CreditEarning appends a completed earning for jobID and adds amount to the
// user's balance and total earnings
func (s *Store) CreditEarning(_ context.Context, userID, jobID string, amount decimal.Decimal) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.creditEarningLocked(userID, jobID, amount)
}

func (s *Store) creditEarningLocked(userID, jobID string, amount decimal.Decimal) (*models.Transaction, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}

	now := s.now()
	t := s.insertTransactionLocked(&models.Transaction{
		JobID:       &jobID,
		Type:        types.TransactionEarning,
		Amount:      amount,
		Fee:         decimal.Zero,
		NetAmount:   amount,
		Status:      types.TransactionCompleted,
		CreatedAt:   now,
		CompletedAt: &now,
	})

	u.Balance = u.Balance.Add(amount)
	u.TotalEarnings = u.TotalEarnings.Add(amount)
	return cloneTransaction(t), nil
}

// DebitWithdrawal appends a pending withdrawal and subtracts its amount from
// the user's balance. The balance check and the debit happen under one lock;
// on ErrInsufficientBalance nothing is written.
func (s *Store) DebitWithdrawal(_ context.Context, userID string, tx *models.Transaction) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if tx.Amount.GreaterThan(u.Balance) {
		return nil, ErrInsufficientBalance
	}

	w := cloneTransaction(tx)
	w.Type = types.TransactionWithdrawal
	w.Status = types.TransactionPending
	w.CompletedAt = nil
	w.CreatedAt = s.now()
	t := s.insertTransactionLocked(w)

	u.Balance = u.Balance.Sub(t.Amount)
	return cloneTransaction(t), nil
}
