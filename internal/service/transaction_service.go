package service

import (
	"context"

	"github.com/captcha-dashboard/internal/models"
	"github.com/captcha-dashboard/internal/storage"
)

// TransactionService reads the ledger
type TransactionService struct {
	store *storage.Store
}

// NewTransactionService creates a new transaction service
func NewTransactionService(store *storage.Store) *TransactionService {
	return &TransactionService{store: store}
}

// ListTransactions returns every ledger entry, newest first
func (s *TransactionService) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, storeError(err, "transaction", "")
	}
	return txs, nil
}

// GetTransaction returns a single ledger entry
func (s *TransactionService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, storeError(err, "transaction", id)
	}
	return tx, nil
}
