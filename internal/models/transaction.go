package models

import (
	"time"

	"github.com/captcha-dashboard/internal/types"
	"github.com/shopspring/decimal"
)

// Transaction represents a ledger entry. Earnings are written when a job
// completes; withdrawals are written from payout requests.
type Transaction struct {
	ID              string                  `json:"id"`
	JobID           *string                 `json:"jobId,omitempty"`
	Type            types.TransactionType   `json:"type"`
	Amount          decimal.Decimal         `json:"amount"`
	Fee             decimal.Decimal         `json:"fee"`
	NetAmount       decimal.Decimal         `json:"netAmount"`
	Status          types.TransactionStatus `json:"status"`
	PaymentMethod   *types.PaymentMethod    `json:"paymentMethod,omitempty"`
	PaymentAddress  *string                 `json:"paymentAddress,omitempty"`
	TransactionHash *string                 `json:"transactionHash,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	CompletedAt     *time.Time              `json:"completedAt,omitempty"`
}

// IsPendingWithdrawal reports whether the entry counts toward pending payouts
func (t *Transaction) IsPendingWithdrawal() bool {
	return t.Type == types.TransactionWithdrawal && t.Status == types.TransactionPending
}

// TransactionPatch carries the settlement fields that may change after creation
type TransactionPatch struct {
	Status          *types.TransactionStatus
	TransactionHash *string
}
