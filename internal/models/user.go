// Package models provides data models for the job dashboard.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents the account that earns from jobs and requests withdrawals
type User struct {
	ID            string          `json:"id"`
	Username      string          `json:"username"`
	Password      string          `json:"-"`
	Balance       decimal.Decimal `json:"balance"`
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// UserPatch carries the user fields that may change outside the ledger
type UserPatch struct {
	Username *string
	Password *string
}
