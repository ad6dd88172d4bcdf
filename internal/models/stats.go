package models

import "github.com/shopspring/decimal"

// DashboardStats is the read-only dashboard summary, computed per request
type DashboardStats struct {
	Balance            decimal.Decimal `json:"balance"`
	TotalEarnings      decimal.Decimal `json:"totalEarnings"`
	JobsCompletedToday int             `json:"jobsCompletedToday"`
	SuccessRate        float64         `json:"successRate"`
	PendingWithdrawals decimal.Decimal `json:"pendingWithdrawals"`
}
