package adapter

import (
	"context"
	"encoding/json"
)

// PaymentProvider is the checkout capability exposed on the /paypal routes
type PaymentProvider interface {
	// Setup returns what a browser checkout needs to initialize
	Setup(ctx context.Context) (*CheckoutSetup, error)
	// CreateOrder opens an order and returns the provider's order document
	CreateOrder(ctx context.Context, order OrderRequest) (*ProviderResponse, error)
	// CaptureOrder captures an approved order
	CaptureOrder(ctx context.Context, orderID string) (*ProviderResponse, error)
}

// CheckoutSetup is returned to the client before rendering checkout buttons
type CheckoutSetup struct {
	ClientToken string `json:"clientToken"`
}

// OrderRequest describes a single-unit order
type OrderRequest struct {
	Amount   string `json:"amount" validate:"required,decimal_positive"`
	Currency string `json:"currency" validate:"required,len=3,alpha"`
	Intent   string `json:"intent" validate:"required,oneof=CAPTURE AUTHORIZE capture authorize"`
}

// ProviderResponse relays the provider's JSON document and HTTP status as-is
type ProviderResponse struct {
	StatusCode int
	Body       json.RawMessage
}
