package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/captcha-dashboard/internal/circuitbreaker"
	"github.com/captcha-dashboard/internal/config"
	"github.com/captcha-dashboard/internal/logging"
	"github.com/tidwall/gjson"
)

// Refresh the access token this long before PayPal expires it
const tokenExpiryMargin = 60 * time.Second

// PayPalClient calls the PayPal REST API (Orders v2)
type PayPalClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	client       *http.Client
	breaker      *circuitbreaker.CircuitBreaker
	now          func() time.Time

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

var _ PaymentProvider = (*PayPalClient)(nil)

// NewPayPalClient creates a PayPal client, or nil when credentials are missing
func NewPayPalClient(cfg *config.PayPalConfig) *PayPalClient {
	if !cfg.Enabled() {
		return nil
	}
	return newPayPalClient(cfg.ClientID, cfg.ClientSecret, cfg.BaseURL())
}

func newPayPalClient(clientID, clientSecret, baseURL string) *PayPalClient {
	return &PayPalClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       &http.Client{Timeout: 30 * time.Second},
		breaker:      circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("paypal")),
		now:          time.Now,
	}
}

// Setup generates a client token for the browser SDK
func (c *PayPalClient) Setup(ctx context.Context) (*CheckoutSetup, error) {
	resp, err := c.call(ctx, http.MethodPost, "/v1/identity/generate-token", nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("paypal generate-token failed: HTTP %d", resp.StatusCode)
	}
	token := gjson.GetBytes(resp.Body, "client_token").String()
	if token == "" {
		return nil, fmt.Errorf("paypal returned no client token")
	}
	return &CheckoutSetup{ClientToken: token}, nil
}

// CreateOrder opens an order for the given amount
func (c *PayPalClient) CreateOrder(ctx context.Context, order OrderRequest) (*ProviderResponse, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"intent": strings.ToUpper(order.Intent),
		"purchase_units": []map[string]interface{}{
			{"amount": map[string]string{
				"currency_code": strings.ToUpper(order.Currency),
				"value":         order.Amount,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}
	return c.call(ctx, http.MethodPost, "/v2/checkout/orders", payload)
}

// CaptureOrder captures payment for an approved order
func (c *PayPalClient) CaptureOrder(ctx context.Context, orderID string) (*ProviderResponse, error) {
	return c.call(ctx, http.MethodPost, "/v2/checkout/orders/"+url.PathEscape(orderID)+"/capture", nil)
}

// call sends an authorized request. 4xx answers are relayed to the caller;
// transport errors and 5xx answers count against the breaker.
func (c *PayPalClient) call(ctx context.Context, method, path string, payload []byte) (*ProviderResponse, error) {
	var out *ProviderResponse
	err := c.breaker.Execute(ctx, func() error {
		token, err := c.token(ctx)
		if err != nil {
			return err
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")

		status, respBody, err := c.do(req)
		if err != nil {
			return err
		}
		if status >= 500 {
			return fmt.Errorf("paypal API error: HTTP %d", status)
		}
		out = &ProviderResponse{StatusCode: status, Body: respBody}
		return nil
	})
	if err != nil {
		logging.FromContext(ctx).WithFields(map[string]interface{}{
			"provider": "paypal",
			"path":     path,
		}).WithError(err).Warn("Payment provider request failed")
		return nil, err
	}
	return out, nil
}

// token returns a cached OAuth access token, fetching a new one when needed
func (c *PayPalClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, body, err := c.do(req)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		if desc := gjson.GetBytes(body, "error_description").String(); desc != "" {
			return "", fmt.Errorf("paypal authentication failed (%d): %s", status, desc)
		}
		return "", fmt.Errorf("paypal authentication failed: HTTP %d", status)
	}

	token := gjson.GetBytes(body, "access_token").String()
	if token == "" {
		return "", fmt.Errorf("paypal returned no access token")
	}
	ttl := time.Duration(gjson.GetBytes(body, "expires_in").Int()) * time.Second

	c.accessToken = token
	c.expiresAt = c.now().Add(ttl - tokenExpiryMargin)
	return token, nil
}

func (c *PayPalClient) do(req *http.Request) (int, json.RawMessage, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("paypal request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	return resp.StatusCode, body, nil
}
