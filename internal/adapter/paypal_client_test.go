package adapter

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/captcha-dashboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fakePayPal struct {
	tokenCalls atomic.Int32
	lastOrder  []byte
}

func (f *fakePayPal) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"invalid_client","error_description":"Client Authentication failed"}`)
			return
		}
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		f.tokenCalls.Add(1)
		_, _ = io.WriteString(w, `{"access_token":"A21AA","token_type":"Bearer","expires_in":32400}`)
	})
	mux.HandleFunc("/v1/identity/generate-token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer A21AA", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"client_token":"ctok","expires_in":3600}`)
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		f.lastOrder, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"5O190127TN364715T","status":"CREATED"}`)
	})
	mux.HandleFunc("/v2/checkout/orders/5O190127TN364715T/capture", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"5O190127TN364715T","status":"COMPLETED"}`)
	})
	mux.HandleFunc("/v2/checkout/orders/UNKNOWN/capture", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"name":"RESOURCE_NOT_FOUND"}`)
	})
	return mux
}

func newTestPayPal(t *testing.T, clientID, secret string) (*PayPalClient, *fakePayPal) {
	t.Helper()
	fake := &fakePayPal{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	return newPayPalClient(clientID, secret, srv.URL), fake
}

func TestNewPayPalClient_RequiresBothCredentials(t *testing.T) {
	assert.Nil(t, NewPayPalClient(&config.PayPalConfig{ClientID: "id"}))
	assert.Nil(t, NewPayPalClient(&config.PayPalConfig{ClientSecret: "secret"}))
	assert.NotNil(t, NewPayPalClient(&config.PayPalConfig{ClientID: "id", ClientSecret: "secret"}))
}

func TestPayPalClient_Setup(t *testing.T) {
	client, _ := newTestPayPal(t, "client-id", "secret")

	setup, err := client.Setup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ctok", setup.ClientToken)
}

func TestPayPalClient_CreateAndCaptureOrder(t *testing.T) {
	client, fake := newTestPayPal(t, "client-id", "secret")
	ctx := context.Background()

	created, err := client.CreateOrder(ctx, OrderRequest{Amount: "10.00", Currency: "usd", Intent: "capture"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, created.StatusCode)
	assert.Equal(t, "CREATED", gjson.GetBytes(created.Body, "status").String())
	assert.Equal(t, "CAPTURE", gjson.GetBytes(fake.lastOrder, "intent").String())
	assert.Equal(t, "USD", gjson.GetBytes(fake.lastOrder, "purchase_units.0.amount.currency_code").String())
	assert.Equal(t, "10.00", gjson.GetBytes(fake.lastOrder, "purchase_units.0.amount.value").String())

	captured, err := client.CaptureOrder(ctx, "5O190127TN364715T")
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", gjson.GetBytes(captured.Body, "status").String())

	assert.Equal(t, int32(1), fake.tokenCalls.Load(), "access token is cached across calls")
}

func TestPayPalClient_RelaysClientErrors(t *testing.T) {
	client, _ := newTestPayPal(t, "client-id", "secret")

	resp, err := client.CaptureOrder(context.Background(), "UNKNOWN")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "RESOURCE_NOT_FOUND", gjson.GetBytes(resp.Body, "name").String())
}

func TestPayPalClient_AuthenticationFailure(t *testing.T) {
	client, _ := newTestPayPal(t, "client-id", "wrong")

	_, err := client.Setup(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Client Authentication failed")
}
