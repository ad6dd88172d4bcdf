package api

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/captcha-dashboard/internal/service"
	"github.com/captcha-dashboard/internal/storage"
)

func TestUnknownRoute(t *testing.T) {
	server := createTestServer(t, nil, nil)

	w := server.do(t, "GET", "/api/nothing-here", nil)
	expectStatus(t, w, http.StatusNotFound)
	expectErrorCode(t, w, "NOT_FOUND")

	w = server.do(t, "PUT", "/api/jobs", nil)
	expectStatus(t, w, http.StatusMethodNotAllowed)
}

func TestRequestIDHeader(t *testing.T) {
	server := createTestServer(t, nil, nil)

	w := server.do(t, "GET", "/health", nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a generated X-Request-ID header")
	}

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("Expected X-Request-ID to be echoed, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := createTestServer(t, nil, nil)

	req := httptest.NewRequest("OPTIONS", "/api/withdrawals", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK && w.Code != http.StatusNoContent {
		t.Fatalf("Expected successful preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin '*', got %q", got)
	}
}

func TestGzipResponse(t *testing.T) {
	server := createTestServer(t, nil, nil)

	req := httptest.NewRequest("GET", "/api/withdrawals/methods", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	expectStatus(t, w, http.StatusOK)
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Expected gzip encoding, got %q", w.Header().Get("Content-Encoding"))
	}

	gz, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("Failed to open gzip body: %v", err)
	}
	raw, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("Failed to read gzip body: %v", err)
	}

	var methods []service.WithdrawalMethod
	if err := json.Unmarshal(raw, &methods); err != nil {
		t.Fatalf("Failed to decode methods: %v", err)
	}
	if len(methods) != 4 {
		t.Errorf("Expected 4 methods, got %d", len(methods))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	store := storage.NewStore()
	cfg := testConfig()
	cfg.RequestsPerSecond = 0.001
	cfg.Burst = 2

	server := NewServer(cfg, &Services{Stats: service.NewStatsService(store)})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/api/stats", nil)
		req.RemoteAddr = "10.0.0.7:4312"
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, req)
		codes = append(codes, w.Code)

		if i == 2 && w.Header().Get("Retry-After") == "" {
			t.Error("Expected Retry-After header on limited response")
		}
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected [200 200 429], got %v", codes)
	}

	// a different client has its own bucket
	req := httptest.NewRequest("GET", "/api/stats", nil)
	req.RemoteAddr = "10.0.0.8:4312"
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected other client to pass, got %d", w.Code)
	}
}

func TestRateLimiter_Unlimited(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		if !rl.Allow("client") {
			t.Fatalf("Expected unlimited limiter to allow request %d", i)
		}
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	expectStatus(t, w, http.StatusInternalServerError)
	resp := expectErrorCode(t, w, "INTERNAL_ERROR")
	if resp.text(t) == "boom" {
		t.Error("Panic value must not be returned to the client")
	}
}

func TestParseJSONBody_TooLarge(t *testing.T) {
	server := createTestServer(t, nil, nil)

	big := make([]byte, maxBodyBytes+16)
	for i := range big {
		big[i] = 'a'
	}
	body := `{"name":"` + string(big) + `","apiUrl":"https://x.io"}`

	w := server.do(t, "POST", "/api/platforms", body)
	expectStatus(t, w, http.StatusBadRequest)
}
