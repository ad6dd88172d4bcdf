package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	// Set some test environment variables
	if err := os.Setenv("SERVER_PORT", "9090"); err != nil {
		t.Fatalf("Failed to set SERVER_PORT: %v", err)
	}
	if err := os.Setenv("SEED_DEMO_DATA", "false"); err != nil {
		t.Fatalf("Failed to set SEED_DEMO_DATA: %v", err)
	}
	if err := os.Setenv("COMPLETION_TIMEOUT", "30s"); err != nil {
		t.Fatalf("Failed to set COMPLETION_TIMEOUT: %v", err)
	}
	if err := os.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://dash.example.com"); err != nil {
		t.Fatalf("Failed to set CORS_ALLOWED_ORIGINS: %v", err)
	}
	defer func() {
		_ = os.Unsetenv("SERVER_PORT")
		_ = os.Unsetenv("SEED_DEMO_DATA")
		_ = os.Unsetenv("COMPLETION_TIMEOUT")
		_ = os.Unsetenv("CORS_ALLOWED_ORIGINS")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %v, want %v", cfg.Server.Port, "9090")
	}

	if cfg.Store.SeedDemoData {
		t.Errorf("Store.SeedDemoData = true, want false")
	}

	if cfg.Completion.Timeout != 30*time.Second {
		t.Errorf("Completion.Timeout = %v, want %v", cfg.Completion.Timeout, 30*time.Second)
	}

	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://dash.example.com" {
		t.Errorf("CORS.AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadConfig_OptionalCapabilitiesDisabledByDefault(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("PAYPAL_CLIENT_ID", "")
	t.Setenv("PAYPAL_CLIENT_SECRET", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Completion.Enabled() {
		t.Error("Completion.Enabled() = true without an API key")
	}
	if cfg.PayPal.Enabled() {
		t.Error("PayPal.Enabled() = true without credentials")
	}
	if cfg.Redis.Enabled() {
		t.Error("Redis.Enabled() = true without a URL")
	}
	if cfg.Server.Port != "5000" {
		t.Errorf("Server.Port = %v, want 5000", cfg.Server.Port)
	}
	if cfg.Completion.Model != "gpt-4o" {
		t.Errorf("Completion.Model = %v, want gpt-4o", cfg.Completion.Model)
	}
}

func TestPayPalConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfg         PayPalConfig
		wantEnabled bool
		wantURL     string
	}{
		{
			name:        "sandbox with both credentials",
			cfg:         PayPalConfig{ClientID: "id", ClientSecret: "secret", Environment: "sandbox"},
			wantEnabled: true,
			wantURL:     "https://api-m.sandbox.paypal.com",
		},
		{
			name:        "live environment",
			cfg:         PayPalConfig{ClientID: "id", ClientSecret: "secret", Environment: "live"},
			wantEnabled: true,
			wantURL:     "https://api-m.paypal.com",
		},
		{
			name:        "missing secret disables the provider",
			cfg:         PayPalConfig{ClientID: "id"},
			wantEnabled: false,
			wantURL:     "https://api-m.sandbox.paypal.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Enabled(); got != tt.wantEnabled {
				t.Errorf("Enabled() = %v, want %v", got, tt.wantEnabled)
			}
			if got := tt.cfg.BaseURL(); got != tt.wantURL {
				t.Errorf("BaseURL() = %v, want %v", got, tt.wantURL)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_KEY",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when environment variable not set",
			key:          "NONEXISTENT_KEY",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		want         int
	}{
		{"returns integer when valid", "TEST_INT", 100, "200", 200},
		{"returns default when invalid", "TEST_INT_INVALID", 100, "invalid", 100},
		{"returns default when not set", "TEST_INT_NOTSET", 100, "", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue bool
		envValue     string
		want         bool
	}{
		{"parses true", "TEST_BOOL", false, "true", true},
		{"parses 0 as false", "TEST_BOOL_ZERO", true, "0", false},
		{"returns default when invalid", "TEST_BOOL_INVALID", true, "maybe", true},
		{"returns default when not set", "TEST_BOOL_NOTSET", true, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsBool(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue time.Duration
		envValue     string
		want         time.Duration
	}{
		{"returns duration when valid", "TEST_DURATION", 10 * time.Second, "30s", 30 * time.Second},
		{"returns default when invalid", "TEST_DURATION_INVALID", 10 * time.Second, "invalid", 10 * time.Second},
		{"returns default when not set", "TEST_DURATION_NOTSET", 10 * time.Second, "", 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsDuration(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("TEST_LIST", " a, ,b ")

	got := getEnvAsList("TEST_LIST", []string{"x"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("getEnvAsList() = %v, want [a b]", got)
	}

	t.Setenv("TEST_LIST_EMPTY", " , ")
	got = getEnvAsList("TEST_LIST_EMPTY", []string{"x"})
	if len(got) != 1 || got[0] != "x" {
		t.Errorf("getEnvAsList() = %v, want [x]", got)
	}
}
