package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/captcha-dashboard/internal/circuitbreaker"
	"github.com/captcha-dashboard/internal/config"
	"github.com/captcha-dashboard/internal/logging"
	"github.com/tidwall/gjson"
)

const maxCompletionTokens = 1024

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
}

var _ CompletionClient = (*OpenAIClient)(nil)

// NewOpenAIClient creates a completion client. It returns nil when no API
// key is configured so callers can treat the capability as absent.
func NewOpenAIClient(cfg *config.CompletionConfig) *OpenAIClient {
	if !cfg.Enabled() {
		return nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &OpenAIClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("completion")),
	}
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

// SolveImageCaptcha reads the answer from a CAPTCHA image
func (c *OpenAIClient) SolveImageCaptcha(ctx context.Context, imageURL string) (string, error) {
	return c.complete(ctx, "solve_image_captcha", promptImageCaptcha, imageMessage("Solve this CAPTCHA.", imageURL))
}

// SolveTextCaptcha answers a text CAPTCHA
func (c *OpenAIClient) SolveTextCaptcha(ctx context.Context, text string) (string, error) {
	return c.complete(ctx, "solve_text_captcha", promptTextCaptcha, chatMessage{Role: "user", Content: text})
}

// TranscribeImage returns the text visible in an image
func (c *OpenAIClient) TranscribeImage(ctx context.Context, imageURL string) (string, error) {
	return c.complete(ctx, "transcribe_image", promptTranscribe, imageMessage("Transcribe this image.", imageURL))
}

// ConvertTextFormat rewrites text into format
func (c *OpenAIClient) ConvertTextFormat(ctx context.Context, text, format string) (string, error) {
	msg := chatMessage{
		Role:    "user",
		Content: fmt.Sprintf("Target format: %s\n\nText:\n%s", format, text),
	}
	return c.complete(ctx, "convert_text_format", promptConvert, msg)
}

func imageMessage(instruction, url string) chatMessage {
	return chatMessage{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: instruction},
			{Type: "image_url", ImageURL: &imageURL{URL: url}},
		},
	}
}

func (c *OpenAIClient) complete(ctx context.Context, operation, system string, user chatMessage) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:     c.model,
		Messages:  []chatMessage{{Role: "system", Content: system}, user},
		MaxTokens: maxCompletionTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	start := time.Now()
	var answer string
	err = c.breaker.Execute(ctx, func() error {
		body, err := c.doRequest(ctx, payload)
		if err != nil {
			return err
		}
		answer, err = parseCompletion(body)
		return err
	})

	logger := logging.FromContext(ctx).WithFields(map[string]interface{}{
		"operation": operation,
		"model":     c.model,
		"duration":  time.Since(start).String(),
	})
	if err != nil {
		logger.WithError(err).Warn("Completion request failed")
		return "", err
	}
	logger.Debug("Completion request succeeded")
	return answer, nil
}

// doRequest performs one POST to /chat/completions
func (c *OpenAIClient) doRequest(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if msg := gjson.GetBytes(body, "error.message"); msg.Exists() && msg.String() != "" {
			return nil, fmt.Errorf("completion API error (%d): %s", resp.StatusCode, msg.String())
		}
		return nil, fmt.Errorf("completion API error: HTTP %d", resp.StatusCode)
	}

	return body, nil
}

// parseCompletion extracts the first choice's message text
func parseCompletion(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("completion API returned invalid JSON")
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return "", fmt.Errorf("completion API returned no choices")
	}

	answer := strings.TrimSpace(content.String())
	if answer == "" {
		return "", fmt.Errorf("completion API returned an empty answer")
	}
	return answer, nil
}
