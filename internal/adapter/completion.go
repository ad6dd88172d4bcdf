// Package adapter holds clients for the external services the dashboard can
// call: an AI completion API that solves jobs and a payment provider.
// Both are optional; callers receive nil when a capability is not configured.
package adapter

import "context"

// CompletionClient solves job payloads with an external AI model.
// Each call is a single attempt; failures are returned, never retried.
type CompletionClient interface {
	// SolveImageCaptcha reads the characters or answer shown in a CAPTCHA image
	SolveImageCaptcha(ctx context.Context, imageURL string) (string, error)
	// SolveTextCaptcha answers a text CAPTCHA such as a math question
	SolveTextCaptcha(ctx context.Context, text string) (string, error)
	// TranscribeImage returns all text visible in an image
	TranscribeImage(ctx context.Context, imageURL string) (string, error)
	// ConvertTextFormat rewrites text into the requested format
	ConvertTextFormat(ctx context.Context, text, format string) (string, error)
}

// Prompts sent with each operation
const (
	promptImageCaptcha = "You solve CAPTCHA images. Reply with only the characters or answer shown in the image, with no explanation."
	promptTextCaptcha  = "You solve text CAPTCHAs such as simple math or word puzzles. Reply with only the answer, with no explanation."
	promptTranscribe   = "You are a data-entry assistant. Transcribe all text visible in the image exactly as written, preserving line breaks."
	promptConvert      = "You are a data-entry assistant. Convert the user's text into the requested format. Reply with only the converted text."
)
