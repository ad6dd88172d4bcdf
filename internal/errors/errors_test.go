package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/captcha-dashboard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *CategorizedError
		want int
	}{
		{"validation", NewValidationError("bad", nil), http.StatusBadRequest},
		{"invalid parameter", NewInvalidParameterError("amount", "must be positive"), http.StatusBadRequest},
		{"insufficient balance", NewInsufficientBalanceError("10", "5"), http.StatusBadRequest},
		{"not found", NewNotFoundError("job", "abc"), http.StatusNotFound},
		{"conflict", NewConflictError("busy"), http.StatusConflict},
		{"rate limit", NewRateLimitError(5), http.StatusTooManyRequests},
		{"invalid job data", NewInvalidJobDataError(types.JobTypeTyping, "no payload"), http.StatusInternalServerError},
		{"processing failure", NewProcessingFailureError("abc", fmt.Errorf("timeout")), http.StatusInternalServerError},
		{"internal", NewInternalError("boom", nil), http.StatusInternalServerError},
		{"unavailable", NewServiceUnavailableError("completion"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode)
			assert.Equal(t, tt.want, GetHTTPStatusCode(tt.err))
		})
	}
}

func TestCategorize_WrappedCategorizedError(t *testing.T) {
	inner := NewNotFoundError("platform", "p1")
	wrapped := fmt.Errorf("delete failed: %w", inner)

	got := Categorize(wrapped)
	require.NotNil(t, got)
	assert.Same(t, inner, got)
	assert.True(t, IsNotFound(wrapped))
	assert.True(t, IsUserError(wrapped))
	assert.False(t, IsSystemError(wrapped))
}

func TestCategorize_ServiceError(t *testing.T) {
	got := Categorize(&types.ServiceError{Code: CodeConflict, Message: "already processing"})
	require.NotNil(t, got)
	assert.Equal(t, http.StatusConflict, got.StatusCode)
	assert.Equal(t, CategoryConflict, got.Category)
}

func TestCategorize_UnknownError(t *testing.T) {
	cause := stderrors.New("disk on fire")
	got := Categorize(cause)

	require.NotNil(t, got)
	assert.Equal(t, CategorySystem, got.Category)
	assert.Equal(t, http.StatusInternalServerError, got.StatusCode)
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, Categorize(nil))
}

func TestProcessingFailureKeepsCauseMessage(t *testing.T) {
	err := NewProcessingFailureError("job-1", stderrors.New("model refused the image"))
	assert.Equal(t, "model refused the image", err.Message)
	assert.Equal(t, "job-1", err.Details["jobId"])
}

func TestValidationErrorFields(t *testing.T) {
	err := NewValidationError("invalid request", []FieldError{{Field: "amount", Tag: "required", Message: "amount is required"}})
	fields, ok := err.Details["fields"].([]FieldError)
	require.True(t, ok)
	assert.Len(t, fields, 1)
	assert.Equal(t, "amount", fields[0].Field)
}
