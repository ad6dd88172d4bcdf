package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/captcha-dashboard/internal/errors"
	"github.com/captcha-dashboard/internal/logging"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every error reply. Error is the message, or
// the field error list for a failed validation, in which case Message keeps
// the summary. Details carries any remaining context.
type ErrorResponse struct {
	Error   interface{}            `json:"error"`
	Code    string                 `json:"code"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{Error: message, Code: code, Details: details}
	if fields, ok := details["fields"]; ok && code == apperrors.CodeValidation {
		response.Error = fields
		response.Message = message
		response.Details = withoutKey(details, "fields")
	}

	_ = json.NewEncoder(w).Encode(response)
}

func withoutKey(m map[string]interface{}, key string) map[string]interface{} {
	if len(m) <= 1 {
		return nil
	}
	out := make(map[string]interface{}, len(m)-1)
	for k, v := range m {
		if k != key {
			out[k] = v
		}
	}
	return out
}

// respondServiceError renders any error returned by a service. System errors
// are logged with their cause and answered with a generic message.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	catErr := apperrors.Categorize(err)

	if catErr.Category == apperrors.CategorySystem {
		logging.FromContext(r.Context()).WithFields(map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("Request failed")
		respondError(w, catErr.StatusCode, catErr.Code, "An internal error occurred", nil)
		return
	}

	respondError(w, catErr.StatusCode, catErr.Code, catErr.Message, catErr.Details)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// parseJSONBody parses a JSON request body, rejecting unknown fields and
// trailing data. The returned error is already categorized as a 400.
func parseJSONBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperrors.NewValidationError("request body is required", nil)
		case errors.As(err, &syntaxErr):
			return apperrors.NewValidationError(fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset), nil)
		case errors.As(err, &typeErr):
			return apperrors.NewValidationError("invalid request body", []apperrors.FieldError{
				{Field: typeErr.Field, Tag: "type", Message: fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type)},
			})
		case errors.As(err, &maxErr):
			return apperrors.NewValidationError("request body too large", nil)
		}
		return apperrors.NewValidationError("invalid request body: "+err.Error(), nil)
	}

	if decoder.More() {
		return apperrors.NewValidationError("request body must contain a single JSON object", nil)
	}
	return nil
}
