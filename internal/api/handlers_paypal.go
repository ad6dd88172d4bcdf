package api

import (
	"net/http"

	"github.com/captcha-dashboard/internal/adapter"
	"github.com/captcha-dashboard/internal/circuitbreaker"
	apperrors "github.com/captcha-dashboard/internal/errors"
	"github.com/captcha-dashboard/internal/validation"
	"github.com/gorilla/mux"
)

// handlePayPalSetup handles GET /paypal/setup
func (s *Server) handlePayPalSetup(w http.ResponseWriter, r *http.Request) {
	setup, err := s.services.Payments.Setup(r.Context())
	if err != nil {
		respondPaymentError(w, r, "failed to initialize checkout", err)
		return
	}

	respondJSON(w, http.StatusOK, setup)
}

// handlePayPalCreateOrder handles POST /paypal/order
func (s *Server) handlePayPalCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req adapter.OrderRequest
	if err := parseJSONBody(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}
	if err := validation.Validate(&req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	resp, err := s.services.Payments.CreateOrder(r.Context(), req)
	if err != nil {
		respondPaymentError(w, r, "failed to create order", err)
		return
	}

	relayProviderResponse(w, resp)
}

// handlePayPalCaptureOrder handles POST /paypal/order/{orderID}/capture
func (s *Server) handlePayPalCaptureOrder(w http.ResponseWriter, r *http.Request) {
	resp, err := s.services.Payments.CaptureOrder(r.Context(), mux.Vars(r)["orderID"])
	if err != nil {
		respondPaymentError(w, r, "failed to capture order", err)
		return
	}

	relayProviderResponse(w, resp)
}

// relayProviderResponse passes the provider's status and document through
func relayProviderResponse(w http.ResponseWriter, resp *adapter.ProviderResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

func respondPaymentError(w http.ResponseWriter, r *http.Request, message string, err error) {
	if circuitbreaker.IsOpen(err) {
		respondServiceError(w, r, apperrors.NewServiceUnavailableError("paypal"))
		return
	}
	respondServiceError(w, r, apperrors.NewInternalError(message, err))
}
