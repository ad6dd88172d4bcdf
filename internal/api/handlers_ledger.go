package api

import (
	"net/http"

	"github.com/captcha-dashboard/internal/service"
	"github.com/gorilla/mux"
)

// handleGetStats handles GET /api/stats
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.services.Stats.GetDashboardStats(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// handleGetUser handles GET /api/user - the account owning the balance
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.services.Users.GetCurrentUser(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// handleListTransactions handles GET /api/transactions
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.services.Transactions.ListTransactions(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, txs)
}

// handleGetTransaction handles GET /api/transactions/{id}
func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.services.Transactions.GetTransaction(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tx)
}

// handleListWithdrawalMethods handles GET /api/withdrawals/methods
func (s *Server) handleListWithdrawalMethods(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.services.Withdrawals.ListWithdrawalMethods())
}

// handleCreateWithdrawal handles POST /api/withdrawals
func (s *Server) handleCreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req service.WithdrawalRequest
	if err := parseJSONBody(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	tx, err := s.services.Withdrawals.RequestWithdrawal(r.Context(), &req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, tx)
}
