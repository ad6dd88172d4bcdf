package api

import (
	"net/http"
	"strconv"

	apperrors "github.com/captcha-dashboard/internal/errors"
	"github.com/captcha-dashboard/internal/service"
	"github.com/captcha-dashboard/internal/validation"
)

// handleListActivityLogs handles GET /api/activity-logs?limit=N (default 50)
func (s *Server) handleListActivityLogs(w http.ResponseWriter, r *http.Request) {
	limit := service.DefaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondServiceError(w, r, apperrors.NewInvalidParameterError("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	logs, err := s.services.Activity.ListActivityLogs(r.Context(), limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, logs)
}

type autoProcessResponse struct {
	Enabled bool `json:"enabled"`
}

// handleGetAutoProcess handles GET /api/settings/auto-process
func (s *Server) handleGetAutoProcess(w http.ResponseWriter, r *http.Request) {
	enabled, err := s.services.Settings.GetAutoProcess(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, autoProcessResponse{Enabled: enabled})
}

// handleSetAutoProcess handles POST /api/settings/auto-process {enabled: bool}
func (s *Server) handleSetAutoProcess(w http.ResponseWriter, r *http.Request) {
	var req service.AutoProcessSetting
	if err := parseJSONBody(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}
	if err := validation.Validate(&req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	enabled, err := s.services.Settings.SetAutoProcess(r.Context(), *req.Enabled)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, autoProcessResponse{Enabled: enabled})
}
