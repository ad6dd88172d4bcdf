package api

import (
	"net/http"

	"github.com/captcha-dashboard/internal/service"
	"github.com/gorilla/mux"
)

// handleListPlatforms handles GET /api/platforms
func (s *Server) handleListPlatforms(w http.ResponseWriter, r *http.Request) {
	platforms, err := s.services.Platforms.ListPlatforms(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, platforms)
}

// handleCreatePlatform handles POST /api/platforms
func (s *Server) handleCreatePlatform(w http.ResponseWriter, r *http.Request) {
	var req service.CreatePlatformRequest
	if err := parseJSONBody(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	platform, err := s.services.Platforms.CreatePlatform(r.Context(), &req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, platform)
}

// handleGetPlatform handles GET /api/platforms/{id}
func (s *Server) handleGetPlatform(w http.ResponseWriter, r *http.Request) {
	platform, err := s.services.Platforms.GetPlatform(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, platform)
}

// handleUpdatePlatform handles PATCH /api/platforms/{id}
func (s *Server) handleUpdatePlatform(w http.ResponseWriter, r *http.Request) {
	var req service.UpdatePlatformRequest
	if err := parseJSONBody(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	platform, err := s.services.Platforms.UpdatePlatform(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, platform)
}

// handleDeletePlatform handles DELETE /api/platforms/{id}
func (s *Server) handleDeletePlatform(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Platforms.DeletePlatform(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
