package api

import (
	"net/http"

	"github.com/captcha-dashboard/internal/service"
	"github.com/gorilla/mux"
)

// handleListJobs handles GET /api/jobs[?status=] - newest first
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.services.Jobs.ListJobs(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, jobs)
}

// handleCreateJob handles POST /api/jobs
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req service.CreateJobRequest
	if err := parseJSONBody(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	job, err := s.services.Jobs.CreateJob(r.Context(), &req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, job)
}

// handleGetJob handles GET /api/jobs/{id}
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.services.Jobs.GetJob(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// handleDeleteJob handles DELETE /api/jobs/{id} - 404 when the job is absent
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Jobs.DeleteJob(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleProcessJob handles POST /api/jobs/{id}/process
//
// 404 missing job, 503 no completion backend, 409 already processing or
// completed, 500 with the failure message when the solve fails.
func (s *Server) handleProcessJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.services.Jobs.ProcessJob(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}
