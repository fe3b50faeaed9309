package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spectrack/spectrack-go/internal/jobs"
)

// handleGetJobsStatus reports the state of every background job.
func (s *Server) handleGetJobsStatus(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.jobs.Statuses())
}

// handleRunJob triggers a background job by ID.
func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	err := s.jobs.RunJob(jobID)
	if errors.Is(err, jobs.ErrJobAlreadyRunning) {
		RespondWithError(w, http.StatusConflict, "Job is already running")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "Unknown job")
		return
	}
	RespondWithJSON(w, http.StatusAccepted, map[string]string{"message": "Job started"})
}
