package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/spectrack/spectrack-go/internal/models"
)

// handleListRuns returns the run history, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	runs, err := s.store.ListRuns(page, perPage)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	if runs == nil {
		runs = []*models.TrackingRun{}
	}
	RespondWithJSON(w, http.StatusOK, runs)
}

// handleGetRun returns one run record.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.runFromURL(w, r)
	if !ok {
		return
	}
	RespondWithJSON(w, http.StatusOK, run)
}

// handleGetRunLogs returns one run's log as plain text.
func (s *Server) handleGetRunLogs(w http.ResponseWriter, r *http.Request) {
	run, ok := s.runFromURL(w, r)
	if !ok {
		return
	}
	logText, err := s.store.GetRunLog(run.ID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read logs")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(logText))
}

// handleGetRunResults returns one run's result rows.
func (s *Server) handleGetRunResults(w http.ResponseWriter, r *http.Request) {
	run, ok := s.runFromURL(w, r)
	if !ok {
		return
	}
	rows, err := s.store.GetResultsByRun(run.ID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read results")
		return
	}
	RespondWithJSON(w, http.StatusOK, rows)
}

func (s *Server) runFromURL(w http.ResponseWriter, r *http.Request) (*models.TrackingRun, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "runID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid run ID")
		return nil, false
	}
	run, err := s.store.GetRun(id)
	if errors.Is(err, sql.ErrNoRows) {
		RespondWithError(w, http.StatusNotFound, "Run not found")
		return nil, false
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read run")
		return nil, false
	}
	return run, true
}
