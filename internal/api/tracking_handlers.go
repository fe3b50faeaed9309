package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/spectrack/spectrack-go/internal/export"
	"github.com/spectrack/spectrack-go/internal/models"
	"github.com/spectrack/spectrack-go/internal/tracker"
)

// handleStartTracking kicks off a tracking run for the posted spec number.
func (s *Server) handleStartTracking(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SpecNumber string `json:"spec_number"`
	}
	// An empty body falls through to the spec-number check, which produces
	// the friendlier error.
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err := s.tracker.Start(payload.SpecNumber)
	if errors.Is(err, tracker.ErrSpecRequired) {
		RespondWithError(w, http.StatusBadRequest, "Spec number is required")
		return
	}
	if errors.Is(err, tracker.ErrRunInProgress) {
		RespondWithError(w, http.StatusConflict, "A tracking run is already in progress")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to start tracking")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Tracking started"})
}

// handleProgress reports the latest run's progress percentage.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetLatestRun()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read progress")
		return
	}
	progress := 0
	if run != nil {
		progress = run.Progress
	}
	RespondWithJSON(w, http.StatusOK, map[string]int{"progress": progress})
}

// handleLogs returns the latest run's log as plain text.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetLatestRun()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read logs")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if run == nil {
		return
	}
	logText, err := s.store.GetRunLog(run.ID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read logs")
		return
	}
	w.Write([]byte(logText))
}

// handleResults returns the latest run's results as a JSON array.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	rows, err := s.latestResults()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read results")
		return
	}
	RespondWithJSON(w, http.StatusOK, rows)
}

// handleExport streams the latest run's results as an Excel workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.latestResults()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read results")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="3gpp_results.xlsx"`)
	if err := export.WriteResultsTo(w, "Results", rows); err != nil {
		// Headers are already out; all that is left is logging via the
		// request logger middleware.
		return
	}
}

func (s *Server) latestResults() ([]models.ResultRow, error) {
	run, err := s.store.GetLatestRun()
	if err != nil {
		return nil, err
	}
	if run == nil {
		return []models.ResultRow{}, nil
	}
	return s.store.GetResultsByRun(run.ID)
}
