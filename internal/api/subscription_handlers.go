package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/spectrack/spectrack-go/internal/models"
	"github.com/spectrack/spectrack-go/internal/tracker"
)

// handleListSubscriptions returns all subscribed spec numbers.
func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.store.ListSubscriptions()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list subscriptions")
		return
	}
	if subs == nil {
		subs = []*models.Subscription{}
	}
	RespondWithJSON(w, http.StatusOK, subs)
}

// handleCreateSubscription subscribes a spec number to scheduled tracking.
func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SpecNumber string `json:"spec_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	payload.SpecNumber = strings.TrimSpace(payload.SpecNumber)
	if payload.SpecNumber == "" {
		RespondWithError(w, http.StatusBadRequest, "Spec number is required")
		return
	}

	sub, err := s.store.CreateSubscription(payload.SpecNumber)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to create subscription")
		return
	}
	RespondWithJSON(w, http.StatusCreated, sub)
}

// handleRecheckSubscription triggers an immediate tracking run for one
// subscription.
func (s *Server) handleRecheckSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "subID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid subscription ID")
		return
	}
	sub, err := s.store.GetSubscription(id)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read subscription")
		return
	}
	if sub == nil {
		RespondWithError(w, http.StatusNotFound, "Subscription not found")
		return
	}

	if _, err := s.tracker.Start(sub.SpecNumber); err != nil {
		if errors.Is(err, tracker.ErrRunInProgress) {
			RespondWithError(w, http.StatusConflict, "A tracking run is already in progress")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Failed to start tracking")
		return
	}
	RespondWithJSON(w, http.StatusAccepted, map[string]string{"message": "Tracking started"})
}

// handleDeleteSubscription removes a subscription.
func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "subID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid subscription ID")
		return
	}
	if err := s.store.DeleteSubscription(id); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to delete subscription")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
