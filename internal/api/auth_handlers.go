package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/spectrack/spectrack-go/internal/auth"
)

const sessionDuration = 7 * 24 * time.Hour

// handleLogin verifies credentials and issues a session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.store.GetUserByUsername(creds.Username)
	if err != nil || !auth.CheckPasswordHash(creds.Password, user.PasswordHash) {
		RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	expiresAt := time.Now().Add(sessionDuration)
	if err := s.store.CreateSession(token, user.ID, expiresAt); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	RespondWithJSON(w, http.StatusOK, user)
}

// handleLogout deletes the session and clears the cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("session_token"); err == nil {
		s.store.DeleteSession(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// handleMe returns the authenticated user.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	RespondWithJSON(w, http.StatusOK, user)
}
