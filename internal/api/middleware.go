package api

import (
	"context"
	"net/http"

	"github.com/spectrack/spectrack-go/internal/models"
)

type contextKey string

const userContextKey = contextKey("user")

// AuthMiddleware resolves the session cookie to a user and stores it in the
// request context.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session_token")
		if err != nil {
			RespondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		user, err := s.store.GetUserBySessionToken(cookie.Value)
		if err != nil {
			RespondWithError(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnlyMiddleware requires the authenticated user to have the admin
// role. It must run after AuthMiddleware.
func (s *Server) AdminOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromContext(r.Context())
		if !ok || user.Role != "admin" {
			RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}
