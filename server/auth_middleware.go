package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUsername stores the username carried by a verified API token
const ContextKeyUsername ContextKey = "username"

// RequireAuth is middleware that validates a Bearer token issued by
// POST /api/login and injects its username into the request context.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Missing Authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Invalid Authorization header format"})
			return
		}

		username, err := s.deps.Issuer.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			log.Debug().Err(err).Msg("Rejected API token")
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUsername, username)
		next(w, r.WithContext(ctx))
	}
}

// UsernameFromContext returns the username set by RequireAuth.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(ContextKeyUsername).(string)
	return username, ok && username != ""
}

// MeHandler echoes the owner of the presented token (GET /api/me).
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, ok := UsernameFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Invalid token"})
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Username string `json:"username"`
		}{Username: username})
	}
}
