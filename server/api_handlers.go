package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"path"

	"github.com/rs/zerolog/log"

	apperrors "github.com/shanebasham/artstore/internal/errors"
	"github.com/shanebasham/artstore/mail"
	"github.com/shanebasham/artstore/metrics"
)

const contentTypeJSON = "application/json"

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /api/login on success.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type emailResponse struct {
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LoginAPIHandler checks the fixed API credentials and issues a signed token
// valid for the configured expiry (POST /api/login).
func (s *Server) LoginAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// An unreadable body carries no credentials.
			req = LoginRequest{}
		}

		if err := s.deps.APIUsers.Check(req.Username, req.Password); err != nil {
			metrics.RecordLogin("api", metrics.ResultRejected)
			if errors.Is(err, apperrors.ErrMissingField) {
				writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Username and password required"})
				return
			}
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Invalid username or password"})
			return
		}

		token, err := s.deps.Issuer.Issue(req.Username)
		if err != nil {
			metrics.RecordLogin("api", metrics.ResultError)
			log.Err(err).Str("username", req.Username).Msg("Failed to issue token")
			writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Login failed"})
			return
		}

		metrics.RecordLogin("api", metrics.ResultSuccess)
		writeJSON(w, http.StatusOK, LoginResponse{Token: token, Username: req.Username})
	}
}

// SendEmailHandler relays a contact form message to the site owner
// (POST /api/send-email).
func (s *Server) SendEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg mail.Message
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			msg = mail.Message{}
		}

		if err := msg.Validate(); err != nil {
			metrics.RecordEmail(metrics.ResultRejected)
			writeJSON(w, http.StatusBadRequest, emailResponse{Error: "Missing required fields."})
			return
		}

		if err := s.deps.Relay.Send(r.Context(), msg); err != nil {
			metrics.RecordEmail(metrics.ResultError)
			log.Err(err).Str("from", msg.Email).Msg("Email failed")
			writeJSON(w, http.StatusInternalServerError, emailResponse{Error: "Failed to send email."})
			return
		}

		metrics.RecordEmail(metrics.ResultSuccess)
		writeJSON(w, http.StatusOK, emailResponse{Success: "Email sent successfully!"})
	}
}

// CatalogFileHandler serves artworks.json and alerts.json from the catalog source.
func (s *Server) CatalogFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := path.Join("json", path.Base(r.URL.Path))
		if err := streamFrom(w, s.deps.CatalogFS, name); err != nil {
			logError(r.Method, r.URL.Path, err.Error())
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
		}
	}
}

// HealthHandler reports that the process is serving (GET /health).
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to write JSON response")
	}
}
