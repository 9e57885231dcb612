package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"

	apperrors "github.com/shanebasham/artstore/internal/errors"
)

// RemoteConfig configures the login API client.
type RemoteConfig struct {
	URL     string
	Timeout time.Duration

	// Consecutive transport failures before the breaker opens
	MaxFailures uint32
	// How long the breaker stays open before letting a trial request through
	OpenTimeout time.Duration
}

// RemoteAuthenticator posts credentials to the login API. Requests are sent
// once; a run of transport failures opens a circuit breaker that fails fast
// with ErrNetworkFailure until the API recovers.
type RemoteAuthenticator struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[Result]
}

var _ Authenticator = (*RemoteAuthenticator)(nil)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the body of a successful login API call.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// ErrorResponse is the body of a failed login API call.
type ErrorResponse struct {
	Message string `json:"message"`
}

func NewRemoteAuthenticator(cfg RemoteConfig) *RemoteAuthenticator {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	return &RemoteAuthenticator{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[Result](gobreaker.Settings{
			Name:    "login-api",
			Timeout: cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			// Rejected credentials are answers, not outages.
			IsSuccessful: func(err error) bool {
				return err == nil || !isOutage(err)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
			},
		}),
	}
}

func isOutage(err error) bool {
	return errors.Is(err, apperrors.ErrNetworkFailure) || errors.Is(err, apperrors.ErrMalformedResponse)
}

func (a *RemoteAuthenticator) Authenticate(ctx context.Context, identifier, password string) (Result, error) {
	result, err := a.breaker.Execute(func() (Result, error) {
		return a.login(ctx, identifier, password)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Result{}, fmt.Errorf("login api unavailable: %w: %v", apperrors.ErrNetworkFailure, err)
	}
	return result, err
}

func (a *RemoteAuthenticator) login(ctx context.Context, identifier, password string) (Result, error) {
	body, err := json.Marshal(loginRequest{Username: identifier, Password: password})
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("send request: %w: %v", apperrors.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w: %v", apperrors.ErrNetworkFailure, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return Result{}, fmt.Errorf("%s: %w", errorMessage(respBody), apperrors.ErrMissingField)
	case http.StatusUnauthorized:
		return Result{}, fmt.Errorf("%s: %w", errorMessage(respBody), apperrors.ErrInvalidCredential)
	default:
		return Result{}, fmt.Errorf("request failed: %s: %w", resp.Status, apperrors.ErrNetworkFailure)
	}

	var result LoginResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Result{}, fmt.Errorf("unmarshal response: %w: %v", apperrors.ErrMalformedResponse, err)
	}
	if result.Token == "" {
		return Result{}, fmt.Errorf("response has no token: %w", apperrors.ErrMalformedResponse)
	}

	name := result.Username
	if name == "" {
		name = identifier
	}
	return Result{Token: result.Token, DisplayName: name}, nil
}

func errorMessage(body []byte) string {
	var e ErrorResponse
	if err := json.Unmarshal(body, &e); err != nil || e.Message == "" {
		return "login rejected"
	}
	return e.Message
}
