package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shanebasham/artstore/auth"
	"github.com/shanebasham/artstore/catalog"
	"github.com/shanebasham/artstore/internal/config"
	"github.com/shanebasham/artstore/kvstore"
	"github.com/shanebasham/artstore/mail"
	"github.com/shanebasham/artstore/token"
	"github.com/shanebasham/artstore/users"
)

// Deps are the collaborators the server is built from.
type Deps struct {
	// Durable holds remember-me sessions, accounts and the pending purchase of
	// every browser, scoped by the browser cookie.
	Durable kvstore.Store
	// Ephemeral holds per-tab sessions and modal state, scoped by the tab cookie.
	Ephemeral kvstore.Store

	// Authenticator checks modal logins. Nil selects the local account registry.
	Authenticator auth.Authenticator
	Relay         mail.Relay
	Issuer        *token.Issuer
	APIUsers      auth.APIUsers

	// CatalogFS holds json/artworks.json and json/alerts.json.
	CatalogFS fs.FS
	// ImagesFS serves the artwork images; nil disables /images.
	ImagesFS fs.FS

	NowTime func() time.Time
}

type Server struct {
	env     string
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	deps    Deps
	catalog *catalog.Catalog
	limiter *RateLimiter
	nowTime func() time.Time
}

func New(config config.Config, deps Deps) (*Server, error) {
	if deps.Durable == nil || deps.Ephemeral == nil {
		return nil, errors.New("[Server New] durable and ephemeral stores are required")
	}
	if deps.Relay == nil {
		return nil, errors.New("[Server New] mail relay is required")
	}
	if deps.Issuer == nil {
		return nil, errors.New("[Server New] token issuer is required")
	}
	if deps.CatalogFS == nil {
		deps.CatalogFS = catalog.DefaultFS()
	}
	if deps.NowTime == nil {
		deps.NowTime = time.Now
	}

	c, err := catalog.Load(deps.CatalogFS)
	if err != nil {
		// Sections render empty rather than failing the whole site.
		log.Err(err).Msg("Failed to load catalog")
	}

	s := &Server{
		env:     config.GetEnv(),
		mux:     http.NewServeMux(),
		config:  config,
		deps:    deps,
		catalog: c,
		limiter: NewRateLimiter(config.GetRateLimit(), config.GetRateBurst()),
		nowTime: deps.NowTime,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// authenticator returns the configured credential check, or the local registry
// of the browser's durable store.
func (s *Server) authenticator(registry users.Registry) auth.Authenticator {
	if s.deps.Authenticator != nil {
		return s.deps.Authenticator
	}
	return auth.NewLocalAuthenticator(registry)
}

func (s *Server) logRoutes() {
	if !s.config.IsDev() {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msg(fmt.Sprintf("[%-19s] %s", colouredMethod(method), path))
}

func logError(method, path, error string) {
	log.Error().Msg(fmt.Sprintf("[%-19s] %s %s", colouredMethod(method), path, Red+error+ResetColor))
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
