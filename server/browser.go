package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/shanebasham/artstore/auth"
	"github.com/shanebasham/artstore/checkout"
	"github.com/shanebasham/artstore/kvstore"
	"github.com/shanebasham/artstore/sessions"
	"github.com/shanebasham/artstore/users"
)

const (
	// browserCookieName identifies the browser's durable storage. It outlives
	// the browser session.
	browserCookieName = "artstore_browser"
	// tabCookieName identifies the per-session storage. It has no expiry, so it
	// ends with the browser session.
	tabCookieName = "artstore_tab"

	// keyFlash holds a one-shot banner message in the tab store.
	keyFlash = "flash"
)

// browserContext is the storage of the browsing context a request came from.
type browserContext struct {
	durable   kvstore.Store
	ephemeral kvstore.Store
}

// browser returns the scoped stores of the requesting browser, issuing new ids
// when the cookies are missing.
func (s *Server) browser(w http.ResponseWriter, r *http.Request) browserContext {
	browserID := s.ensureCookie(w, r, browserCookieName, int(s.config.GetBrowserCookieMaxAge().Seconds()))
	tabID := s.ensureCookie(w, r, tabCookieName, 0)
	return browserContext{
		durable:   kvstore.NewScoped(s.deps.Durable, "browser:"+browserID),
		ephemeral: kvstore.NewScoped(s.deps.Ephemeral, "tab:"+tabID),
	}
}

func (s *Server) ensureCookie(w http.ResponseWriter, r *http.Request, name string, maxAge int) string {
	if cookie, err := r.Cookie(name); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return cookie.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
	// Later reads in this request see the new id.
	r.AddCookie(&http.Cookie{Name: name, Value: id})
	return id
}

func (b browserContext) sessions() *sessions.Store {
	return sessions.NewStore(b.durable, b.ephemeral)
}

func (b browserContext) registry() *users.StoreRegistry {
	return users.NewStoreRegistry(b.durable)
}

func (b browserContext) purchases() *checkout.PurchaseStore {
	return checkout.NewPurchaseStore(b.durable)
}

// flow builds the login state machine of the browser and restores it.
func (s *Server) flow(ctx context.Context, b browserContext) (*auth.Flow, auth.View) {
	registry := b.registry()
	f := auth.NewFlow(auth.Deps{
		Sessions:      b.sessions(),
		Registry:      registry,
		Authenticator: s.authenticator(registry),
		Ephemeral:     b.ephemeral,
	})
	view, err := f.Restore(ctx)
	if err != nil {
		log.Err(err).Msg("Failed to restore login state")
	}
	return f, view
}

func (b browserContext) setFlash(ctx context.Context, message string) {
	if err := b.ephemeral.Set(ctx, keyFlash, message); err != nil {
		log.Err(err).Msg("Failed to store flash message")
	}
}

// takeFlash returns and clears the pending banner message.
func (b browserContext) takeFlash(ctx context.Context) string {
	message, err := b.ephemeral.Get(ctx, keyFlash)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			log.Err(err).Msg("Failed to read flash message")
		}
		return ""
	}
	if err := b.ephemeral.Remove(ctx, keyFlash); err != nil {
		log.Err(err).Msg("Failed to clear flash message")
	}
	return message
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// returnPath is the local page to go back to after a form post: the "return"
// form value, then a same-host Referer, then fallback.
func returnPath(r *http.Request, fallback string) string {
	if p := localPath(r.FormValue("return")); p != "" {
		return p
	}
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Host == r.Host {
		if p := localPath(ref.RequestURI()); p != "" {
			return p
		}
	}
	return fallback
}

// localPath returns raw if it is a path on this host, or "". Browsers read a
// backslash as a slash, so "/\host" counts as a network path.
func localPath(raw string) string {
	if raw == "" || strings.Contains(raw, "\\") {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return ""
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") || strings.Contains(u.Path, "\\") {
		return ""
	}
	if u.RawQuery != "" {
		return u.EscapedPath() + "?" + u.RawQuery
	}
	return u.EscapedPath()
}
