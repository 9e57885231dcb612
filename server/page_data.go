package server

import (
	"net/http"

	"github.com/shanebasham/artstore/auth"
	"github.com/shanebasham/artstore/catalog"
)

// PageData is shared by every page and by the header and footer partials.
type PageData struct {
	AppName string
	Path    string // current page, posted back as "return" by the modal forms
	Auth    auth.View
	Flash   string
	Alerts  []catalog.Alert
	Year    int
}

// pageData restores the login state of the browsing context and collects the
// banner messages for a page render.
func (s *Server) pageData(w http.ResponseWriter, r *http.Request) (PageData, browserContext) {
	ctx := r.Context()
	b := s.browser(w, r)
	_, view := s.flow(ctx, b)
	now := s.nowTime()

	return PageData{
		AppName: s.config.GetAppName(),
		Path:    localPath(r.URL.RequestURI()),
		Auth:    view,
		Flash:   b.takeFlash(ctx),
		Alerts:  catalog.ActiveAlerts(s.catalog.Alerts, now),
		Year:    now.Year(),
	}, b
}

// PartialHandler renders the shared header or footer on its own.
func (s *Server) PartialHandler(name string) http.HandlerFunc {
	tmpl := mustParsePartials()

	return func(w http.ResponseWriter, r *http.Request) {
		data, _ := s.pageData(w, r)
		render(w, tmpl, name, data)
	}
}
