package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/shanebasham/artstore/catalog"
	apperrors "github.com/shanebasham/artstore/internal/errors"
)

// GalleryPageData renders the artwork grid of the gallery and the shop.
type GalleryPageData struct {
	PageData
	Title string
	Cards []catalog.Card
}

// ArtworkPageData renders the details page of one artwork.
type ArtworkPageData struct {
	PageData
	Card     catalog.Card
	NotFound string
}

// GalleryHandler renders the gallery (GET /)
func (s *Server) GalleryHandler() http.HandlerFunc {
	return s.gridHandler("Gallery", catalog.ModeGallery)
}

// ShopHandler renders the shop with print options (GET /shop)
func (s *Server) ShopHandler() http.HandlerFunc {
	return s.gridHandler("Shop", catalog.ModeShop)
}

func (s *Server) gridHandler(title string, mode catalog.Mode) http.HandlerFunc {
	tmpl := mustParseTemplate("gallery.html")

	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := s.pageData(w, r)
		render(w, tmpl, "gallery.html", GalleryPageData{
			PageData: page,
			Title:    title,
			Cards:    catalog.Cards(s.catalog.Artworks, mode),
		})
	}
}

// ArtworkHandler renders one artwork with its purchase options (GET /artwork?art=ID)
func (s *Server) ArtworkHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("artwork.html")

	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := s.pageData(w, r)
		data := ArtworkPageData{PageData: page}

		art, err := s.catalog.Find(r.URL.Query().Get("art"))
		if err != nil {
			data.NotFound = "Artwork not found."
			w.Header().Set("Content-Type", contentTypeHTML)
			w.WriteHeader(http.StatusNotFound)
		} else {
			data.Card = catalog.NewCard(art, catalog.ModeShop)
		}
		render(w, tmpl, "artwork.html", data)
	}
}

// PurchaseHandler stores the selected print and moves on to checkout (POST /purchase)
func (s *Server) PurchaseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ctx := r.Context()
		b := s.browser(w, r)
		back := returnPath(r, RouteShop)

		art, err := s.catalog.Find(r.FormValue("art"))
		if err != nil {
			b.setFlash(ctx, "Artwork not found.")
			redirectSuccess(w, r, back)
			return
		}

		purchase, err := art.Select(r.FormValue("print"))
		if err != nil {
			b.setFlash(ctx, apperrors.UserMessage(err))
			redirectSuccess(w, r, back)
			return
		}

		if err := b.purchases().Save(ctx, purchase); err != nil {
			log.Err(err).Str("artwork", art.ID).Msg("Failed to save pending purchase")
			b.setFlash(ctx, apperrors.UserMessage(err))
			redirectSuccess(w, r, back)
			return
		}
		redirectSuccess(w, r, RouteCheckout)
	}
}
