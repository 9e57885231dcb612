package server

import (
	"net/http"
	"strings"

	"github.com/shanebasham/artstore/metrics"
)

func (s *Server) initRoutes() {
	// Pages
	s.RegisterRouteHandler("GET "+RouteGallery+"{$}", ChainMiddleware(s.GalleryHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteShop, ChainMiddleware(s.ShopHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteArtwork, ChainMiddleware(s.ArtworkHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RoutePurchase, ChainMiddleware(s.PurchaseHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteCheckout, ChainMiddleware(s.CheckoutPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteCheckout, ChainMiddleware(s.CheckoutSubmitHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteCheckoutSuccess, ChainMiddleware(s.CheckoutSuccessHandler(), s.HTMLMiddleWare()...))

	// LOGIN MODAL
	s.RegisterRouteHandler("POST "+RouteAuthEvent, ChainMiddleware(s.AuthEventHandler(), s.HTMLMiddleWare(s.RateLimitMiddleware)...))

	s.RegisterRouteHandler("GET "+RoutePartialHeader, ChainMiddleware(s.PartialHandler("header"), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RoutePartialFooter, ChainMiddleware(s.PartialHandler("footer"), s.HTMLMiddleWare()...))

	// API routes
	s.RegisterRouteHandler("POST "+RouteAPILogin, ChainMiddleware(s.LoginAPIHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPISendEmail, ChainMiddleware(s.SendEmailHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireAuth)...))
	s.RegisterRouteHandler("OPTIONS /api/{endpoint}", ChainMiddleware(s.preflightHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteArtworksJSON, ChainMiddleware(s.CatalogFileHandler(), s.HTMLMiddleWare(s.CacheMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteAlertsJSON, ChainMiddleware(s.CatalogFileHandler(), s.HTMLMiddleWare(s.CacheMiddleware)...))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, metrics.Handler())

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.HTMLMiddleWare(s.CacheMiddleware, s.CompressionMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), s.HTMLMiddleWare(s.CacheMiddleware, s.CompressionMiddleware)...))
	if s.deps.ImagesFS != nil {
		s.RegisterRouteHandler("GET "+RouteImages, ChainMiddleware(s.imageHandler(), s.HTMLMiddleWare(s.CacheMiddleware)...))
	}
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		err := StreamFile(w, r, filePath)
		if err != nil {
			logError("GET", filePath, err.Error())
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}

func (s *Server) imageHandler() http.HandlerFunc {
	fileServer := http.StripPrefix("/images/", http.FileServer(http.FS(s.deps.ImagesFS)))
	return fileServer.ServeHTTP
}

func (s *Server) preflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}
