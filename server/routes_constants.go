package server

// Route path constants
const (
	// Pages
	RouteGallery         = "/"
	RouteShop            = "/shop"
	RouteArtwork         = "/artwork"
	RoutePurchase        = "/purchase"
	RouteCheckout        = "/checkout"
	RouteCheckoutSuccess = "/checkout/success"

	// Login modal events, one route per auth.Event
	RouteAuthEvent = "/auth/{event}"

	// Shared fragments
	RoutePartialHeader = "/partials/header.html"
	RoutePartialFooter = "/partials/footer.html"

	// API Routes
	RouteAPILogin     = "/api/login"
	RouteAPISendEmail = "/api/send-email"
	RouteAPIMe        = "/api/me"

	// Catalog data
	RouteArtworksJSON = "/json/artworks.json"
	RouteAlertsJSON   = "/json/alerts.json"

	// Operations
	RouteHealth  = "/health"
	RouteMetrics = "/metrics"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
	RouteImages    = "/images/{file}"
)
