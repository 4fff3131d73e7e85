package handlers

// HandlerBundle groups the endpoint handlers and the settings routes need.
type HandlerBundle struct {
	Booking *BookingHandler
	Admin   *AdminHandler
	Catalog *CatalogHandler

	// JWTSecret guards the booking routes when set.
	JWTSecret  string
	AdminToken string
	// MaxRequestsPerMin feeds the per-IP rate limiter.
	MaxRequestsPerMin int
}
