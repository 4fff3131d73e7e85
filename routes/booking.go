package routes

import (
	"homeserve/handlers"
	"homeserve/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers all endpoints for the booking lifecycle.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	booking := r.Group("/api/bookings")
	{
		booking.Use(middleware.JWTAuthMiddleware(hb.JWTSecret))
		booking.POST("", hb.Booking.CreateBooking)
		booking.POST("/rate", hb.Booking.RateBooking)
		booking.GET("/homeowner/:homeownerId", hb.Booking.ListForHomeowner)
		booking.GET("/provider/:providerId", hb.Booking.ListForProvider)
		booking.GET("/:id", hb.Booking.GetBooking)
		booking.PUT("/:id/accept", hb.Booking.AcceptBooking)
		booking.PUT("/:id/status", hb.Booking.UpdateStatus)
		booking.PUT("/:id/cancel", hb.Booking.CancelBooking)
	}
}
