package handlers

import (
	"net/http"

	"homeserve/models"
	"homeserve/services/booking"
	"homeserve/services/ledger"
	"homeserve/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves the homeowner and provider booking endpoints.
type BookingHandler struct {
	BookingSvc  booking.BookingService
	MatchingSvc booking.MatchingService
	RatingSvc   ledger.RatingAggregator
}

func NewBookingHandler(bs booking.BookingService, ms booking.MatchingService, rs ledger.RatingAggregator) *BookingHandler {
	return &BookingHandler{BookingSvc: bs, MatchingSvc: ms, RatingSvc: rs}
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var input models.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if input.HomeownerID == "" {
		input.HomeownerID = c.GetString("userId")
	}

	created, err := h.BookingSvc.CreateBooking(c.Request.Context(), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.BookingSvc.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListForHomeowner handles GET /api/bookings/homeowner/:homeownerId.
func (h *BookingHandler) ListForHomeowner(c *gin.Context) {
	bookings, err := h.BookingSvc.ListBookingsForHomeowner(c.Request.Context(), c.Param("homeownerId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// ListForProvider handles GET /api/bookings/provider/:providerId.
func (h *BookingHandler) ListForProvider(c *gin.Context) {
	bookings, err := h.MatchingSvc.ListBookingsForProvider(c.Request.Context(), c.Param("providerId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

type acceptRequest struct {
	ProviderID string `json:"providerId"`
}

// AcceptBooking handles PUT /api/bookings/:id/accept.
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	var req acceptRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
	}
	if req.ProviderID == "" {
		req.ProviderID = c.GetString("userId")
	}

	b, err := h.BookingSvc.AcceptBooking(c.Request.Context(), c.Param("id"), req.ProviderID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("Booking accepted", zap.String("bookingId", b.ID), zap.String("providerId", b.ProviderID))
	c.JSON(http.StatusOK, b)
}

type statusRequest struct {
	// Transition and Status are alternatives; Transition wins when both are set.
	Transition string `json:"transition"`
	Status     string `json:"status"`
	ProviderID string `json:"providerId"`
}

// UpdateStatus handles PUT /api/bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	op := req.Transition
	if op == "" {
		op = req.Status
	}
	transition, err := booking.ParseTransition(op)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if req.ProviderID == "" {
		req.ProviderID = c.GetString("userId")
	}

	b, err := h.BookingSvc.UpdateStatus(c.Request.Context(), c.Param("id"), booking.StatusRequest{
		Transition: transition,
		ProviderID: req.ProviderID,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking updated", "booking": b})
}

// CancelBooking handles PUT /api/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	b, err := h.BookingSvc.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled", "booking": b})
}

// RateBooking handles POST /api/bookings/rate.
func (h *BookingHandler) RateBooking(c *gin.Context) {
	var input models.RatingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	summary, err := h.RatingSvc.RateBooking(c.Request.Context(), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
