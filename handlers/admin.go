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

// AdminHandler encapsulates elevated admin-level operations.
type AdminHandler struct {
	BookingSvc booking.BookingService
	Ledger     ledger.EarningsLedger
	// ReconcileBatch caps one manual reconciliation run.
	ReconcileBatch int
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bs booking.BookingService, l ledger.EarningsLedger, reconcileBatch int) *AdminHandler {
	return &AdminHandler{BookingSvc: bs, Ledger: l, ReconcileBatch: reconcileBatch}
}

// DeleteBooking handles DELETE /api/admin/bookings/:id.
func (ah *AdminHandler) DeleteBooking(c *gin.Context) {
	id := c.Param("id")
	if err := ah.BookingSvc.DeleteBooking(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("Admin deleted booking", zap.String("bookingId", id))
	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted"})
}

// AddEarning handles POST /api/admin/earnings.
func (ah *AdminHandler) AddEarning(c *gin.Context) {
	var input models.EarningInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	b, err := ah.Ledger.AddEarning(c.Request.Context(), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Earning recorded", "booking": b})
}

// ReconcileEarnings handles POST /api/admin/earnings/reconcile.
func (ah *AdminHandler) ReconcileEarnings(c *gin.Context) {
	resumed, err := ah.Ledger.Reconcile(c.Request.Context(), ah.ReconcileBatch)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resumed": resumed})
}
