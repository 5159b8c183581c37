package handlers

import (
	"log/slog"
	"net/http"

	"backstage/internal/models"

	"github.com/gin-gonic/gin"
)

// PaymentNotification - POST /api/payments/notifications
// Payment gateway webhook. A confirmed capture drives the pay transition; a
// failed one is acknowledged and the booking stays accepted.
func (h *Handlers) PaymentNotification(c *gin.Context) {
	var payload models.PaymentNotificationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Bookings.HandlePaymentNotification(c.Request.Context(), &payload); err != nil {
		slog.Error("Failed to handle payment notification",
			"error", err,
			"reference", payload.Reference,
			"booking_id", payload.BookingID)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
