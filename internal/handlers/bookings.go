package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"backstage/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateBooking - POST /api/bookings
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.services.Bookings.Create(c.Request.Context(), actor(c), &req)
	if err != nil {
		slog.Error("Failed to create booking", "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListBookings - GET /api/bookings
// Returns bookings where the caller is organizer or counterparty.
func (h *Handlers) ListBookings(c *gin.Context) {
	bookings, err := h.services.Bookings.List(c.Request.Context(), actor(c))
	if err != nil {
		slog.Error("Failed to list bookings", "error", err)
		writeError(c, err)
		return
	}

	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, bookings)
}

// GetBooking - GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	booking, err := h.services.Bookings.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// AcceptBooking - PATCH /api/bookings/:id/accept
func (h *Handlers) AcceptBooking(c *gin.Context) {
	h.transition(c, models.ActionAccept)
}

// DeclineBooking - PATCH /api/bookings/:id/decline
func (h *Handlers) DeclineBooking(c *gin.Context) {
	h.transition(c, models.ActionDecline)
}

// PayBooking - PATCH /api/bookings/:id/pay
func (h *Handlers) PayBooking(c *gin.Context) {
	h.transition(c, models.ActionPay)
}

// CompleteBooking - PATCH /api/bookings/:id/complete
func (h *Handlers) CompleteBooking(c *gin.Context) {
	h.transition(c, models.ActionComplete)
}

// CancelBooking - PATCH /api/bookings/:id/cancel
func (h *Handlers) CancelBooking(c *gin.Context) {
	h.transition(c, models.ActionCancel)
}

func (h *Handlers) transition(c *gin.Context, action models.BookingAction) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	// Body is optional for actions that need no extra fields.
	var req models.TransitionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	req.BookingID = id

	booking, err := h.services.Bookings.Transition(c.Request.Context(), actor(c), action, &req)
	if err != nil {
		slog.Error("Booking transition failed",
			"error", err,
			"booking_id", id,
			"action", string(action))
		writeError(c, err)
		return
	}

	h.invalidateBookingWallets(c, booking)
	c.JSON(http.StatusOK, booking)
}

// invalidateBookingWallets drops cached wallet snapshots for both parties
// after a transition that may have moved money.
func (h *Handlers) invalidateBookingWallets(c *gin.Context, booking *models.Booking) {
	if h.valkeyClient == nil {
		return
	}
	if err := h.valkeyClient.InvalidateWallets(c.Request.Context(),
		booking.OrganizerID, booking.CounterpartyID); err != nil {
		slog.Warn("Failed to invalidate wallet cache", "error", err, "booking_id", booking.ID)
	}
}
