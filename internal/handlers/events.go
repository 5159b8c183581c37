package handlers

import (
	"log/slog"
	"net/http"

	"backstage/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateEvent - POST /api/events
func (h *Handlers) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.services.Events.Create(c.Request.Context(), actor(c), &req)
	if err != nil {
		slog.Error("Failed to create event", "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// ListEvents - GET /api/events
// Returns the caller's own events.
func (h *Handlers) ListEvents(c *gin.Context) {
	events, err := h.services.Events.ListByOrganizer(c.Request.Context(), actor(c).ID)
	if err != nil {
		slog.Error("Failed to list events", "error", err)
		writeError(c, err)
		return
	}

	if events == nil {
		events = []models.Event{}
	}
	c.JSON(http.StatusOK, events)
}
