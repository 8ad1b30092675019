package api

import (
	"net/http"

	"github.com/event-gallery-api/internal/models"
	"github.com/event-gallery-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// EventHandler handles event endpoints
type EventHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(services *service.Services, log zerolog.Logger) *EventHandler {
	return &EventHandler{
		services: services,
		log:      log.With().Str("handler", "event").Logger(),
	}
}

// ListPublished handles GET /v1/events
func (h *EventHandler) ListPublished(c *gin.Context) {
	events, err := h.services.Query.ListPublishedEvents(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// GetPublished handles GET /v1/events/:id
func (h *EventHandler) GetPublished(c *gin.Context) {
	event, err := h.services.Query.GetPublishedEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// AdminList handles GET /v1/admin/events
func (h *EventHandler) AdminList(c *gin.Context) {
	buckets, err := h.services.Query.AdminEvents(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// Create handles POST /v1/admin/events
func (h *EventHandler) Create(c *gin.Context) {
	var in models.EventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	event, err := h.services.Moderation.CreateEvent(c.Request.Context(), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// Update handles PUT /v1/admin/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	var in models.EventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	event, err := h.services.Moderation.UpdateEvent(c.Request.Context(), c.Param("id"), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// SetStatus handles PATCH /v1/admin/events/:id/status
func (h *EventHandler) SetStatus(c *gin.Context) {
	var req models.EventStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}

	event, err := h.services.Moderation.SetEventStatus(c.Request.Context(), c.Param("id"), models.EventStatus(req.Status))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// Delete handles DELETE /v1/admin/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.services.Moderation.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats handles GET /v1/admin/stats
func (h *EventHandler) Stats(c *gin.Context) {
	stats, err := h.services.Query.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
