package api

import (
	"net/http"

	"github.com/event-gallery-api/internal/models"
	"github.com/event-gallery-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// MediaHandler handles gallery media endpoints
type MediaHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(services *service.Services, log zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		services: services,
		log:      log.With().Str("handler", "media").Logger(),
	}
}

// ListPublic handles GET /v1/events/:id/media
func (h *MediaHandler) ListPublic(c *gin.Context) {
	eventID := c.Param("id")
	items, err := h.services.Query.ListPublicMedia(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event_id": eventID, "media": items, "count": len(items)})
}

// AdminList handles GET /v1/admin/media?event_id=
func (h *MediaHandler) AdminList(c *gin.Context) {
	buckets, err := h.services.Query.AdminMedia(c.Request.Context(), c.Query("event_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// Create handles POST /v1/admin/media
func (h *MediaHandler) Create(c *gin.Context) {
	var in models.MediaInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	media, err := h.services.Moderation.CreateMedia(c.Request.Context(), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, media)
}

// Update handles PUT /v1/admin/media/:id
func (h *MediaHandler) Update(c *gin.Context) {
	var in models.MediaInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	media, err := h.services.Moderation.UpdateMedia(c.Request.Context(), c.Param("id"), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, media)
}

// ToggleVisibility handles POST /v1/admin/media/:id/toggle-visibility
func (h *MediaHandler) ToggleVisibility(c *gin.Context) {
	media, err := h.services.Moderation.ToggleMediaVisibility(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, media)
}

// Delete handles DELETE /v1/admin/media/:id
func (h *MediaHandler) Delete(c *gin.Context) {
	if err := h.services.Moderation.DeleteMedia(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
