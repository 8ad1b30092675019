package api

import (
	"net/http"
	"strconv"

	"github.com/event-gallery-api/internal/models"
	"github.com/event-gallery-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// BlessingHandler handles guestbook endpoints
type BlessingHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewBlessingHandler creates a new BlessingHandler
func NewBlessingHandler(services *service.Services, log zerolog.Logger) *BlessingHandler {
	return &BlessingHandler{
		services: services,
		log:      log.With().Str("handler", "blessing").Logger(),
	}
}

// ListApproved handles GET /v1/events/:id/blessings?q=
func (h *BlessingHandler) ListApproved(c *gin.Context) {
	eventID := c.Param("id")
	blessings, err := h.services.Query.ListApprovedBlessings(c.Request.Context(), eventID, c.Query("q"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event_id": eventID, "blessings": blessings, "count": len(blessings)})
}

// Submit handles POST /v1/events/:id/blessings. Any status in the body is
// ignored.
func (h *BlessingHandler) Submit(c *gin.Context) {
	var in models.BlessingSubmission
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	blessing, err := h.services.Moderation.SubmitBlessing(c.Request.Context(), c.Param("id"), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, blessing)
}

// Recent handles GET /v1/blessings/recent?limit=
func (h *BlessingHandler) Recent(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, h.log, models.NewValidationError("limit", "must be a non-negative integer", raw))
			return
		}
		limit = n
	}

	blessings, err := h.services.Query.RecentBlessings(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blessings": blessings, "count": len(blessings)})
}

// AdminList handles GET /v1/admin/blessings?event_id=
func (h *BlessingHandler) AdminList(c *gin.Context) {
	buckets, err := h.services.Query.AdminBlessings(c.Request.Context(), c.Query("event_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// SetStatus handles PATCH /v1/admin/blessings/:id/status
func (h *BlessingHandler) SetStatus(c *gin.Context) {
	var req models.BlessingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}

	blessing, err := h.services.Moderation.SetBlessingStatus(c.Request.Context(), c.Param("id"), models.BlessingStatus(req.Status))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, blessing)
}

// Delete handles DELETE /v1/admin/blessings/:id
func (h *BlessingHandler) Delete(c *gin.Context) {
	if err := h.services.Moderation.DeleteBlessing(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
