package api

import (
	"github.com/event-gallery-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ExportHandler handles guestbook export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// ExportBlessings handles GET /v1/admin/events/:id/blessings/export?format=
// Streams every blessing of the event directly to the response
func (h *ExportHandler) ExportBlessings(c *gin.Context) {
	eventID := c.Param("id")

	format := c.Query("format")
	if format == "" {
		format = service.FormatNDJSON // Default to NDJSON for streaming
	}

	h.log.Info().
		Str("event_id", eventID).
		Str("format", format).
		Msg("Starting streaming export")

	if err := h.services.Export.StreamBlessings(c.Request.Context(), c.Writer, eventID, format); err != nil {
		if c.Writer.Written() {
			// Can't return error JSON after streaming has started
			h.log.Error().Err(err).Str("event_id", eventID).Msg("Export failed mid-stream")
			return
		}
		c.Writer.Header().Del("Content-Disposition")
		respondError(c, h.log, err)
	}
}
