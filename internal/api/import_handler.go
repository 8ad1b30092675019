package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/event-gallery-api/internal/models"
	"github.com/event-gallery-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ImportHandler handles folder ingestion endpoints
type ImportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(services *service.Services, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		services: services,
		log:      log.With().Str("handler", "import").Logger(),
	}
}

type folderRequest struct {
	FolderID string `json:"folder_id" binding:"required"`
}

// IngestFolder handles POST /v1/admin/events/:id/ingest?commit=
// Without commit=true the candidates are only previewed.
func (h *ImportHandler) IngestFolder(c *gin.Context) {
	var req folderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "folder_id is required")
		return
	}

	commit := false
	if raw := c.Query("commit"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, h.log, models.NewValidationError("commit", "must be a boolean", raw))
			return
		}
		commit = v
	}

	ctx := c.Request.Context()
	eventID := c.Param("id")

	var (
		result *models.IngestResult
		err    error
	)
	if commit {
		result, err = h.services.Ingestion.ImportFolder(ctx, eventID, req.FolderID)
	} else {
		result, err = h.services.Ingestion.PreviewFolder(ctx, eventID, req.FolderID)
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	code := http.StatusOK
	if commit {
		code = http.StatusCreated
	}
	c.JSON(code, result)
}

// CreateEventFromFolder handles POST /v1/admin/events/from-folder
func (h *ImportHandler) CreateEventFromFolder(c *gin.Context) {
	var req models.FolderEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "date and folder_id are required")
		return
	}

	event, result, err := h.services.Ingestion.CreateEventFromFolder(c.Request.Context(), &req)
	if err != nil {
		if event == nil {
			respondError(c, h.log, err)
			return
		}
		// the draft exists, only the import failed
		code, msg := statusFor(err)
		h.log.Warn().Err(err).Str("event_id", event.ID).Msg("Event created but folder import failed")
		c.JSON(code, gin.H{"error": msg, "event": event})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"event": event, "ingest": result})
}

// CreateImport handles POST /v1/admin/imports
// A repeated Idempotency-Key returns the existing job with 200
func (h *ImportHandler) CreateImport(c *gin.Context) {
	var req models.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "event_id and folder_id are required")
		return
	}
	req.IdempotencyKey = c.GetHeader("Idempotency-Key")

	job, existing, err := h.services.Ingestion.CreateImportJob(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if existing {
		c.JSON(http.StatusOK, job)
		return
	}

	h.log.Info().
		Str("job_id", job.ID).
		Str("event_id", job.EventID).
		Str("folder_id", job.FolderID).
		Msg("Import job created")

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":   job.ID,
		"status":   job.Status,
		"event_id": job.EventID,
		"message":  "Import job created and queued for processing",
	})
}

// GetImportStatus handles GET /v1/admin/imports/:job_id
func (h *ImportHandler) GetImportStatus(c *gin.Context) {
	job, err := h.services.Job.GetJob(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// GetImportSkipped handles GET /v1/admin/imports/:job_id/skipped?format=
func (h *ImportHandler) GetImportSkipped(c *gin.Context) {
	jobID := c.Param("job_id")

	skips, err := h.services.Job.GetJobSkips(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if c.Query("format") == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=skipped_%s.csv", jobID))
		writer := csv.NewWriter(c.Writer)
		writer.Write([]string{"file_id", "file_name", "mime_type", "reason"})
		for _, s := range skips {
			writer.Write([]string{s.FileID, s.FileName, s.MimeType, s.Reason})
		}
		writer.Flush()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":        jobID,
		"skipped_count": len(skips),
		"skipped":       skips,
	})
}
