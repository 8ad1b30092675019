package api

import (
	"errors"
	"net/http"

	"github.com/event-gallery-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// statusFor maps a service error onto an HTTP status and a client-safe message
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, models.ErrExternalService):
		return http.StatusBadGateway, "external file service unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// respondError writes the error response for err. Validation failures carry
// their field list.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	code, msg := statusFor(err)

	event := log.Debug()
	if code >= 500 {
		event = log.Error()
	}
	event.Err(err).Str("path", c.FullPath()).Int("status", code).Msg("Request failed")

	body := gin.H{"error": msg}
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		body["error"] = "validation failed"
		body["details"] = verrs
	}
	c.JSON(code, body)
}

// badRequest reports a body or query that could not be decoded
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
