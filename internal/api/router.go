package api

import (
	"context"
	"net/http"
	"time"

	"github.com/event-gallery-api/internal/metrics"
	"github.com/event-gallery-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const healthTimeout = 2 * time.Second

// HealthChecker reports whether the content store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, store HealthChecker, m *metrics.Metrics, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(metricsMiddleware(m))
	router.Use(corsMiddleware())

	// Handlers
	eventHandler := NewEventHandler(services, log)
	mediaHandler := NewMediaHandler(services, log)
	blessingHandler := NewBlessingHandler(services, log)
	importHandler := NewImportHandler(services, log)
	exportHandler := NewExportHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(store))
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// API v1
	v1 := router.Group("/v1")
	{
		// Public gallery
		events := v1.Group("/events")
		{
			events.GET("", eventHandler.ListPublished)
			events.GET("/:id", eventHandler.GetPublished)
			events.GET("/:id/media", mediaHandler.ListPublic)
			events.GET("/:id/blessings", blessingHandler.ListApproved)
			events.POST("/:id/blessings", blessingHandler.Submit)
		}
		v1.GET("/blessings/recent", blessingHandler.Recent)

		admin := v1.Group("/admin")
		{
			adminEvents := admin.Group("/events")
			{
				adminEvents.GET("", eventHandler.AdminList)
				adminEvents.POST("", eventHandler.Create)
				adminEvents.POST("/from-folder", importHandler.CreateEventFromFolder)
				adminEvents.PUT("/:id", eventHandler.Update)
				adminEvents.DELETE("/:id", eventHandler.Delete)
				adminEvents.PATCH("/:id/status", eventHandler.SetStatus)
				adminEvents.POST("/:id/ingest", importHandler.IngestFolder)
				adminEvents.GET("/:id/blessings/export", exportHandler.ExportBlessings)
			}

			adminMedia := admin.Group("/media")
			{
				adminMedia.GET("", mediaHandler.AdminList)
				adminMedia.POST("", mediaHandler.Create)
				adminMedia.PUT("/:id", mediaHandler.Update)
				adminMedia.DELETE("/:id", mediaHandler.Delete)
				adminMedia.POST("/:id/toggle-visibility", mediaHandler.ToggleVisibility)
			}

			adminBlessings := admin.Group("/blessings")
			{
				adminBlessings.GET("", blessingHandler.AdminList)
				adminBlessings.PATCH("/:id/status", blessingHandler.SetStatus)
				adminBlessings.DELETE("/:id", blessingHandler.Delete)
			}

			imports := admin.Group("/imports")
			{
				imports.POST("", importHandler.CreateImport)
				imports.GET("/:job_id", importHandler.GetImportStatus)
				imports.GET("/:job_id/skipped", importHandler.GetImportSkipped)
			}

			admin.GET("/stats", eventHandler.Stats)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(store HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := contextWithTimeout(c, healthTimeout)
		defer cancel()

		if err := store.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now().Format(time.RFC3339),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "event-gallery-api",
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// metricsMiddleware records every request under its route pattern
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Idempotency-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}
