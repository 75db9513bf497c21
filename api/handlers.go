// Package api exposes the word finder over HTTP with gin.
package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-word-finder/internal/engine"
	"github.com/gcbaptista/go-word-finder/internal/logging"
)

// API holds dependencies for API handlers, primarily the find engine.
type API struct {
	engine *engine.Engine
	roots  *RootGuard
	logger *zap.Logger
}

// NewAPI creates a new API handler structure. Requests may only search below
// the engine's server.allowed_roots.
func NewAPI(eng *engine.Engine, logger *zap.Logger) *API {
	return &API{
		engine: eng,
		roots:  NewRootGuard(eng.Settings().Server.AllowedRoots),
		logger: logging.OrNop(logger).Named("api"),
	}
}

// SetupRoutes installs the middleware chain and every route of the word finder.
func SetupRoutes(router *gin.Engine, eng *engine.Engine, logger *zap.Logger) {
	apiHandler := NewAPI(eng, logger)
	settings := eng.Settings()

	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggerMiddleware(apiHandler.logger))
	router.Use(MetricsMiddleware(eng.Metrics()))
	router.Use(CORSMiddleware(settings.Server.CORSOrigins))
	router.Use(RequestSizeLimitMiddleware(settings.Server.RequestSizeLimit))

	// Health check route
	router.GET("/health", apiHandler.HealthCheckHandler)

	// Observability routes
	router.GET("/analytics", apiHandler.GetAnalyticsHandler)
	router.GET("/metrics", apiHandler.MetricsHandler)

	// Find routes
	findRoutes := router.Group("/finds")
	{
		findRoutes.POST("", apiHandler.FindHandler)            // Synchronous find
		findRoutes.POST("/async", apiHandler.FindAsyncHandler) // Background find, returns a job ID
	}

	// Tree listing route
	router.POST("/tree", apiHandler.TreeHandler)

	// Job management routes
	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", apiHandler.ListJobsHandler)              // List jobs, optionally by status
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler) // Get job performance metrics
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)         // Get job status and result
		jobRoutes.DELETE("/:jobId", apiHandler.CancelJobHandler)   // Cancel a pending or running job
	}
}
