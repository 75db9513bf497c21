package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetAnalyticsHandler handles the request to get analytics data
func (api *API) GetAnalyticsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.engine.Analytics().GetDashboardData())
}

// MetricsHandler serves the Prometheus scrape endpoint
func (api *API) MetricsHandler(c *gin.Context) {
	api.engine.Metrics().Handler().ServeHTTP(c.Writer, c.Request)
}

// HealthCheckHandler provides a simple health check endpoint
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "go-word-finder",
		"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
	})
}
