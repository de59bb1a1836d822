package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Version is reported by the health endpoint; overridden at build time
var Version = "dev"

// HealthHandler handles health check endpoints
type HealthHandler struct {
	downloadLocation string
	startedAt        time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(downloadLocation string) *HealthHandler {
	return &HealthHandler{
		downloadLocation: downloadLocation,
		startedAt:        time.Now(),
	}
}

// Root is the liveness message clients poll before sending requests
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "downloader is running."})
}

// HealthCheck returns the health status of the service
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"service":           "spotigrab",
		"version":           Version,
		"download_location": h.downloadLocation,
		"uptime_seconds":    int64(time.Since(h.startedAt).Seconds()),
		"timestamp":         time.Now().Unix(),
	})
}
