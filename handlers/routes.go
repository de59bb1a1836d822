package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers bundles every handler mounted on the router
type Handlers struct {
	Health    *HealthHandler
	Downloads *DownloadHandler
	Files     *FileHandler
	// Gatherer backs /metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer
}

// SetupRoutes configures all the HTTP routes
func SetupRoutes(r *gin.Engine, h Handlers) {
	r.GET("/", h.Health.Root)
	r.GET("/health", h.Health.HealthCheck)

	r.GET("/download", h.Downloads.Download)
	r.GET("/downloads/:filename", h.Downloads.ServeDownload)

	if h.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{})))
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/files", h.Files.ListFiles)

		jobsGroup := apiGroup.Group("/jobs")
		{
			jobsGroup.POST("", h.Downloads.QueueJob)
			jobsGroup.GET("", h.Downloads.GetAllJobs)
			jobsGroup.GET("/:jobId", h.Downloads.GetJob)
			jobsGroup.DELETE("/:jobId", h.Downloads.CancelJob)
		}

		// WebSocket endpoints for real-time progress
		wsGroup := apiGroup.Group("/ws")
		{
			wsGroup.GET("/jobs/:jobId", h.Downloads.HandleWebSocketConnection)
			wsGroup.GET("/jobs", h.Downloads.HandleWebSocketAllConnection)
		}
	}
}
