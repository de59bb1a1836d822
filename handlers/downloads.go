package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spotigrab/services"
	"spotigrab/types"
	"spotigrab/websocket"
)

// DownloadHandler serves the synchronous download endpoint, the produced files and the
// asynchronous job endpoints
type DownloadHandler struct {
	dispatcher  services.RequestDispatcher
	jobQueue    services.JobQueue
	hub         websocket.Hub
	fileService services.FileService
	root        string
	logger      *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(dispatcher services.RequestDispatcher, jq services.JobQueue, hub websocket.Hub, fs services.FileService, root string, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		dispatcher:  dispatcher,
		jobQueue:    jq,
		hub:         hub,
		fileService: fs,
		root:        root,
		logger:      logger,
	}
}

func invalidURL(c *gin.Context) {
	c.JSON(http.StatusBadRequest, types.TrackError(services.MsgInvalidURL))
}

// Download runs a track or playlist request to completion and returns its outcome.
// Pipeline failures are reported in the body with status 200.
func (h *DownloadHandler) Download(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		invalidURL(c)
		return
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), query, nil)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			invalidURL(c)
			return
		}
		h.logger.Error("dispatch failed", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.TrackError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, result.Body())
}

// ServeDownload sends a produced track or playlist archive as an attachment
func (h *DownloadHandler) ServeDownload(c *gin.Context) {
	name := c.Param("filename")

	path, err := h.fileService.ResolveDownload(h.root, name)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "path security violation",
			"details": err.Error(),
		})
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	c.Header("Content-Type", h.fileService.GetContentType(path))
	c.FileAttachment(path, name)
}

type queueRequest struct {
	Query string `json:"query" form:"query"`
}

// QueueJob queues a request on the job queue and returns immediately
func (h *DownloadHandler) QueueJob(c *gin.Context) {
	var req queueRequest
	if err := c.ShouldBind(&req); err != nil || req.Query == "" {
		req.Query = c.Query("query")
	}
	if req.Query == "" {
		invalidURL(c)
		return
	}

	job, err := h.jobQueue.AddJob(req.Query)
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		invalidURL(c)
		return
	case errors.Is(err, services.ErrQueueFull):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "download queued successfully",
		"job":     job,
	})
}

// GetAllJobs returns all download jobs
func (h *DownloadHandler) GetAllJobs(c *gin.Context) {
	jobs := h.jobQueue.GetAllJobs()
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

// GetJob returns a specific download job by ID
func (h *DownloadHandler) GetJob(c *gin.Context) {
	job, exists := h.jobQueue.GetJob(c.Param("jobId"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "job not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job": job,
	})
}

// CancelJob cancels a queued download job
func (h *DownloadHandler) CancelJob(c *gin.Context) {
	if !h.jobQueue.CancelJob(c.Param("jobId")) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job cannot be cancelled (not found or already processing)",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "job cancelled successfully",
	})
}

// HandleWebSocketConnection streams progress of a single job
func (h *DownloadHandler) HandleWebSocketConnection(c *gin.Context) {
	jobID := c.Param("jobId")
	if _, exists := h.jobQueue.GetJob(jobID); !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	h.subscribe(c, jobID)
}

// HandleWebSocketAllConnection streams progress of every job
func (h *DownloadHandler) HandleWebSocketAllConnection(c *gin.Context) {
	h.subscribe(c, websocket.AllJobs)
}

func (h *DownloadHandler) subscribe(c *gin.Context, jobID string) {
	conn, err := websocket.Upgrade(c.Writer, c.Request)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn, jobID, h.logger)
	h.hub.RegisterClient(client)
	client.StartPumps()
}
