package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spotigrab/services"
)

// FileHandler handles file listing endpoints
type FileHandler struct {
	fileService services.FileService
	root        string
	logger      *zap.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fs services.FileService, root string, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		fileService: fs,
		root:        root,
		logger:      logger,
	}
}

// ListFiles returns the downloaded tracks and playlist archives
func (h *FileHandler) ListFiles(c *gin.Context) {
	audioFiles, archives, err := h.fileService.ScanDownloads(h.root)
	if err != nil {
		h.logger.Error("error scanning downloads", zap.String("root", h.root), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to scan files",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"files":    audioFiles,
		"archives": archives,
		"count":    len(audioFiles) + len(archives),
	})
}
