package controllers

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/services"
	"github.com/kendall-kelly/kendalls-studio-api/utils"
	"github.com/sirupsen/logrus"
)

type FileController struct {
	storage services.FileStorage
}

func NewFileController(storage services.FileStorage) *FileController {
	return &FileController{storage: storage}
}

// GetFile handles GET /api/v1/files/:filename - streams a stored file
func (ctl *FileController) GetFile(c *gin.Context) {
	filename := c.Param("filename")

	// Security: Prevent directory traversal attacks
	if !utils.SafeFileName(filename) {
		respondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	rc, err := ctl.storage.Load(c.Request.Context(), filename)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(utils.ImageExtension(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		logrus.WithError(err).WithField("name", filename).Warn("Failed to stream file")
	}
}
