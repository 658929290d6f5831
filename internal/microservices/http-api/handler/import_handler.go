package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mediahub/internal/microservices/http-api/dto"
	"mediahub/internal/microservices/http-api/middleware"
	"mediahub/internal/microservices/http-api/service"
)

// maxUploadBytes bounds an uploaded export.
const maxUploadBytes = 10 << 20

type ImportHandler struct {
	svc service.ImportService
}

func NewImportHandler(svc service.ImportService) *ImportHandler {
	return &ImportHandler{svc: svc}
}

func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/import/letterboxd/validate", h.Validate)
	rg.POST("/import/letterboxd", h.Start)
	rg.GET("/import/:id", h.Get)
}

// readCSV accepts either a multipart "file" upload or a JSON {"csv": "..."} body.
func readCSV(c *gin.Context) (string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return "", err
		}
		if fh.Size > maxUploadBytes {
			return "", errors.New("file too large")
		}
		f, err := fh.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		b, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	var req dto.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return "", err
	}
	return req.CSV, nil
}

// Validate checks an export without importing it.
func (h *ImportHandler) Validate(c *gin.Context) {
	text, err := readCSV(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.svc.Validate(text))
}

// Start queues the import and returns the job immediately.
func (h *ImportHandler) Start(c *gin.Context) {
	text, err := readCSV(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.svc.Start(c.Request.Context(), middleware.Session(c), text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, job)
}

func (h *ImportHandler) Get(c *gin.Context) {
	job, err := h.svc.Get(middleware.Session(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
