package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mediahub/internal/library"
	"mediahub/internal/microservices/http-api/dto"
	"mediahub/internal/microservices/http-api/middleware"
	"mediahub/internal/microservices/http-api/service"
)

type VersusHandler struct {
	svc service.VersusService
}

func NewVersusHandler(svc service.VersusService) *VersusHandler {
	return &VersusHandler{svc: svc}
}

func (h *VersusHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/versus", h.Start)
	rg.GET("/versus/:id", h.Get)
	rg.POST("/versus/:id/choose", h.Choose)
	rg.POST("/versus/:id/skip", h.Skip)
	rg.POST("/versus/:id/finish", h.Finish)
}

// Start opens a session over the caller's rated list.
func (h *VersusHandler) Start(c *gin.Context) {
	var req dto.StartVersusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	st, err := h.svc.Start(ctx, middleware.Session(c), req.Kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *VersusHandler) Get(c *gin.Context) {
	st, err := h.svc.Get(c.Request.Context(), middleware.Session(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Choose applies the decision. When a rating write fails the current state
// is returned with the error so the client can retry the same pair.
func (h *VersusHandler) Choose(c *gin.Context) {
	var req dto.ChooseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	st, err := h.svc.Choose(ctx, middleware.Session(c), c.Param("id"), req.Winner)
	if err != nil {
		var storeErr *library.StoreError
		if errors.As(err, &storeErr) && st.ID != "" {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save ratings", "session": st})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *VersusHandler) Skip(c *gin.Context) {
	st, err := h.svc.Skip(c.Request.Context(), middleware.Session(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Finish returns the ranking changes and closes the session.
func (h *VersusHandler) Finish(c *gin.Context) {
	summary, err := h.svc.Finish(c.Request.Context(), middleware.Session(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
