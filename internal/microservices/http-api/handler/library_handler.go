package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mediahub/internal/catalog"
	"mediahub/internal/microservices/http-api/dto"
	"mediahub/internal/microservices/http-api/middleware"
	"mediahub/internal/microservices/http-api/service"
)

type LibraryHandler struct {
	svc service.LibraryService
}

func NewLibraryHandler(svc service.LibraryService) *LibraryHandler {
	return &LibraryHandler{svc: svc}
}

func (h *LibraryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	for _, list := range []service.ListName{service.ListWatched, service.ListPlayed} {
		g := rg.Group("/" + string(list))
		g.GET("", h.list(list))
		g.POST("", h.add(list))
		g.GET("/:id", h.get(list))
		g.PUT("/:id/rating", h.rate(list))
		g.DELETE("/:id", h.remove(list))
	}

	wl := rg.Group("/" + string(service.ListWatchlist))
	wl.GET("", h.list(service.ListWatchlist))
	wl.POST("", h.add(service.ListWatchlist))
	wl.GET("/:id", h.get(service.ListWatchlist))
	wl.DELETE("/:id", h.remove(service.ListWatchlist))
}

func kindOf(list service.ListName) catalog.Kind {
	if list == service.ListPlayed {
		return catalog.KindGame
	}
	return catalog.KindMovie
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *LibraryHandler) list(list service.ListName) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		entries, err := h.svc.List(ctx, middleware.Session(c), list)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.LibraryListResponse{Items: entries, Total: len(entries)})
	}
}

func (h *LibraryHandler) add(list service.ListName) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.AddLibraryItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := h.svc.Add(ctx, middleware.Session(c), list, req.ToRatedItem(kindOf(list))); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "added to " + string(list), "id": req.ID})
	}
}

func (h *LibraryHandler) get(list service.ListName) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		entry, err := h.svc.Get(ctx, middleware.Session(c), list, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}

func (h *LibraryHandler) rate(list service.ListName) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var req dto.RateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := h.svc.Rate(ctx, middleware.Session(c), list, id, *req.Rating); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *LibraryHandler) remove(list service.ListName) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := h.svc.Remove(ctx, middleware.Session(c), list, id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
