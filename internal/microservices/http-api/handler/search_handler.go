package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"mediahub/internal/catalog"
	"mediahub/internal/microservices/http-api/dto"
	"mediahub/internal/microservices/http-api/service"
)

const searchTimeout = 15 * time.Second

type SearchHandler struct {
	svc service.SearchService
}

func NewSearchHandler(svc service.SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

func (h *SearchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search/movies", h.SearchMovies)
	rg.GET("/search/games", h.SearchGames)
	rg.GET("/games/popular", h.PopularGames)
}

// SearchMovies: GET /search/movies?q=
func (h *SearchHandler) SearchMovies(c *gin.Context) {
	h.search(c, h.svc.Movies)
}

// SearchGames: GET /search/games?q=
func (h *SearchHandler) SearchGames(c *gin.Context) {
	h.search(c, h.svc.Games)
}

func (h *SearchHandler) search(c *gin.Context, fn func(context.Context, string) ([]catalog.Item, error)) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, dto.NewSearchResponse("", nil))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), searchTimeout)
	defer cancel()

	items, err := fn(ctx, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSearchResponse(query, items))
}

// PopularGames: GET /games/popular
func (h *SearchHandler) PopularGames(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), searchTimeout)
	defer cancel()

	items, err := h.svc.PopularGames(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSearchResponse("", items))
}
