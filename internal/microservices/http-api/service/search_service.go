package service

import (
	"context"

	"mediahub/internal/catalog"
)

// GameCatalog is the part of the game provider beyond plain search.
type GameCatalog interface {
	catalog.Searcher
	Popular(ctx context.Context) ([]catalog.Item, error)
}

type SearchService interface {
	Movies(ctx context.Context, query string) ([]catalog.Item, error)
	Games(ctx context.Context, query string) ([]catalog.Item, error)
	PopularGames(ctx context.Context) ([]catalog.Item, error)
}

type searchService struct {
	movies      catalog.Searcher
	games       catalog.Searcher
	gameCatalog GameCatalog
}

// NewSearchService takes possibly cached searchers for both kinds plus the
// raw game catalog for listings that bypass the search cache.
func NewSearchService(movies, games catalog.Searcher, gameCatalog GameCatalog) SearchService {
	return &searchService{movies: movies, games: games, gameCatalog: gameCatalog}
}

func (s *searchService) Movies(ctx context.Context, query string) ([]catalog.Item, error) {
	return s.movies.Search(ctx, query)
}

func (s *searchService) Games(ctx context.Context, query string) ([]catalog.Item, error) {
	return s.games.Search(ctx, query)
}

func (s *searchService) PopularGames(ctx context.Context) ([]catalog.Item, error) {
	return s.gameCatalog.Popular(ctx)
}
