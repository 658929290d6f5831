package library

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mediahub/internal/auth"
	"mediahub/internal/cache"
	"mediahub/internal/catalog"
	"mediahub/internal/microservices/http-api/models"
	"mediahub/internal/microservices/http-api/repository"
)

const watchlistName = "watchlist"

// Watchlist is a user's list of movies to watch. It carries no ratings.
type Watchlist struct {
	session auth.Context
	repo    repository.WatchlistRepository
	cache   cache.Store
	ttl     time.Duration
	logger  *slog.Logger
}

func NewWatchlist(session auth.Context, repo repository.WatchlistRepository, c cache.Store, opts ...Option) (*Watchlist, error) {
	if !session.Authenticated() {
		return nil, ErrNoSession
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Watchlist{session: session, repo: repo, cache: c, ttl: o.ttl, logger: o.logger}, nil
}

func (w *Watchlist) Add(ctx context.Context, item catalog.Item) error {
	err := w.repo.Add(ctx, &models.WatchlistMovie{
		UserID:      w.session.UserID,
		MovieID:     item.ID,
		Title:       item.Title,
		Overview:    item.Overview,
		PosterPath:  item.PosterPath,
		ReleaseDate: item.ReleaseDate,
		VoteAverage: item.VoteAverage,
	})
	if err != nil {
		return storeErr("add", watchlistName, item.ID, err)
	}
	w.invalidate(ctx)
	return nil
}

func (w *Watchlist) Remove(ctx context.Context, id int64) error {
	if err := w.repo.Remove(ctx, w.session.UserID, id); err != nil {
		return storeErr("remove", watchlistName, id, err)
	}
	w.invalidate(ctx)
	return nil
}

func (w *Watchlist) Contains(ctx context.Context, id int64) (bool, error) {
	ok, err := w.repo.Exists(ctx, w.session.UserID, id)
	if err != nil {
		return false, storeErr("contains", watchlistName, id, err)
	}
	return ok, nil
}

// List returns the watchlist, newest first.
func (w *Watchlist) List(ctx context.Context) ([]Entry, error) {
	key := cache.LibraryKey(w.session.UserID, watchlistName)
	if w.cache != nil {
		var cached []Entry
		if ok, _ := cache.GetJSON(ctx, w.cache, key, &cached); ok {
			return cached, nil
		}
	}

	movies, err := w.repo.List(ctx, w.session.UserID)
	if err != nil {
		return nil, storeErr("list", watchlistName, 0, err)
	}
	entries := make([]Entry, 0, len(movies))
	for _, m := range movies {
		entries = append(entries, Entry{
			ID:          m.MovieID,
			Kind:        catalog.KindMovie,
			Title:       m.Title,
			Overview:    m.Overview,
			PosterPath:  m.PosterPath,
			ReleaseDate: m.ReleaseDate,
			VoteAverage: m.VoteAverage,
			AddedAt:     m.AddedAt,
		})
	}

	if w.cache != nil {
		if err := cache.SetJSON(ctx, w.cache, key, entries, w.ttl); err != nil {
			w.logger.Warn("library_cache_write_failed", "list", watchlistName, "error", err)
		}
	}
	return entries, nil
}

func (w *Watchlist) invalidate(ctx context.Context) {
	if w.cache == nil {
		return
	}
	if err := w.cache.InvalidatePrefix(ctx, cache.LibraryPrefix(w.session.UserID, watchlistName)); err != nil {
		w.logger.Warn("library_cache_invalidate_failed", "list", watchlistName, "user_id", w.session.UserID, "error", err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
