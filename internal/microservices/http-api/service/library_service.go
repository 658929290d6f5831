package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mediahub/internal/auth"
	"mediahub/internal/cache"
	"mediahub/internal/catalog"
	"mediahub/internal/library"
	"mediahub/internal/microservices/http-api/models"
	"mediahub/internal/microservices/http-api/repository"
)

// ListName names one of a user's lists.
type ListName string

const (
	ListWatched   ListName = "watched"
	ListWatchlist ListName = "watchlist"
	ListPlayed    ListName = "played"
)

var (
	ErrUnknownList = errors.New("unknown list")
	ErrNotRatable  = errors.New("watchlist entries cannot be rated")
)

type LibraryService interface {
	List(ctx context.Context, session auth.Context, list ListName) ([]library.Entry, error)
	Get(ctx context.Context, session auth.Context, list ListName, id int64) (library.Entry, error)
	Add(ctx context.Context, session auth.Context, list ListName, item library.RatedItem) error
	Rate(ctx context.Context, session auth.Context, list ListName, id int64, rating float64) error
	Remove(ctx context.Context, session auth.Context, list ListName, id int64) error
	// RatedStore returns the rated list of kind bound to session.
	RatedStore(session auth.Context, kind catalog.Kind) (*library.Store, error)
}

type libraryService struct {
	watched   repository.RatedRepository[models.WatchedMovie]
	played    repository.RatedRepository[models.PlayedGame]
	watchlist repository.WatchlistRepository
	cache     cache.Store
	ttl       time.Duration
	logger    *slog.Logger
}

func NewLibraryService(
	watched repository.RatedRepository[models.WatchedMovie],
	played repository.RatedRepository[models.PlayedGame],
	watchlist repository.WatchlistRepository,
	c cache.Store,
	ttl time.Duration,
	logger *slog.Logger,
) LibraryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &libraryService{
		watched:   watched,
		played:    played,
		watchlist: watchlist,
		cache:     c,
		ttl:       ttl,
		logger:    logger,
	}
}

func (s *libraryService) RatedStore(session auth.Context, kind catalog.Kind) (*library.Store, error) {
	opts := []library.Option{library.WithTTL(s.ttl), library.WithLogger(s.logger)}
	switch kind {
	case catalog.KindMovie:
		return library.NewWatchedStore(session, s.watched, s.cache, opts...)
	case catalog.KindGame:
		return library.NewPlayedStore(session, s.played, s.cache, opts...)
	}
	return nil, ErrUnknownList
}

func (s *libraryService) rated(session auth.Context, list ListName) (*library.Store, error) {
	switch list {
	case ListWatched:
		return s.RatedStore(session, catalog.KindMovie)
	case ListPlayed:
		return s.RatedStore(session, catalog.KindGame)
	case ListWatchlist:
		return nil, ErrNotRatable
	}
	return nil, ErrUnknownList
}

func (s *libraryService) watchlistFor(session auth.Context) (*library.Watchlist, error) {
	return library.NewWatchlist(session, s.watchlist, s.cache, library.WithTTL(s.ttl), library.WithLogger(s.logger))
}

func (s *libraryService) List(ctx context.Context, session auth.Context, list ListName) ([]library.Entry, error) {
	if list == ListWatchlist {
		wl, err := s.watchlistFor(session)
		if err != nil {
			return nil, err
		}
		return wl.List(ctx)
	}
	store, err := s.rated(session, list)
	if err != nil {
		return nil, err
	}
	return store.List(ctx)
}

func (s *libraryService) Get(ctx context.Context, session auth.Context, list ListName, id int64) (library.Entry, error) {
	if list == ListWatchlist {
		wl, err := s.watchlistFor(session)
		if err != nil {
			return library.Entry{}, err
		}
		entries, err := wl.List(ctx)
		if err != nil {
			return library.Entry{}, err
		}
		for _, e := range entries {
			if e.ID == id {
				return e, nil
			}
		}
		return library.Entry{}, library.ErrNotFound
	}
	store, err := s.rated(session, list)
	if err != nil {
		return library.Entry{}, err
	}
	return store.Get(ctx, id)
}

func (s *libraryService) Add(ctx context.Context, session auth.Context, list ListName, item library.RatedItem) error {
	if list == ListWatchlist {
		wl, err := s.watchlistFor(session)
		if err != nil {
			return err
		}
		return wl.Add(ctx, item.Item)
	}
	store, err := s.rated(session, list)
	if err != nil {
		return err
	}
	if err := store.UpsertRated(ctx, item); err != nil {
		return err
	}
	s.logger.Debug("library_item_added", "list", list, "user_id", session.UserID, "id", item.Item.ID)
	return nil
}

func (s *libraryService) Rate(ctx context.Context, session auth.Context, list ListName, id int64, rating float64) error {
	store, err := s.rated(session, list)
	if err != nil {
		return err
	}
	return store.UpdateRating(ctx, id, rating)
}

func (s *libraryService) Remove(ctx context.Context, session auth.Context, list ListName, id int64) error {
	if list == ListWatchlist {
		wl, err := s.watchlistFor(session)
		if err != nil {
			return err
		}
		return wl.Remove(ctx, id)
	}
	store, err := s.rated(session, list)
	if err != nil {
		return err
	}
	return store.Remove(ctx, id)
}
