package library

import (
	"context"
	"log/slog"
	"time"

	"mediahub/internal/auth"
	"mediahub/internal/cache"
	"mediahub/internal/catalog"
	"mediahub/internal/microservices/http-api/models"
	"mediahub/internal/microservices/http-api/repository"
	"mediahub/internal/rating"
)

// Store is a user's rated list of one kind: watched movies or played games.
type Store struct {
	session auth.Context
	kind    catalog.Kind
	name    string
	rows    rows
	cache   cache.Store
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// rows hides the typed repository behind provider-neutral entries.
type rows interface {
	upsert(ctx context.Context, userID string, item RatedItem) error
	updateRating(ctx context.Context, userID string, id int64, rating float64) error
	remove(ctx context.Context, userID string, id int64) error
	get(ctx context.Context, userID string, id int64) (Entry, error)
	list(ctx context.Context, userID string) ([]Entry, error)
}

type typedRows[T any] struct {
	repo    repository.RatedRepository[T]
	toRow   func(userID string, item RatedItem) *T
	toEntry func(row T) Entry
}

func (t typedRows[T]) upsert(ctx context.Context, userID string, item RatedItem) error {
	return t.repo.Upsert(ctx, t.toRow(userID, item), item.Rating != nil)
}

func (t typedRows[T]) updateRating(ctx context.Context, userID string, id int64, rating float64) error {
	return t.repo.UpdateRating(ctx, userID, id, rating)
}

func (t typedRows[T]) remove(ctx context.Context, userID string, id int64) error {
	return t.repo.Remove(ctx, userID, id)
}

func (t typedRows[T]) get(ctx context.Context, userID string, id int64) (Entry, error) {
	row, err := t.repo.Get(ctx, userID, id)
	if err != nil {
		return Entry{}, err
	}
	return t.toEntry(*row), nil
}

func (t typedRows[T]) list(ctx context.Context, userID string) ([]Entry, error) {
	found, err := t.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(found))
	for _, row := range found {
		entries = append(entries, t.toEntry(row))
	}
	return entries, nil
}

// NewWatchedStore binds the watched-movies list to session. c may be nil.
func NewWatchedStore(session auth.Context, repo repository.RatedRepository[models.WatchedMovie], c cache.Store, opts ...Option) (*Store, error) {
	return newStore(session, catalog.KindMovie, "watched", typedRows[models.WatchedMovie]{
		repo:    repo,
		toRow:   watchedRow,
		toEntry: watchedEntry,
	}, c, opts)
}

// NewPlayedStore binds the played-games list to session. c may be nil.
func NewPlayedStore(session auth.Context, repo repository.RatedRepository[models.PlayedGame], c cache.Store, opts ...Option) (*Store, error) {
	return newStore(session, catalog.KindGame, "played", typedRows[models.PlayedGame]{
		repo:    repo,
		toRow:   playedRow,
		toEntry: playedEntry,
	}, c, opts)
}

func newStore(session auth.Context, kind catalog.Kind, name string, r rows, c cache.Store, opts []Option) (*Store, error) {
	if !session.Authenticated() {
		return nil, ErrNoSession
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{
		session: session,
		kind:    kind,
		name:    name,
		rows:    r,
		cache:   c,
		ttl:     o.ttl,
		logger:  o.logger,
		now:     o.now,
	}, nil
}

func (s *Store) Kind() catalog.Kind { return s.kind }

// UpsertRated stores item, normalising its rating to one decimal in [0,10].
// An unrated item keeps any rating already stored.
func (s *Store) UpsertRated(ctx context.Context, item RatedItem) error {
	if item.Rating != nil {
		r := rating.Normalize(*item.Rating)
		item.Rating = &r
	}
	if item.WatchedAt.IsZero() {
		item.WatchedAt = s.now()
	}
	if err := s.rows.upsert(ctx, s.session.UserID, item); err != nil {
		return storeErr("upsert", s.name, item.Item.ID, err)
	}
	s.invalidate(ctx)
	return nil
}

// UpdateRating sets the user's rating of id after rounding and clamping.
func (s *Store) UpdateRating(ctx context.Context, id int64, value float64) error {
	if err := s.rows.updateRating(ctx, s.session.UserID, id, rating.Normalize(value)); err != nil {
		return storeErr("update rating", s.name, id, err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Store) Remove(ctx context.Context, id int64) error {
	if err := s.rows.remove(ctx, s.session.UserID, id); err != nil {
		return storeErr("remove", s.name, id, err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Store) Get(ctx context.Context, id int64) (Entry, error) {
	e, err := s.rows.get(ctx, s.session.UserID, id)
	if err != nil {
		return Entry{}, storeErr("get", s.name, id, err)
	}
	return e, nil
}

// Contains reports whether id is in the list.
func (s *Store) Contains(ctx context.Context, id int64) (bool, error) {
	_, err := s.Get(ctx, id)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

// List returns the whole list, best rated first, reading through the cache.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	key := s.cacheKey()
	if s.cache != nil {
		var cached []Entry
		ok, err := cache.GetJSON(ctx, s.cache, key, &cached)
		if err != nil {
			s.logger.Warn("library_cache_read_failed", "list", s.name, "error", err)
		}
		if ok {
			return cached, nil
		}
	}

	entries, err := s.rows.list(ctx, s.session.UserID)
	if err != nil {
		return nil, storeErr("list", s.name, 0, err)
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, entries, s.ttl); err != nil {
			s.logger.Warn("library_cache_write_failed", "list", s.name, "error", err)
		}
	}
	return entries, nil
}

// Pool returns the list as Versus Mode candidates.
func (s *Store) Pool(ctx context.Context) ([]rating.Item, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	pool := make([]rating.Item, 0, len(entries))
	for _, e := range entries {
		pool = append(pool, rating.Item{ID: e.ID, Title: e.Title, Poster: e.PosterPath, Rating: e.Rating})
	}
	return pool, nil
}

func (s *Store) cacheKey() string {
	return cache.LibraryKey(s.session.UserID, s.name)
}

func (s *Store) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefix(ctx, cache.LibraryPrefix(s.session.UserID, s.name)); err != nil {
		s.logger.Warn("library_cache_invalidate_failed", "list", s.name, "user_id", s.session.UserID, "error", err)
	}
}

func watchedRow(userID string, item RatedItem) *models.WatchedMovie {
	return &models.WatchedMovie{
		UserID:      userID,
		MovieID:     item.Item.ID,
		Title:       item.Item.Title,
		Overview:    item.Item.Overview,
		PosterPath:  item.Item.PosterPath,
		ReleaseDate: item.Item.ReleaseDate,
		VoteAverage: item.Item.VoteAverage,
		Rating:      item.Rating,
		WatchedAt:   item.WatchedAt,
	}
}

func watchedEntry(m models.WatchedMovie) Entry {
	return Entry{
		ID:          m.MovieID,
		Kind:        catalog.KindMovie,
		Title:       m.Title,
		Overview:    m.Overview,
		PosterPath:  m.PosterPath,
		ReleaseDate: m.ReleaseDate,
		VoteAverage: m.VoteAverage,
		Rating:      m.Rating,
		WatchedAt:   m.WatchedAt,
		AddedAt:     m.AddedAt,
	}
}

func playedRow(userID string, item RatedItem) *models.PlayedGame {
	return &models.PlayedGame{
		UserID:          userID,
		GameID:          item.Item.ID,
		Name:            item.Item.Title,
		BackgroundImage: item.Item.PosterPath,
		Released:        item.Item.ReleaseDate,
		Rating:          item.Item.VoteAverage,
		Metacritic:      item.Item.Metacritic,
		Playtime:        item.Item.Playtime,
		UserRating:      item.Rating,
		PlayedAt:        item.WatchedAt,
	}
}

func playedEntry(g models.PlayedGame) Entry {
	return Entry{
		ID:          g.GameID,
		Kind:        catalog.KindGame,
		Title:       g.Name,
		PosterPath:  g.BackgroundImage,
		ReleaseDate: g.Released,
		VoteAverage: g.Rating,
		Metacritic:  g.Metacritic,
		Playtime:    g.Playtime,
		Rating:      g.UserRating,
		WatchedAt:   g.PlayedAt,
		AddedAt:     g.AddedAt,
	}
}
