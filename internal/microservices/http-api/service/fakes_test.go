package service

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"mediahub/internal/catalog"
	"mediahub/internal/microservices/http-api/models"
	"mediahub/internal/microservices/http-api/repository"
)

// memRated is an in-memory RatedRepository keyed by user and catalog id.
type memRated[T any] struct {
	mu        sync.Mutex
	rows      map[string]map[int64]T
	id        func(T) int64
	user      func(T) string
	rating    func(*T) **float64
	failWrite error
}

func newMemWatched() *memRated[models.WatchedMovie] {
	return &memRated[models.WatchedMovie]{
		rows:   map[string]map[int64]models.WatchedMovie{},
		id:     func(m models.WatchedMovie) int64 { return m.MovieID },
		user:   func(m models.WatchedMovie) string { return m.UserID },
		rating: func(m *models.WatchedMovie) **float64 { return &m.Rating },
	}
}

func newMemPlayed() *memRated[models.PlayedGame] {
	return &memRated[models.PlayedGame]{
		rows:   map[string]map[int64]models.PlayedGame{},
		id:     func(g models.PlayedGame) int64 { return g.GameID },
		user:   func(g models.PlayedGame) string { return g.UserID },
		rating: func(g *models.PlayedGame) **float64 { return &g.UserRating },
	}
}

func (m *memRated[T]) Upsert(_ context.Context, row *T, withRating bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return m.failWrite
	}
	user := m.user(*row)
	if m.rows[user] == nil {
		m.rows[user] = map[int64]T{}
	}
	next := *row
	if old, ok := m.rows[user][m.id(next)]; ok && !withRating {
		*m.rating(&next) = *m.rating(&old)
	}
	m.rows[user][m.id(next)] = next
	return nil
}

func (m *memRated[T]) UpdateRating(_ context.Context, userID string, id int64, rating float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return m.failWrite
	}
	row, ok := m.rows[userID][id]
	if !ok {
		return repository.ErrNotFound
	}
	r := rating
	*m.rating(&row) = &r
	m.rows[userID][id] = row
	return nil
}

func (m *memRated[T]) Remove(_ context.Context, userID string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[userID][id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows[userID], id)
	return nil
}

func (m *memRated[T]) Get(_ context.Context, userID string, id int64) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[userID][id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (m *memRated[T]) List(_ context.Context, userID string) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, 0, len(m.rows[userID]))
	for _, row := range m.rows[userID] {
		out = append(out, row)
	}
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(m.id(a), m.id(b)) })
	return out, nil
}

func (m *memRated[T]) ratingOf(userID string, id int64) *float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[userID][id]
	if !ok {
		return nil
	}
	return *m.rating(&row)
}

func (m *memRated[T]) count(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows[userID])
}

type memWatchlist struct {
	mu   sync.Mutex
	rows map[string][]models.WatchlistMovie
}

func newMemWatchlist() *memWatchlist {
	return &memWatchlist{rows: map[string][]models.WatchlistMovie{}}
}

func (m *memWatchlist) Add(_ context.Context, movie *models.WatchlistMovie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows[movie.UserID] {
		if r.MovieID == movie.MovieID {
			return nil
		}
	}
	m.rows[movie.UserID] = append(m.rows[movie.UserID], *movie)
	return nil
}

func (m *memWatchlist) Remove(_ context.Context, userID string, movieID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.rows[userID]
	for i, r := range rows {
		if r.MovieID == movieID {
			m.rows[userID] = slices.Delete(rows, i, i+1)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memWatchlist) List(_ context.Context, userID string) ([]models.WatchlistMovie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.rows[userID]), nil
}

func (m *memWatchlist) Exists(_ context.Context, userID string, movieID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows[userID] {
		if r.MovieID == movieID {
			return true, nil
		}
	}
	return false, nil
}

type stubSearcher struct {
	results map[string][]catalog.Item
	err     error
}

func (s *stubSearcher) Search(_ context.Context, query string) ([]catalog.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

func (s *stubSearcher) Popular(_ context.Context) ([]catalog.Item, error) {
	return s.results["__popular__"], nil
}
