// Package library is the per-user store of watched movies, played games and
// the watchlist. Every store is bound to one authenticated session.
package library

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mediahub/internal/catalog"
	"mediahub/internal/microservices/http-api/repository"
)

var (
	ErrNoSession = errors.New("library: no authenticated session")
	ErrNotFound  = errors.New("library: item not found")
)

// RatedItem is a catalog item about to be stored with an optional rating.
type RatedItem struct {
	Item      catalog.Item
	Rating    *float64
	WatchedAt time.Time
}

// Entry is one stored library row in provider-neutral form.
type Entry struct {
	ID          int64        `json:"id"`
	Kind        catalog.Kind `json:"kind"`
	Title       string       `json:"title"`
	Overview    string       `json:"overview,omitempty"`
	PosterPath  string       `json:"poster_path,omitempty"`
	ReleaseDate string       `json:"release_date,omitempty"`
	VoteAverage float64      `json:"vote_average"`
	Metacritic  *int         `json:"metacritic,omitempty"`
	Playtime    int          `json:"playtime,omitempty"`
	Rating      *float64     `json:"rating"`
	WatchedAt   time.Time    `json:"watched_at,omitzero"`
	AddedAt     time.Time    `json:"added_at"`
}

// StoreError wraps any failure of the backing store.
type StoreError struct {
	Op   string
	Kind string
	ID   int64
	Err  error
}

func (e *StoreError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("library %s %s %d: %v", e.Kind, e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("library %s %s: %v", e.Kind, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op, kind string, id int64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		err = ErrNotFound
	}
	return &StoreError{Op: op, Kind: kind, ID: id, Err: err}
}

// Option configures a store.
type Option func(*options)

type options struct {
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func defaultOptions() options {
	return options{ttl: time.Hour, logger: slog.Default(), now: time.Now}
}

// WithTTL sets how long list reads stay cached. Non-positive values keep
// the default.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}
