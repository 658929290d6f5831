package catalog

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind distinguishes the catalog an item comes from.
type Kind string

const (
	KindMovie Kind = "movie"
	KindGame  Kind = "game"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindMovie || k == KindGame
}

// Item is the provider-neutral view of a catalog entry.
type Item struct {
	ID           int64   `json:"id"`
	Kind         Kind    `json:"kind"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	ReleaseYear  int     `json:"release_year,omitempty"`
	VoteAverage  float64 `json:"vote_average,omitempty"`
	Metacritic   *int    `json:"metacritic,omitempty"`
	Playtime     int     `json:"playtime,omitempty"`
}

// Searcher looks items up by free text. An empty, successful result is valid.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Item, error)
}

// Error is returned for transport and HTTP failures of a provider.
type Error struct {
	Provider   string
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s %s: HTTP %d: %v", e.Provider, e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: HTTP %d", e.Provider, e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// yearOf extracts the leading year of a YYYY-MM-DD date, 0 when absent.
func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}

var ratingShades = [...]string{
	"#fff7e0", "#fff0b3", "#ffe680", "#ffdb4d", "#ffd11a", "#ffc107",
	"#ffb300", "#ffa000", "#ff8f00", "#ff6f00", "#ff5722",
}

// RatingColour returns the badge shade for a 0-10 rating.
func RatingColour(rating float64) string {
	idx := int(math.Round(rating))
	idx = max(0, min(len(ratingShades)-1, idx))
	return ratingShades[idx]
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}
