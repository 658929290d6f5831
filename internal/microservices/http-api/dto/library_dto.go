package dto

import (
	"time"

	"mediahub/internal/catalog"
	"mediahub/internal/library"
)

// AddLibraryItemRequest: payload to add a catalog item to one of the lists
type AddLibraryItemRequest struct {
	ID           int64      `json:"id" binding:"required,gt=0"`
	Title        string     `json:"title" binding:"required"`
	Overview     string     `json:"overview"`
	PosterPath   string     `json:"poster_path"`
	BackdropPath string     `json:"backdrop_path"`
	ReleaseDate  string     `json:"release_date"`
	VoteAverage  float64    `json:"vote_average"`
	Metacritic   *int       `json:"metacritic"`
	Playtime     int        `json:"playtime"`
	Rating       *float64   `json:"rating" binding:"omitempty,min=0,max=10"`
	WatchedAt    *time.Time `json:"watched_at"`
}

// ToRatedItem converts the request into a library item of kind.
func (r AddLibraryItemRequest) ToRatedItem(kind catalog.Kind) library.RatedItem {
	item := library.RatedItem{
		Item: catalog.Item{
			ID:           r.ID,
			Kind:         kind,
			Title:        r.Title,
			Overview:     r.Overview,
			PosterPath:   r.PosterPath,
			BackdropPath: r.BackdropPath,
			ReleaseDate:  r.ReleaseDate,
			VoteAverage:  r.VoteAverage,
			Metacritic:   r.Metacritic,
			Playtime:     r.Playtime,
		},
		Rating: r.Rating,
	}
	if r.WatchedAt != nil {
		item.WatchedAt = *r.WatchedAt
	}
	return item
}

// RateRequest sets a rating on the 0-10 scale. Values are rounded to one
// decimal before they are stored.
type RateRequest struct {
	Rating *float64 `json:"rating" binding:"required,min=0,max=10"`
}

// LibraryListResponse: list of library entries
type LibraryListResponse struct {
	Items []library.Entry `json:"items"`
	Total int             `json:"total"`
}
