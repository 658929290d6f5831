package models

import "time"

type WatchlistMovie struct {
	UserID      string    `json:"user_id" gorm:"primaryKey;type:uuid"`
	MovieID     int64     `json:"movie_id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Overview    string    `json:"overview,omitempty"`
	PosterPath  string    `json:"poster_path,omitempty"`
	ReleaseDate string    `json:"release_date,omitempty" gorm:"size:10"`
	VoteAverage float64   `json:"vote_average"`
	AddedAt     time.Time `json:"added_at" gorm:"autoCreateTime;index"`
}

func (WatchlistMovie) TableName() string {
	return "watchlist_movies"
}
