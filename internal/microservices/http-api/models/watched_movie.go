package models

import "time"

type WatchedMovie struct {
	UserID      string    `json:"user_id" gorm:"primaryKey;type:uuid"`
	MovieID     int64     `json:"movie_id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Overview    string    `json:"overview,omitempty"`
	PosterPath  string    `json:"poster_path,omitempty"`
	ReleaseDate string    `json:"release_date,omitempty" gorm:"size:10"`
	VoteAverage float64   `json:"vote_average"`
	Rating      *float64  `json:"rating,omitempty" gorm:"type:numeric(3,1);check:rating >= 0 AND rating <= 10"`
	WatchedAt   time.Time `json:"watched_at" gorm:"not null"`
	AddedAt     time.Time `json:"added_at" gorm:"autoCreateTime;index"`
}

func (WatchedMovie) TableName() string {
	return "watched_movies"
}
