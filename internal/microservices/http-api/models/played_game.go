package models

import "time"

// PlayedGame keeps RAWG's community rating (0-5) next to the user's own
// 0-10 rating.
type PlayedGame struct {
	UserID          string    `json:"user_id" gorm:"primaryKey;type:uuid"`
	GameID          int64     `json:"game_id" gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"not null"`
	BackgroundImage string    `json:"background_image,omitempty"`
	Released        string    `json:"released,omitempty" gorm:"size:10"`
	Rating          float64   `json:"rating"`
	Metacritic      *int      `json:"metacritic,omitempty"`
	Playtime        int       `json:"playtime"`
	UserRating      *float64  `json:"user_rating,omitempty" gorm:"type:numeric(3,1);check:user_rating >= 0 AND user_rating <= 10"`
	PlayedAt        time.Time `json:"played_at" gorm:"not null"`
	AddedAt         time.Time `json:"added_at" gorm:"autoCreateTime;index"`
}

func (PlayedGame) TableName() string {
	return "played_games"
}
