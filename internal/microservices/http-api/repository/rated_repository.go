package repository

import (
	"context"
	"errors"
	"fmt"

	"mediahub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

// RatedRepository persists one user's rated library rows, keyed by user and
// catalog id.
type RatedRepository[T any] interface {
	// Upsert inserts row or refreshes its metadata. The stored rating is only
	// overwritten when withRating is set.
	Upsert(ctx context.Context, row *T, withRating bool) error
	UpdateRating(ctx context.Context, userID string, id int64, rating float64) error
	Remove(ctx context.Context, userID string, id int64) error
	Get(ctx context.Context, userID string, id int64) (*T, error)
	List(ctx context.Context, userID string) ([]T, error)
}

type ratedRepository[T any] struct {
	db           *gorm.DB
	keyColumn    string
	ratingColumn string
	metaColumns  []string
}

func NewWatchedRepository(db *gorm.DB) RatedRepository[models.WatchedMovie] {
	return &ratedRepository[models.WatchedMovie]{
		db:           db,
		keyColumn:    "movie_id",
		ratingColumn: "rating",
		metaColumns:  []string{"title", "overview", "poster_path", "release_date", "vote_average", "watched_at"},
	}
}

func NewPlayedRepository(db *gorm.DB) RatedRepository[models.PlayedGame] {
	return &ratedRepository[models.PlayedGame]{
		db:           db,
		keyColumn:    "game_id",
		ratingColumn: "user_rating",
		metaColumns:  []string{"name", "background_image", "released", "rating", "metacritic", "playtime", "played_at"},
	}
}

func (r *ratedRepository[T]) Upsert(ctx context.Context, row *T, withRating bool) error {
	columns := r.metaColumns
	if withRating {
		columns = append(append([]string(nil), columns...), r.ratingColumn)
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: r.keyColumn}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("upsert %s: %w", r.keyColumn, err)
	}
	return nil
}

func (r *ratedRepository[T]) UpdateRating(ctx context.Context, userID string, id int64, rating float64) error {
	result := r.db.WithContext(ctx).
		Model(new(T)).
		Where("user_id = ? AND "+r.keyColumn+" = ?", userID, id).
		Update(r.ratingColumn, rating)
	if result.Error != nil {
		return fmt.Errorf("update rating: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ratedRepository[T]) Remove(ctx context.Context, userID string, id int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND "+r.keyColumn+" = ?", userID, id).
		Delete(new(T))
	if result.Error != nil {
		return fmt.Errorf("remove: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ratedRepository[T]) Get(ctx context.Context, userID string, id int64) (*T, error) {
	row := new(T)
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND "+r.keyColumn+" = ?", userID, id).
		First(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	return row, nil
}

// List orders by rating (unrated last), then most recently added.
func (r *ratedRepository[T]) List(ctx context.Context, userID string) ([]T, error) {
	var rows []T
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(r.ratingColumn + " DESC NULLS LAST").
		Order("added_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return rows, nil
}
