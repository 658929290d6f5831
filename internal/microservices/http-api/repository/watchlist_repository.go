package repository

import (
	"context"
	"fmt"

	"mediahub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WatchlistRepository interface {
	Add(ctx context.Context, movie *models.WatchlistMovie) error
	Remove(ctx context.Context, userID string, movieID int64) error
	List(ctx context.Context, userID string) ([]models.WatchlistMovie, error)
	Exists(ctx context.Context, userID string, movieID int64) (bool, error)
}

type watchlistRepository struct {
	db *gorm.DB
}

func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

// Add is idempotent; adding a movie twice keeps the original added_at.
func (r *watchlistRepository) Add(ctx context.Context, movie *models.WatchlistMovie) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(movie).Error; err != nil {
		return fmt.Errorf("add to watchlist: %w", err)
	}
	return nil
}

func (r *watchlistRepository) Remove(ctx context.Context, userID string, movieID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&models.WatchlistMovie{})
	if result.Error != nil {
		return fmt.Errorf("remove from watchlist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *watchlistRepository) List(ctx context.Context, userID string) ([]models.WatchlistMovie, error) {
	var movies []models.WatchlistMovie
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	return movies, nil
}

func (r *watchlistRepository) Exists(ctx context.Context, userID string, movieID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WatchlistMovie{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
