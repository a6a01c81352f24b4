//go:generate mockery --name AttemptRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"fmt"
	"time"

	"ecoguide/internal/middleware"
	"ecoguide/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttemptRepository インターフェース。回答ログは追記専用で、更新操作は持ちません。
type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *model.AttemptLog) error
	// CountSince は since 以降に記録された正解ログの件数を返します。
	CountSince(ctx context.Context, db *gorm.DB, userID uuid.UUID, since time.Time) (int64, error)
	FindRecentByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]*model.AttemptLog, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type gormAttemptRepository struct{}

func NewGormAttemptRepository() AttemptRepository {
	return &gormAttemptRepository{}
}

func (r *gormAttemptRepository) Create(ctx context.Context, tx *gorm.DB, attempt *model.AttemptLog) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(attempt)
	if result.Error != nil {
		logger.Error("Error creating attempt log in DB",
			"error", result.Error,
			"user_id", attempt.UserID.String(),
			"waste_id", attempt.WasteID.String(),
		)
		return fmt.Errorf("gormAttemptRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormAttemptRepository) CountSince(ctx context.Context, db *gorm.DB, userID uuid.UUID, since time.Time) (int64, error) {
	logger := middleware.GetLogger(ctx)
	var count int64
	result := db.WithContext(ctx).Model(&model.AttemptLog{}).
		Where("user_id = ? AND is_correct = ? AND created_at >= ?", userID, true, since).
		Count(&count)
	if result.Error != nil {
		logger.Error("Error counting attempt logs in DB",
			"error", result.Error,
			"user_id", userID.String(),
		)
		return 0, fmt.Errorf("gormAttemptRepository.CountSince: %w", result.Error)
	}
	return count, nil
}

func (r *gormAttemptRepository) FindRecentByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]*model.AttemptLog, error) {
	logger := middleware.GetLogger(ctx)
	var attempts []*model.AttemptLog
	result := db.WithContext(ctx).
		Preload("WasteItem").
		Where("user_id = ? AND is_correct = ?", userID, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&attempts)
	if result.Error != nil {
		logger.Error("Error finding recent attempt logs in DB",
			"error", result.Error,
			"user_id", userID.String(),
		)
		return nil, fmt.Errorf("gormAttemptRepository.FindRecentByUser: %w", result.Error)
	}
	return attempts, nil
}

func (r *gormAttemptRepository) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.AttemptLog{})
	if result.Error != nil {
		logger.Error("Error deleting attempt logs in DB",
			"error", result.Error,
			"user_id", userID.String(),
		)
		return fmt.Errorf("gormAttemptRepository.DeleteByUser: %w", result.Error)
	}
	return nil
}
