//go:generate mockery --name WasteRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"ecoguide/internal/middleware"
	"ecoguide/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WasteRepository インターフェース
type WasteRepository interface {
	Create(ctx context.Context, tx *gorm.DB, item *model.WasteItem) error
	FindByID(ctx context.Context, db *gorm.DB, wasteID uuid.UUID) (*model.WasteItem, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]*model.WasteItem, error)
	Update(ctx context.Context, tx *gorm.DB, wasteID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, wasteID uuid.UUID) error
	CheckNameExists(ctx context.Context, db *gorm.DB, name string, excludeWasteID *uuid.UUID) (bool, error)
}

type gormWasteRepository struct{}

func NewGormWasteRepository() WasteRepository {
	return &gormWasteRepository{}
}

func (r *gormWasteRepository) Create(ctx context.Context, tx *gorm.DB, item *model.WasteItem) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(item)
	if result.Error != nil {
		logger.Error("Error creating waste item in DB",
			"error", result.Error,
			"name", item.Name,
		)
		return fmt.Errorf("gormWasteRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormWasteRepository) FindByID(ctx context.Context, db *gorm.DB, wasteID uuid.UUID) (*model.WasteItem, error) {
	logger := middleware.GetLogger(ctx)
	var item model.WasteItem
	result := db.WithContext(ctx).Where("waste_id = ?", wasteID).First(&item)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding waste item by ID in DB",
			"error", result.Error,
			"waste_id", wasteID.String(),
		)
		return nil, fmt.Errorf("gormWasteRepository.FindByID: %w", result.Error)
	}
	return &item, nil
}

func (r *gormWasteRepository) FindAll(ctx context.Context, db *gorm.DB) ([]*model.WasteItem, error) {
	logger := middleware.GetLogger(ctx)
	var items []*model.WasteItem
	result := db.WithContext(ctx).Order("created_at ASC").Find(&items)
	if result.Error != nil {
		logger.Error("Error finding waste items in DB",
			"error", result.Error,
		)
		return nil, fmt.Errorf("gormWasteRepository.FindAll: %w", result.Error)
	}
	return items, nil
}

func (r *gormWasteRepository) Update(ctx context.Context, tx *gorm.DB, wasteID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.WasteItem{}).Where("waste_id = ?", wasteID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating waste item in DB",
			"error", result.Error,
			"waste_id", wasteID.String(),
		)
		return fmt.Errorf("gormWasteRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormWasteRepository) Delete(ctx context.Context, tx *gorm.DB, wasteID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("waste_id = ?", wasteID).Delete(&model.WasteItem{})
	if result.Error != nil {
		logger.Error("Error deleting waste item in DB",
			"error", result.Error,
			"waste_id", wasteID.String(),
		)
		return fmt.Errorf("gormWasteRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormWasteRepository) CheckNameExists(ctx context.Context, db *gorm.DB, name string, excludeWasteID *uuid.UUID) (bool, error) {
	logger := middleware.GetLogger(ctx)
	var count int64
	query := db.WithContext(ctx).Model(&model.WasteItem{}).Where("name = ?", name)
	if excludeWasteID != nil {
		query = query.Where("waste_id != ?", *excludeWasteID)
	}
	result := query.Count(&count)
	if result.Error != nil {
		logger.Error("Error checking waste item name existence in DB",
			"error", result.Error,
			"name", name,
		)
		return false, fmt.Errorf("gormWasteRepository.CheckNameExists: %w", result.Error)
	}
	return count > 0, nil
}
