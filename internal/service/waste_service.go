// internal/service/waste_service.go
package service

import (
	"context"
	"errors"
	"log"

	"ecoguide/internal/model"
	"ecoguide/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WasteService interface {
	CreateWasteItem(ctx context.Context, req *model.PostWasteItemRequest) (*model.WasteItem, error)
	GetWasteItem(ctx context.Context, wasteID uuid.UUID) (*model.WasteItem, error)
	ListWasteItems(ctx context.Context) ([]*model.WasteItem, error)
	UpdateWasteItem(ctx context.Context, wasteID uuid.UUID, req *model.PatchWasteItemRequest) (*model.WasteItem, error)
	DeleteWasteItem(ctx context.Context, wasteID uuid.UUID) error
}

type wasteService struct {
	db        *gorm.DB // トランザクション用にDB接続を持つ
	wasteRepo repository.WasteRepository
}

func NewWasteService(db *gorm.DB, wasteRepo repository.WasteRepository) WasteService {
	return &wasteService{
		db:        db,
		wasteRepo: wasteRepo,
	}
}

func (s *wasteService) CreateWasteItem(ctx context.Context, req *model.PostWasteItemRequest) (*model.WasteItem, error) {
	if req.Name == "" || req.BinTag == "" {
		return nil, model.ErrInvalidInput
	}

	var createdItem *model.WasteItem

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 重複チェック
		exists, err := s.wasteRepo.CheckNameExists(ctx, tx, req.Name, nil)
		if err != nil {
			log.Printf("Error checking name existence in transaction: %v", err)
			return model.ErrInternalServer
		}
		if exists {
			return model.ErrConflict // 重複エラー
		}

		// 2. アイテムを作成
		item := &model.WasteItem{
			WasteID:  uuid.New(),
			Name:     req.Name,
			BinTag:   req.BinTag,
			Hint:     req.Hint,
			Advice:   req.Advice,
			Icon:     req.Icon,
			ImageURL: req.ImageURL,
		}
		if err := s.wasteRepo.Create(ctx, tx, item); err != nil {
			log.Printf("Error creating waste item in transaction: %v", err)
			return model.ErrInternalServer
		}

		createdItem = item
		return nil // コミット
	})

	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, err // そのまま返す
		}
		log.Printf("Transaction failed for CreateWasteItem: %v", err)
		return nil, model.ErrInternalServer
	}

	return createdItem, nil
}

func (s *wasteService) GetWasteItem(ctx context.Context, wasteID uuid.UUID) (*model.WasteItem, error) {
	// サービス層でDB接続(s.db)を渡す
	item, err := s.wasteRepo.FindByID(ctx, s.db, wasteID)
	if err != nil {
		// エラーはリポジトリで変換済みのはず
		return nil, err
	}
	return item, nil
}

func (s *wasteService) ListWasteItems(ctx context.Context) ([]*model.WasteItem, error) {
	items, err := s.wasteRepo.FindAll(ctx, s.db)
	if err != nil {
		log.Printf("Error listing waste items: %v", err)
		return nil, model.ErrInternalServer
	}
	return items, nil
}

func (s *wasteService) UpdateWasteItem(ctx context.Context, wasteID uuid.UUID, req *model.PatchWasteItemRequest) (*model.WasteItem, error) {
	var updatedItem *model.WasteItem

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 存在確認 (トランザクション内でロックを取得する意味合いもある)
		_, err := s.wasteRepo.FindByID(ctx, tx, wasteID)
		if err != nil {
			return err // model.ErrNotFound or internal
		}

		// 2. 更新内容を組み立て (部分更新)
		updates := make(map[string]interface{})
		if req.Name != nil {
			exists, err := s.wasteRepo.CheckNameExists(ctx, tx, *req.Name, &wasteID)
			if err != nil {
				log.Printf("Error checking name existence in transaction: %v", err)
				return model.ErrInternalServer
			}
			if exists {
				return model.ErrConflict
			}
			updates["name"] = *req.Name
		}
		if req.BinTag != nil {
			updates["bin_tag"] = *req.BinTag
		}
		if req.Hint != nil {
			updates["hint"] = *req.Hint
		}
		if req.Advice != nil {
			updates["advice"] = *req.Advice
		}
		if req.Icon != nil {
			updates["icon"] = *req.Icon
		}
		if req.ImageURL != nil {
			updates["image_url"] = *req.ImageURL
		}

		if err := s.wasteRepo.Update(ctx, tx, wasteID, updates); err != nil {
			return err
		}

		// 3. 更新後の状態を読み直す
		item, err := s.wasteRepo.FindByID(ctx, tx, wasteID)
		if err != nil {
			return err
		}
		updatedItem = item
		return nil
	})

	if err != nil {
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrConflict) {
			return nil, err
		}
		log.Printf("Transaction failed for UpdateWasteItem: %v", err)
		return nil, model.ErrInternalServer
	}

	return updatedItem, nil
}

func (s *wasteService) DeleteWasteItem(ctx context.Context, wasteID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.wasteRepo.Delete(ctx, tx, wasteID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		log.Printf("Transaction failed for DeleteWasteItem: %v", err)
		return model.ErrInternalServer
	}
	return nil
}
