package service

import (
	"context"
	"errors"

	"ecoguide/internal/config"
	"ecoguide/internal/middleware"
	"ecoguide/internal/model"
	"ecoguide/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService はプロフィールの参照・更新・退会を提供します
type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	attemptRepo repository.AttemptRepository
	cfg         *config.Config
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository, attemptRepo repository.AttemptRepository, cfg *config.Config) UserService {
	return &userService{
		db:          db,
		userRepo:    userRepo,
		attemptRepo: attemptRepo,
		cfg:         cfg,
	}
}

// GetProfile は基本情報と直近の分別履歴をまとめて返します
func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.ProfileResponse, error) {
	logger := middleware.GetLogger(ctx)

	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("User not found", "user_id", userID.String())
			return nil, model.NewAppError("NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	attempts, err := s.attemptRepo.FindRecentByUser(ctx, s.db, userID, s.cfg.Game.HistoryLimit)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	history := make([]model.HistoryEntryResponse, 0, len(attempts))
	for _, a := range attempts {
		entry := model.HistoryEntryResponse{
			IsCorrect: a.IsCorrect,
			FirstTry:  a.FirstTry,
			CreatedAt: a.CreatedAt,
		}
		// アイテムがカタログから削除済みの場合、Preload結果はnilになりえます
		if a.WasteItem != nil {
			entry.ItemName = a.WasteItem.Name
			entry.Icon = a.WasteItem.Icon
		}
		history = append(history, entry)
	}

	return &model.ProfileResponse{
		User:    model.NewUserResponse(user),
		History: history,
	}, nil
}

// UpdateProfile は名前・メール・パスワードを部分更新します
func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var updatedUser *model.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.userRepo.FindByID(ctx, tx, userID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
		}

		updates := make(map[string]interface{})

		if req.Name != nil {
			other, err := s.userRepo.FindByName(ctx, tx, *req.Name)
			if err != nil && !errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
			}
			if err == nil && other.UserID != userID {
				return model.NewAppError("DUPLICATE_NAME", "そのユーザ名は既に使用されています。", "name", model.ErrConflict)
			}
			updates["name"] = *req.Name
		}

		if req.Email != nil {
			other, err := s.userRepo.FindByEmail(ctx, tx, *req.Email)
			if err != nil && !errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
			}
			if err == nil && other.UserID != userID {
				return model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
			}
			updates["email"] = *req.Email
		}

		if req.Password != nil {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				return model.NewAppError("INTERNAL_SERVER_ERROR", "パスワードの処理中にエラーが発生しました。", "", err)
			}
			updates["password_hash"] = string(hashedPassword)
		}

		if err := s.userRepo.Update(ctx, tx, userID, updates); err != nil {
			if errors.Is(err, model.ErrConflict) {
				return model.NewAppError("DUPLICATE_ENTRY", "指定された名前またはEmailは既に使用されています。", "name,email", model.ErrConflict)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "プロフィールの更新に失敗しました。", "", err)
		}

		user, err := s.userRepo.FindByID(ctx, tx, userID)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
		}
		updatedUser = user
		return nil
	})

	if err != nil {
		return nil, err
	}

	logger.Info("Profile updated", "user_id", userID.String())
	return updatedUser, nil
}

// DeleteAccount はユーザーと関連データ (分別ログ) を同一トランザクションで削除します
func (s *userService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.attemptRepo.DeleteByUser(ctx, tx, userID); err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "アカウントの削除に失敗しました。", "", err)
		}
		if err := s.userRepo.Delete(ctx, tx, userID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "アカウントの削除に失敗しました。", "", err)
		}
		return nil
	})

	if err != nil {
		return err
	}

	logger.Info("Account deleted", "user_id", userID.String())
	return nil
}
