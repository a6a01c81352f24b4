package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ユーザーの基本情報と累積スコア。
// TotalPoints / TotalCo2Avoided はサーバー側でのみ加算され、
// アカウント削除以外で減少することはありません。
type User struct {
	UserID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	Name            string         `gorm:"unique;not null" json:"name"`
	Email           string         `gorm:"unique;not null" json:"email"`
	PasswordHash    string         `gorm:"not null" json:"-"`
	TotalPoints     int            `gorm:"not null;default:0" json:"total_points"`
	TotalCo2Avoided float64        `gorm:"not null;default:0" json:"total_co2_avoided"`
	IsActive        bool           `gorm:"default:false" json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// GORM用のリレーション (JSONには含めない)
	Attempts []AttemptLog `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

type ContextKey string

const (
	UserIDKey ContextKey = "userID"
)

// RegisterRequest は新規登録APIのリクエストボディの構造体 (DTO)
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UpdateProfileRequest はプロフィール部分更新のDTO
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

// UserResponse はクライアントに返すユーザー情報の構造体
type UserResponse struct {
	UserID          uuid.UUID `json:"user_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	TotalPoints     int       `json:"total_points"`
	TotalCo2Avoided float64   `json:"total_co2_avoided"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewUserResponse はUserモデルからレスポンスDTOを生成します
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		UserID:          u.UserID,
		Name:            u.Name,
		Email:           u.Email,
		TotalPoints:     u.TotalPoints,
		TotalCo2Avoided: u.TotalCo2Avoided,
		CreatedAt:       u.CreatedAt,
	}
}

// ProfileResponse はプロフィール画面用 (基本情報 + 直近の履歴)
type ProfileResponse struct {
	User    UserResponse           `json:"user"`
	History []HistoryEntryResponse `json:"history"`
}
