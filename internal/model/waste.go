package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 分別先コンテナの種別タグ。クライアントのドロップ先と1対1で対応します。
const (
	BinYellow  = "yellow"  // プラスチック・缶
	BinBlue    = "blue"    // 紙・段ボール
	BinGreen   = "green"   // ガラス
	BinGrey    = "grey"    // 生ごみ
	BinSpecial = "special" // 危険物
)

// WasteItem は分別対象の廃棄物を表します。ゲーム中は読み取り専用です。
type WasteItem struct {
	WasteID   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"waste_id"`
	Name      string         `gorm:"not null" json:"name"`
	BinTag    string         `gorm:"type:varchar(20);not null;index" json:"bin_tag"`
	Hint      string         `json:"hint"`   // 誤答時に表示するヒント
	Advice    string         `json:"advice"` // 正解時に表示するアドバイス
	Icon      string         `json:"icon"`   // 絵文字フォールバック
	ImageURL  string         `json:"image_url"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // 論理削除用
}

func (WasteItem) TableName() string {
	return "waste_items"
}

// 廃棄物アイテム作成リクエストDTO
type PostWasteItemRequest struct {
	Name     string `json:"name" validate:"required"`
	BinTag   string `json:"bin_tag" validate:"required,oneof=yellow blue green grey special"`
	Hint     string `json:"hint"`
	Advice   string `json:"advice"`
	Icon     string `json:"icon"`
	ImageURL string `json:"image_url"`
}

// 廃棄物アイテム更新（部分）リクエストDTO
type PatchWasteItemRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1"`
	BinTag   *string `json:"bin_tag,omitempty" validate:"omitempty,oneof=yellow blue green grey special"`
	Hint     *string `json:"hint,omitempty"`
	Advice   *string `json:"advice,omitempty"`
	Icon     *string `json:"icon,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}
