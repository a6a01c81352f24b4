package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptLog は受理された分別結果の追記専用ログです。
// 1件の正解確定につき1行。更新・削除はアカウント削除カスケードのみ。
// 当日の行数がそのままデイリークォータの消費数になります。
type AttemptLog struct {
	AttemptID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"attempt_id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index:idx_attempt_user_date" json:"user_id"`
	WasteID       uuid.UUID `gorm:"type:uuid;not null" json:"waste_id"`
	IsCorrect     bool      `gorm:"not null" json:"is_correct"`
	FirstTry      bool      `gorm:"not null" json:"first_try"`
	PointsAwarded int       `gorm:"not null" json:"points_awarded"`
	Co2Awarded    float64   `gorm:"not null" json:"co2_awarded"`
	CreatedAt     time.Time `gorm:"index:idx_attempt_user_date" json:"created_at"`

	// 関連 (Preload用)
	WasteItem *WasteItem `gorm:"foreignKey:WasteID;references:WasteID" json:"-"`
}

func (AttemptLog) TableName() string {
	return "attempt_logs"
}

// SubmitAttemptRequest は分別試行のリクエストDTO。
// どのアイテムに対する試行かはサーバー側のラウンド状態が保持しているため、
// クライアントはドロップ先のコンテナタグだけを送ります。
type SubmitAttemptRequest struct {
	BinTag string `json:"bin_tag" validate:"required,oneof=yellow blue green grey special"`
}

// AttemptResultResponse は試行結果のレスポンスDTO。
// first_try は正解確定時のみ意味を持ち、誤答レスポンスには含まれません。
type AttemptResultResponse struct {
	Correct      bool    `json:"correct"`
	FirstTry     bool    `json:"first_try,omitempty"`
	PointsDelta  int     `json:"points_delta"`
	Co2Delta     float64 `json:"co2_delta"`
	Hint         string  `json:"hint,omitempty"`   // 誤答時のみ
	Advice       string  `json:"advice,omitempty"` // 正解時のみ
	TotalPoints  int     `json:"total_points"`
	TotalCo2     float64 `json:"total_co2_avoided"`
	DailyCount   int     `json:"daily_count"`
	QuotaReached bool    `json:"quota_reached"`
}

// StartRoundResponse はラウンド開始時のレスポンスDTO
type StartRoundResponse struct {
	Current    *WasteItem `json:"current"`
	ItemCount  int        `json:"item_count"`
	DailyCount int        `json:"daily_count"`
	Quota      int        `json:"quota"`
}

// AdvanceResponse は「次のアイテムへ」のレスポンスDTO
type AdvanceResponse struct {
	Current *WasteItem `json:"current"`
}

// DailyStatsResponse は当日の統計レスポンスDTO
type DailyStatsResponse struct {
	TotalPoints     int     `json:"total_points"`
	TotalCo2Avoided float64 `json:"total_co2_avoided"`
	DailyCount      int     `json:"daily_count"`
	Quota           int     `json:"quota"`
	QuotaReached    bool    `json:"quota_reached"`
}

// HistoryEntryResponse は直近履歴1件のレスポンスDTO
type HistoryEntryResponse struct {
	ItemName  string    `json:"item_name"`
	Icon      string    `json:"icon"`
	IsCorrect bool      `json:"is_correct"`
	FirstTry  bool      `json:"first_try"`
	CreatedAt time.Time `json:"created_at"`
}
