// internal/config/constants.go
package config

import "time"

// アプリケーション情報
const (
	AppName    = "EcoGuide"
	AppVersion = "1.1.0"
)

// デフォルト設定値
const (
	DefaultServerPort      = ":8080"
	DefaultLogLevel        = "info"
	DefaultDailyQuota      = 10
	DefaultPointsPerItem   = 10
	DefaultCo2PerItem      = 0.05 // kg / 正解1件
	DefaultRankingLimit    = 10
	DefaultHistoryLimit    = 5
	DefaultAccessTokenTTL  = 24 * time.Hour
	DefaultRankingCacheTTL = 60 * time.Second
)
