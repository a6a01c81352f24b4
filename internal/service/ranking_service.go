package service

import (
	"context"
	"encoding/json"

	"ecoguide/internal/config"
	"ecoguide/internal/middleware"
	"ecoguide/internal/model"
	"ecoguide/internal/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const rankingCacheKey = "ecoguide:ranking:top"

// RankingService は累計ポイント上位のランキングを提供します。
// Redisが設定されている場合は結果を短時間キャッシュします。
// キャッシュ層の障害はDB直読みにフォールバックし、エラーにはしません。
type RankingService interface {
	GetRanking(ctx context.Context) ([]model.RankingEntry, error)
}

type rankingService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	rdb      *redis.Client // nilの場合はキャッシュなし
	cfg      *config.Config
}

func NewRankingService(db *gorm.DB, userRepo repository.UserRepository, rdb *redis.Client, cfg *config.Config) RankingService {
	return &rankingService{
		db:       db,
		userRepo: userRepo,
		rdb:      rdb,
		cfg:      cfg,
	}
}

func (s *rankingService) GetRanking(ctx context.Context) ([]model.RankingEntry, error) {
	logger := middleware.GetLogger(ctx)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, rankingCacheKey).Bytes()
		if err == nil {
			var entries []model.RankingEntry
			if err := json.Unmarshal(cached, &entries); err == nil {
				return entries, nil
			}
			// 壊れたキャッシュは無視してDBから読み直す
			logger.Warn("Broken ranking cache entry, falling back to DB")
		} else if err != redis.Nil {
			logger.Warn("Redis unavailable for ranking cache", "error", err)
		}
	}

	users, err := s.userRepo.FindTopByPoints(ctx, s.db, s.cfg.Game.RankingLimit)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "ランキングの取得に失敗しました。", "", err)
	}

	entries := make([]model.RankingEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, model.RankingEntry{
			Name:            u.Name,
			TotalPoints:     u.TotalPoints,
			TotalCo2Avoided: u.TotalCo2Avoided,
		})
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.rdb.Set(ctx, rankingCacheKey, payload, s.cfg.Redis.RankingTTL).Err(); err != nil {
				logger.Warn("Failed to store ranking cache", "error", err)
			}
		}
	}

	return entries, nil
}
