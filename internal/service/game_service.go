//go:generate mockery --name GameService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"ecoguide/internal/config"
	"ecoguide/internal/game"
	"ecoguide/internal/middleware"
	"ecoguide/internal/model"
	"ecoguide/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GameService は分別ゲームのセッション進行を提供します。
// ラウンド状態 (出題順・カーソル・ミス有無) はプロセス内のセッションに保持し、
// スコアとデイリーカウントの正はDB側の台帳 (users / attempt_logs) に置きます。
type GameService interface {
	StartRound(ctx context.Context, userID uuid.UUID) (*model.StartRoundResponse, error)
	SubmitAttempt(ctx context.Context, userID uuid.UUID, req *model.SubmitAttemptRequest) (*model.AttemptResultResponse, error)
	Advance(ctx context.Context, userID uuid.UUID) (*model.AdvanceResponse, error)
	GetDailyStats(ctx context.Context, userID uuid.UUID) (*model.DailyStatsResponse, error)
	DropSession(userID uuid.UUID)
}

// playSession は1ユーザー分のラウンド状態です。
// 同一ユーザーの並行リクエストはこのmutexで直列化されます。
type playSession struct {
	mu    sync.Mutex
	round *game.Round
}

type gameService struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	wasteRepo   repository.WasteRepository
	attemptRepo repository.AttemptRepository
	cfg         *config.Config

	mu       sync.RWMutex
	sessions map[uuid.UUID]*playSession
}

// NewGameService は GameService の新しいインスタンスを生成します
func NewGameService(db *gorm.DB, userRepo repository.UserRepository, wasteRepo repository.WasteRepository, attemptRepo repository.AttemptRepository, cfg *config.Config) GameService {
	return &gameService{
		db:          db,
		userRepo:    userRepo,
		wasteRepo:   wasteRepo,
		attemptRepo: attemptRepo,
		cfg:         cfg,
		sessions:    make(map[uuid.UUID]*playSession),
	}
}

// startOfToday はサーバーローカル時刻での当日0時を返します。
// デイリークォータの日境界はこの時刻でリセットされます。
func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// StartRound はカタログを抽選してラウンドを開始し、最初のアイテムを返します。
// 既存のラウンドがある場合は破棄して新しいラウンドに置き換えます。
// 置き換えの前に既存セッションのロックを取り、処理中の試行が台帳への書き込みを
// 終えるのを待ってからデイリーカウントを読み直します。コミット前の値を
// 新しいラウンドがキャッシュすると、クォータゲートが1件すり抜けてしまうため。
func (s *gameService) StartRound(ctx context.Context, userID uuid.UUID) (*model.StartRoundResponse, error) {
	logger := middleware.GetLogger(ctx)

	if old := s.getSession(userID); old != nil {
		old.mu.Lock()
		defer old.mu.Unlock()
	}

	items, err := s.wasteRepo.FindAll(ctx, s.db)
	if err != nil {
		logger.Error("Failed to load waste catalog", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "カタログの読み込みに失敗しました。", "", err)
	}

	// 抽選: カタログ全体をコピーしてシャッフル。
	sequence := make([]model.WasteItem, 0, len(items))
	for _, item := range items {
		sequence = append(sequence, *item)
	}
	game.Shuffle(sequence)

	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("User not found on round start", "user_id", userID.String())
			return nil, model.NewAppError("NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	count, err := s.attemptRepo.CountSince(ctx, s.db, userID, startOfToday())
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	round, err := game.NewRound(sequence, user.TotalPoints, user.TotalCo2Avoided, int(count))
	if err != nil {
		logger.Warn("Cannot start round with empty catalog")
		return nil, model.NewAppError("EMPTY_CATALOG", "出題できるアイテムがありません。", "", model.ErrInvalidCatalog)
	}

	s.mu.Lock()
	s.sessions[userID] = &playSession{round: round}
	s.mu.Unlock()

	current := round.Current()
	logger.Info("Round started", "user_id", userID.String(), "item_count", round.Len(), "daily_count", count)
	return &model.StartRoundResponse{
		Current:    &current,
		ItemCount:  round.Len(),
		DailyCount: int(count),
		Quota:      s.cfg.Game.DailyQuota,
	}, nil
}

// SubmitAttempt は現在提示中のアイテムへのドロップを判定します。
// 誤答は状態もDBも変えず、ヒントだけを返します (何度でも再試行可能)。
// 正解はログ行の追記とスコア加算を同一トランザクションで永続化し、
// 成功した場合のみラウンド状態を確定 (Commit) します。永続化に失敗しても
// ラウンドはPresentingのままなので、クライアントはそのまま再送できます。
func (s *gameService) SubmitAttempt(ctx context.Context, userID uuid.UUID, req *model.SubmitAttemptRequest) (*model.AttemptResultResponse, error) {
	logger := middleware.GetLogger(ctx)

	sess := s.getSession(userID)
	if sess == nil {
		logger.Warn("Attempt without an active round", "user_id", userID.String())
		return nil, model.NewAppError("ROUND_NOT_STARTED", "ラウンドが開始されていません。", "", model.ErrRoundNotStarted)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	// ロック待ちの間にStartRoundがセッションを差し替えた場合、
	// 古いラウンドへの送信は受け付けない。
	if s.getSession(userID) != sess {
		logger.Warn("Attempt against a replaced round", "user_id", userID.String())
		return nil, model.NewAppError("ROUND_NOT_STARTED", "ラウンドが開始されていません。", "", model.ErrRoundNotStarted)
	}

	round := sess.round

	// クォータゲート: 受理前にチェック。上限到達後の試行は拒否します。
	_, _, dailyCount := round.Totals()
	if dailyCount >= s.cfg.Game.DailyQuota {
		logger.Info("Daily quota exceeded", "user_id", userID.String(), "daily_count", dailyCount)
		return nil, model.NewAppError("QUOTA_EXCEEDED", "本日の分別回数の上限に達しました。また明日挑戦してください。", "", model.ErrQuotaExceeded)
	}

	correct, firstTry, err := round.Evaluate(req.BinTag)
	if err != nil {
		// AwaitingAdvance中の二重送信
		logger.Warn("Stale attempt rejected", "user_id", userID.String())
		return nil, model.NewAppError("STALE_ATTEMPT", "このアイテムの結果は確定済みです。次のアイテムに進んでください。", "", model.ErrStaleAttempt)
	}

	item := round.Current()

	if !correct {
		// 誤答は記録しません。ヒントを返して再試行を待ちます。
		totalPoints, totalCo2, count := round.Totals()
		return &model.AttemptResultResponse{
			Correct:      false,
			Hint:         item.Hint,
			TotalPoints:  totalPoints,
			TotalCo2:     totalCo2,
			DailyCount:   count,
			QuotaReached: count >= s.cfg.Game.DailyQuota,
		}, nil
	}

	policy := game.ScorePolicy{
		PointsPerItem: s.cfg.Game.PointsPerItem,
		Co2PerItem:    s.cfg.Game.Co2PerItem,
	}
	points, co2 := policy.Score(!firstTry)

	attempt := &model.AttemptLog{
		AttemptID:     uuid.New(),
		UserID:        userID,
		WasteID:       item.WasteID,
		IsCorrect:     true,
		FirstTry:      firstTry,
		PointsAwarded: points,
		Co2Awarded:    co2,
	}

	// ログ追記とスコア加算は同一トランザクション。スコアは読み取り後の
	// 上書きではなくDB側での差分加算なので、並行更新で加算が失われません。
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.attemptRepo.Create(ctx, tx, attempt); err != nil {
			return err
		}
		return s.userRepo.AddScore(ctx, tx, userID, points, co2)
	})
	if err != nil {
		// Commitしていないのでラウンドは未確定のまま。再送すれば同じ判定になります。
		logger.Error("Failed to persist attempt", "error", err, "user_id", userID.String(), "waste_id", item.WasteID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "結果の保存に失敗しました。もう一度お試しください。", "", model.ErrPersistence)
	}

	round.Commit(points, co2)

	totalPoints, totalCo2, count := round.Totals()
	logger.Info("Attempt accepted",
		"user_id", userID.String(),
		"waste_id", item.WasteID.String(),
		"first_try", firstTry,
		"points", points,
		"daily_count", count,
	)
	return &model.AttemptResultResponse{
		Correct:      true,
		FirstTry:     firstTry,
		PointsDelta:  points,
		Co2Delta:     co2,
		Advice:       item.Advice,
		TotalPoints:  totalPoints,
		TotalCo2:     totalCo2,
		DailyCount:   count,
		QuotaReached: count >= s.cfg.Game.DailyQuota,
	}, nil
}

// Advance は確定済みのアイテムから次のアイテムへカーソルを進めます
func (s *gameService) Advance(ctx context.Context, userID uuid.UUID) (*model.AdvanceResponse, error) {
	logger := middleware.GetLogger(ctx)

	sess := s.getSession(userID)
	if sess == nil {
		return nil, model.NewAppError("ROUND_NOT_STARTED", "ラウンドが開始されていません。", "", model.ErrRoundNotStarted)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if s.getSession(userID) != sess {
		return nil, model.NewAppError("ROUND_NOT_STARTED", "ラウンドが開始されていません。", "", model.ErrRoundNotStarted)
	}

	next, err := sess.round.Advance()
	if err != nil {
		logger.Warn("Advance without a committed attempt", "user_id", userID.String())
		return nil, model.NewAppError("STALE_ATTEMPT", "現在のアイテムがまだ確定していません。", "", model.ErrStaleAttempt)
	}

	return &model.AdvanceResponse{Current: &next}, nil
}

// GetDailyStats は台帳から当日の統計を読み直して返します。
// セッションの有無に依存しないため、別端末からの参照でも正しい値になります。
func (s *gameService) GetDailyStats(ctx context.Context, userID uuid.UUID) (*model.DailyStatsResponse, error) {
	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	count, err := s.attemptRepo.CountSince(ctx, s.db, userID, startOfToday())
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	return &model.DailyStatsResponse{
		TotalPoints:     user.TotalPoints,
		TotalCo2Avoided: user.TotalCo2Avoided,
		DailyCount:      int(count),
		Quota:           s.cfg.Game.DailyQuota,
		QuotaReached:    int(count) >= s.cfg.Game.DailyQuota,
	}, nil
}

// DropSession はユーザーのラウンド状態を破棄します (アカウント削除時に使用)
func (s *gameService) DropSession(userID uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}

func (s *gameService) getSession(userID uuid.UUID) *playSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[userID]
}
