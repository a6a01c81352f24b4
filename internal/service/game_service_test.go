// internal/service/game_service_test.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"ecoguide/internal/config"
	"ecoguide/internal/model"
	"ecoguide/internal/repository"
	"ecoguide/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// --- テストヘルパー関数 (インメモリDBセットアップ) ---
func setupTestDBGame(t *testing.T) *gorm.DB {
	// テストごとに独立した名前付きインメモリDBを使う
	dsn := fmt.Sprintf("file:game_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // テスト中はログを抑制
	})
	if err != nil {
		panic("failed to connect database for game service testing: " + err.Error())
	}
	err = db.AutoMigrate(&model.User{}, &model.WasteItem{}, &model.AttemptLog{})
	if err != nil {
		panic("failed to migrate database for game service testing: " + err.Error())
	}
	return db
}

func testGameConfig() *config.Config {
	return &config.Config{
		Game: config.GameConfig{
			DailyQuota:    10,
			PointsPerItem: 10,
			Co2PerItem:    0.05,
			RankingLimit:  10,
			HistoryLimit:  5,
		},
	}
}

func seedTestUser(t *testing.T, db *gorm.DB) *model.User {
	user := &model.User{
		UserID:       uuid.New(),
		Name:         "tester-" + uuid.NewString()[:8],
		Email:        uuid.NewString()[:8] + "@example.com",
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedCatalog(t *testing.T, db *gorm.DB, n int) []model.WasteItem {
	items := make([]model.WasteItem, 0, n)
	tags := []string{model.BinYellow, model.BinBlue, model.BinGreen, model.BinGrey, model.BinSpecial}
	for i := 0; i < n; i++ {
		item := model.WasteItem{
			WasteID: uuid.New(),
			Name:    fmt.Sprintf("item-%d", i),
			BinTag:  tags[i%len(tags)],
			Hint:    fmt.Sprintf("hint-%d", i),
			Advice:  fmt.Sprintf("advice-%d", i),
		}
		require.NoError(t, db.Create(&item).Error)
		items = append(items, item)
	}
	return items
}

func newTestGameService(db *gorm.DB) GameService {
	return NewGameService(
		db,
		repository.NewGormUserRepository(),
		repository.NewGormWasteRepository(),
		repository.NewGormAttemptRepository(),
		testGameConfig(),
	)
}

// 間違いのコンテナタグを返すヘルパー
func wrongTagFor(tag string) string {
	if tag == model.BinYellow {
		return model.BinBlue
	}
	return model.BinYellow
}

func Test_gameService_StartRound(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: カタログからラウンドを開始できる", func(t *testing.T) {
		db := setupTestDBGame(t)
		user := seedTestUser(t, db)
		seedCatalog(t, db, 5)
		svc := newTestGameService(db)

		resp, err := svc.StartRound(ctx, user.UserID)

		require.NoError(t, err)
		assert.Equal(t, 5, resp.ItemCount)
		assert.Equal(t, 0, resp.DailyCount)
		assert.Equal(t, 10, resp.Quota)
		require.NotNil(t, resp.Current)
		assert.NotEmpty(t, resp.Current.BinTag)
	})

	t.Run("異常系: カタログが空の場合はエラー", func(t *testing.T) {
		db := setupTestDBGame(t)
		user := seedTestUser(t, db)
		svc := newTestGameService(db)

		_, err := svc.StartRound(ctx, user.UserID)

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidCatalog)
	})

	t.Run("異常系: 存在しないユーザー", func(t *testing.T) {
		db := setupTestDBGame(t)
		seedCatalog(t, db, 3)
		svc := newTestGameService(db)

		_, err := svc.StartRound(ctx, uuid.New())

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("正常系: 当日の既存ログがdaily_countに反映される", func(t *testing.T) {
		db := setupTestDBGame(t)
		user := seedTestUser(t, db)
		items := seedCatalog(t, db, 3)
		// 当日3件の確定ログを事前投入
		for i := 0; i < 3; i++ {
			require.NoError(t, db.Create(&model.AttemptLog{
				AttemptID: uuid.New(), UserID: user.UserID, WasteID: items[0].WasteID,
				IsCorrect: true, FirstTry: true, PointsAwarded: 10, Co2Awarded: 0.05,
			}).Error)
		}
		// 昨日のログはカウントされない
		require.NoError(t, db.Create(&model.AttemptLog{
			AttemptID: uuid.New(), UserID: user.UserID, WasteID: items[0].WasteID,
			IsCorrect: true, FirstTry: true, PointsAwarded: 10, Co2Awarded: 0.05,
			CreatedAt: time.Now().AddDate(0, 0, -1),
		}).Error)
		svc := newTestGameService(db)

		resp, err := svc.StartRound(ctx, user.UserID)

		require.NoError(t, err)
		assert.Equal(t, 3, resp.DailyCount)
	})
}

func Test_gameService_SubmitAttempt(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 一発正解で満点が加算される", func(t *testing.T) {
		db := setupTestDBGame(t)
		user := seedTestUser(t, db)
		seedCatalog(t, db, 3)
		svc := newTestGameService(db)

		start, err := svc.StartRound(ctx, user.UserID)
		require.NoError(t, err)

		resp, err := svc.SubmitAttempt(ctx, user.UserID, &model.SubmitAttemptRequest{BinTag: start.Current.BinTag})

		require.NoError(t, err)
		assert.True(t, resp.Correct)
		assert.True(t, resp.FirstTry)
		assert.Equal(t, 10, resp.PointsDelta)
		assert.InDelta(t, 0.05, resp.Co2Delta, 1e-9)
		assert.Equal(t, start.Current.Advice, resp.Advice)
		assert.Equal(t, 1, resp.DailyCount)

		// 台帳: スコアが加算され、ログが1行追記されている
		var stored model.User
		require.NoError(t, db.First(&stored, "user_id = ?", user.UserID).Error)
		assert.Equal(t, 10, stored.TotalPoints)
		assert.InDelta(t, 0.05, stored.TotalCo2Avoided, 1e-9)

		var count int64
		require.NoError(t, db.Model(&model.AttemptLog{}).Where("user_id = ?", user.UserID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("正常系: 誤答はヒントだけ返し何も記録しない", func(t *testing.T) {
		db := setupTestDBGame(t)
		user := seedTestUser(t, db)
		seedCatalog(t, db, 3)
		svc := newTestGameService(db)

		start, err := svc.StartRound(ctx, user.UserID)
		require.NoError(t, err)

		resp, err := svc.SubmitAttempt(ctx, user.UserID, &model.SubmitAttemptRequest{BinTag: wrongTagFor(start.Current.BinTag)})

		require.NoError(t, err)
		assert.False(t, resp.Correct)
		assert.Equal(t, start.Current.Hint, resp.Hint)
		assert.Equal(t, 0, resp.PointsDelta)
		assert.Equal(t, 0, resp.DailyCount)

		var count int64
		require.NoError(t, db.Model(&model.AttemptLog{}).Where("user_id = ?", user.UserID).Count(&count).Error)
		assert.Equal(t, int64(0), count, "誤答はログに残らない")

		var stored model.User
		require.NoError(t, db.First(&stored, "user_id = ?", user.UserID).Error)
		assert.Equal(t, 0, stored.TotalPoints)
	})

	t.Run("正常系: ミス後の正解は1行・ゼロ加点で確定する", func(t *testing.T) {
		db := setupTestDBGame(t)
		user := seedTestUser(t, db)
		seedCatalog(t, db, 3)
		svc := newTestGameService(db)

		start, err := svc.StartRound(ctx, user.UserID)
		require.NoError(t, err)

		_, err = svc.SubmitAttempt(ctx, user.UserID, &model.SubmitAttemptRequest{BinTag: wrongTagFor(start.Current.BinTag)})
		require.NoError(t, err)

		resp, err := svc.SubmitAttempt(ctx, user.UserID, &model.SubmitAttemptRequest{BinTag: start.Current.BinTag})

		require.NoError(t, err)
		assert.True(t, resp.Correct)
		assert.False(t, resp.FirstTry)
		assert.Equal(t, 0, resp.PointsDelta)
		assert.InDelta(t, 0.0, resp.Co2Delta, 1e-9)
		assert.Equal(t, 1, resp.DailyCount, "ゼロ加点でもクォータは1消費する")

		var logs []model.AttemptLog
		require.NoError(t, db.Where("user_id = ?", user.UserID).Find(&logs).Error)
		require.Len(t, logs, 1)
		assert.False(t, logs[0].FirstTry)
		assert.Equal(t, 0, logs[0].PointsAwarded)

		var stored model.User
		require.NoError(t, db.First(&stored, "user_id = ?", user.UserID).Error)
		assert.Equal(t, 0, stored.TotalPoints, "ゼロ加点なので累計は変わらない")
	})

	t.Run("異常系: 確定済みアイテムへの再送信は拒否され何も書かない", func(t *testing.T) {
		db := setupTestDBGame(t)
		user := seedTestUser(t, db)
		seedCatalog(t, db, 3)
		svc := newTestGameService(db)

		start, err := svc.StartRound(ctx, user.UserID)
		require.NoError(t, err)

		_, err = svc.SubmitAttempt(ctx, user.UserID, &model.SubmitAttemptRequest{BinTag: start.Current.BinTag})
		require.NoError(t, err)

		// Advanceせずにもう一度送る
		_, err = svc.SubmitAttempt(ctx, user.UserID, &model.SubmitAttemptRequest{BinTag: start.Current.BinTag})

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrStaleAttempt)

		var count int64
		require.NoError(t, db.Model(&model.AttemptLog{}).Where("user_id = ?", user.UserID).Count(&count).Error)
		assert.Equal(t, int64(1), count, "二重送信でログは増えない")
	})

	t.Run("異常系: ラウンド未開始", func(t *testing.T) {
		db := setupTestDBGame(t)
		user := seedTestUser(t, db)
		svc := newTestGameService(db)

		_, err := svc.SubmitAttempt(ctx, user.UserID, &model.SubmitAttemptRequest{BinTag: model.BinYellow})

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrRoundNotStarted)
	})

	t.Run("正常系: 永続化失敗後はそのまま再送できる", func(t *testing.T) {
		db := setupTestDBGame(t)
		user := seedTestUser(t, db)
		seedCatalog(t, db, 3)

		// ログ追記だけモックにして、1回目の書き込みを失敗させる
		mockAttemptRepo := new(mocks.AttemptRepository)
		mockAttemptRepo.On("CountSince", mock.Anything, mock.Anything, user.UserID, mock.AnythingOfType("time.Time")).
			Return(int64(0), nil).Once()
		mockAttemptRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*model.AttemptLog")).
			Return(errors.New("disk full")).Once()
		mockAttemptRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*model.AttemptLog")).
			Return(nil).Once()

		svc := NewGameService(
			db,
			repository.NewGormUserRepository(),
			repository.NewGormWasteRepository(),
			mockAttemptRepo,
			testGameConfig(),
		)

		start, err := svc.StartRound(ctx, user.UserID)
		require.NoError(t, err)

		req := &model.SubmitAttemptRequest{BinTag: start.Current.BinTag}

		// 1回目: 永続化失敗
		_, err = svc.SubmitAttempt(ctx, user.UserID, req)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrPersistence)

		// 2回目: 同じ送信がそのまま受理され、一発正解扱いのまま
		resp, err := svc.SubmitAttempt(ctx, user.UserID, req)
		require.NoError(t, err)
		assert.True(t, resp.Correct)
		assert.True(t, resp.FirstTry, "失敗した試行はミス扱いにならない")
		assert.Equal(t, 10, resp.PointsDelta)

		mockAttemptRepo.AssertExpectations(t)
	})
}

func Test_gameService_Quota(t *testing.T) {
	ctx := context.Background()

	t.Run("10回目は受理され、11回目は拒否される", func(t *testing.T) {
		db := setupTestDBGame(t)
		user := seedTestUser(t, db)
		items := seedCatalog(t, db, 3)
		// 当日9件を事前投入しておく
		for i := 0; i < 9; i++ {
			require.NoError(t, db.Create(&model.AttemptLog{
				AttemptID: uuid.New(), UserID: user.UserID, WasteID: items[0].WasteID,
				IsCorrect: true, FirstTry: true, PointsAwarded: 10, Co2Awarded: 0.05,
			}).Error)
		}
		svc := newTestGameService(db)

		start, err := svc.StartRound(ctx, user.UserID)
		require.NoError(t, err)
		require.Equal(t, 9, start.DailyCount)

		// 10回目: 受理され、quota_reachedが立つ
		resp, err := svc.SubmitAttempt(ctx, user.UserID, &model.SubmitAttemptRequest{BinTag: start.Current.BinTag})
		require.NoError(t, err)
		assert.Equal(t, 10, resp.DailyCount)
		assert.True(t, resp.QuotaReached)

		_, err = svc.Advance(ctx, user.UserID)
		require.NoError(t, err)

		// 11回目: 上限到達で拒否、ログも増えない
		_, err = svc.SubmitAttempt(ctx, user.UserID, &model.SubmitAttemptRequest{BinTag: model.BinYellow})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrQuotaExceeded)

		var count int64
		require.NoError(t, db.Model(&model.AttemptLog{}).Where("user_id = ?", user.UserID).Count(&count).Error)
		assert.Equal(t, int64(10), count)
	})
}

func Test_gameService_RestartDuringCommit(t *testing.T) {
	ctx := context.Background()

	// 10件目の書き込みが進行中のままラウンドを再スタートした場合、
	// 新しいラウンドがコミット前のカウントをキャッシュすると
	// 11件目がゲートをすり抜けてしまう。再スタートはコミット完了を
	// 待ってからカウントを読み直すこと。
	t.Run("正常系: コミット中の再スタートでもクォータを超えない", func(t *testing.T) {
		db := setupTestDBGame(t)
		user := seedTestUser(t, db)
		seedCatalog(t, db, 3)

		entered := make(chan struct{})
		release := make(chan struct{})
		var committed atomic.Bool

		mockAttemptRepo := new(mocks.AttemptRepository)
		mockAttemptRepo.On("CountSince", mock.Anything, mock.Anything, user.UserID, mock.AnythingOfType("time.Time")).
			Return(func(context.Context, *gorm.DB, uuid.UUID, time.Time) int64 {
				if committed.Load() {
					return 10
				}
				return 9
			}, nil)
		// 10件目のログ追記を途中で止められるようにしておく
		mockAttemptRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*model.AttemptLog")).
			Run(func(mock.Arguments) {
				close(entered)
				<-release
				committed.Store(true)
			}).Return(nil).Once()

		svc := NewGameService(
			db,
			repository.NewGormUserRepository(),
			repository.NewGormWasteRepository(),
			mockAttemptRepo,
			testGameConfig(),
		)

		start, err := svc.StartRound(ctx, user.UserID)
		require.NoError(t, err)
		require.Equal(t, 9, start.DailyCount)

		// 10件目の送信を書き込みの途中で止める
		submitDone := make(chan *model.AttemptResultResponse, 1)
		go func() {
			resp, err := svc.SubmitAttempt(ctx, user.UserID, &model.SubmitAttemptRequest{BinTag: start.Current.BinTag})
			assert.NoError(t, err)
			submitDone <- resp
		}()
		<-entered

		// 書き込み中に再スタートをかける
		restartDone := make(chan *model.StartRoundResponse, 1)
		go func() {
			resp, err := svc.StartRound(ctx, user.UserID)
			assert.NoError(t, err)
			restartDone <- resp
		}()

		close(release)

		resp := <-submitDone
		require.NotNil(t, resp)
		assert.Equal(t, 10, resp.DailyCount)
		assert.True(t, resp.QuotaReached)

		restart := <-restartDone
		require.NotNil(t, restart)
		assert.Equal(t, 10, restart.DailyCount, "再スタート後のカウントはコミット済みの値")

		// 新しいラウンド経由の11件目は上限到達で拒否され、ログ追記も走らない
		_, err = svc.SubmitAttempt(ctx, user.UserID, &model.SubmitAttemptRequest{BinTag: restart.Current.BinTag})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrQuotaExceeded)

		mockAttemptRepo.AssertExpectations(t)
	})
}

func Test_gameService_Advance(t *testing.T) {
	ctx := context.Background()

	t.Run("異常系: 確定前のAdvanceは拒否される", func(t *testing.T) {
		db := setupTestDBGame(t)
		user := seedTestUser(t, db)
		seedCatalog(t, db, 3)
		svc := newTestGameService(db)

		_, err := svc.StartRound(ctx, user.UserID)
		require.NoError(t, err)

		_, err = svc.Advance(ctx, user.UserID)

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrStaleAttempt)
	})

	t.Run("正常系: カーソルは末尾で先頭に巻き戻る", func(t *testing.T) {
		db := setupTestDBGame(t)
		user := seedTestUser(t, db)
		seedCatalog(t, db, 2)
		svc := newTestGameService(db)

		start, err := svc.StartRound(ctx, user.UserID)
		require.NoError(t, err)

		seen := []string{start.Current.Name}
		current := start.Current
		for i := 0; i < 2; i++ {
			_, err = svc.SubmitAttempt(ctx, user.UserID, &model.SubmitAttemptRequest{BinTag: current.BinTag})
			require.NoError(t, err)
			adv, err := svc.Advance(ctx, user.UserID)
			require.NoError(t, err)
			seen = append(seen, adv.Current.Name)
			current = adv.Current
		}

		// 2アイテムを2回進めたので、3番目の出題は最初のアイテムに戻っている
		assert.Equal(t, seen[0], seen[2])
		assert.NotEqual(t, seen[0], seen[1])
	})
}

func Test_gameService_Accumulation(t *testing.T) {
	ctx := context.Background()

	// N回の一発正解で累計が 10N / 0.05N になる
	t.Run("正常系: クォータ上限まで一発正解し続けた場合の累計", func(t *testing.T) {
		db := setupTestDBGame(t)
		user := seedTestUser(t, db)
		seedCatalog(t, db, 4)
		svc := newTestGameService(db)

		start, err := svc.StartRound(ctx, user.UserID)
		require.NoError(t, err)

		current := start.Current
		var last *model.AttemptResultResponse
		for i := 0; i < 10; i++ {
			last, err = svc.SubmitAttempt(ctx, user.UserID, &model.SubmitAttemptRequest{BinTag: current.BinTag})
			require.NoError(t, err)
			adv, err := svc.Advance(ctx, user.UserID)
			require.NoError(t, err)
			current = adv.Current
		}

		assert.Equal(t, 100, last.TotalPoints)
		assert.InDelta(t, 0.5, last.TotalCo2, 1e-9)
		assert.Equal(t, 10, last.DailyCount)
		assert.True(t, last.QuotaReached)

		var stored model.User
		require.NoError(t, db.First(&stored, "user_id = ?", user.UserID).Error)
		assert.Equal(t, 100, stored.TotalPoints)
		assert.InDelta(t, 0.5, stored.TotalCo2Avoided, 1e-9)

		stats, err := svc.GetDailyStats(ctx, user.UserID)
		require.NoError(t, err)
		assert.Equal(t, 100, stats.TotalPoints)
		assert.Equal(t, 10, stats.DailyCount)
		assert.True(t, stats.QuotaReached)
	})
}

func Test_gameService_DropSession(t *testing.T) {
	ctx := context.Background()

	db := setupTestDBGame(t)
	user := seedTestUser(t, db)
	seedCatalog(t, db, 3)
	svc := newTestGameService(db)

	_, err := svc.StartRound(ctx, user.UserID)
	require.NoError(t, err)

	svc.DropSession(user.UserID)

	_, err = svc.SubmitAttempt(ctx, user.UserID, &model.SubmitAttemptRequest{BinTag: model.BinYellow})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrRoundNotStarted)
}
