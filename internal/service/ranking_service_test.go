package service_test

import (
	"context"
	"errors"
	"testing"

	"ecoguide/internal/config"
	"ecoguide/internal/model"
	repo_mocks "ecoguide/internal/repository/mocks"
	"ecoguide/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Redisなし(rdb=nil)の構成で、DB直読みのパスを検証する。
// キャッシュヒットのパスは実Redisが必要になるためここでは扱わない。
func TestRankingService_GetRanking(t *testing.T) {
	cfg := &config.Config{}
	cfg.Game.RankingLimit = 3

	tests := []struct {
		name        string
		setupMock   func(m *repo_mocks.UserRepository)
		wantErr     bool
		wantEntries []model.RankingEntry
	}{
		{
			name: "正常系: ポイント上位のユーザーが順に返る",
			setupMock: func(m *repo_mocks.UserRepository) {
				m.On("FindTopByPoints", mock.Anything, mock.Anything, 3).Return([]*model.User{
					{Name: "alice", TotalPoints: 300, TotalCo2Avoided: 1.5},
					{Name: "bob", TotalPoints: 120, TotalCo2Avoided: 0.6},
				}, nil).Once()
			},
			wantEntries: []model.RankingEntry{
				{Name: "alice", TotalPoints: 300, TotalCo2Avoided: 1.5},
				{Name: "bob", TotalPoints: 120, TotalCo2Avoided: 0.6},
			},
		},
		{
			name: "正常系: ユーザーがいない場合は空スライス",
			setupMock: func(m *repo_mocks.UserRepository) {
				m.On("FindTopByPoints", mock.Anything, mock.Anything, 3).Return([]*model.User{}, nil).Once()
			},
			wantEntries: []model.RankingEntry{},
		},
		{
			name: "異常系: DBエラー",
			setupMock: func(m *repo_mocks.UserRepository) {
				m.On("FindTopByPoints", mock.Anything, mock.Anything, 3).Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(repo_mocks.UserRepository)
			tt.setupMock(mockUserRepo)

			svc := service.NewRankingService(nil, mockUserRepo, nil, cfg)
			entries, err := svc.GetRanking(context.Background())

			if tt.wantErr {
				require.Error(t, err)
				var appErr *model.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, "INTERNAL_SERVER_ERROR", appErr.Detail.Code)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantEntries, entries)
			}
			mockUserRepo.AssertExpectations(t)
		})
	}
}
