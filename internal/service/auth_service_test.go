package service_test // メインコードとは別のパッケージにすることで、公開されているものしかテストできなくなり、より良いテストになる

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ecoguide/internal/config"
	"ecoguide/internal/model"
	"ecoguide/internal/repository/mocks"
	"ecoguide/internal/service"
	servicemocks "ecoguide/internal/service/mocks" // Mailerのモック

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// --- テストスイートの定義 ---
// 関連するテストと、共通のセットアップをまとめる
type AuthServiceTestSuite struct {
	suite.Suite // testifyのSuiteを埋め込む

	db            *gorm.DB
	mockUserRepo  *mocks.UserRepository
	mockTokenRepo *mocks.TokenRepository
	mockMailer    *servicemocks.Mailer
	cfg           *config.Config
	authService   service.AuthService
}

// --- セットアップメソッド ---
// 各テスト(`TestXxx`)が実行される直前に呼ばれる
func (s *AuthServiceTestSuite) SetupTest() {
	// トランザクション用の実DB (sqlite) を用意する
	dsn := fmt.Sprintf("file:auth_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(&model.User{}, &model.UserVerificationToken{}, &model.PasswordResetToken{}))
	s.db = db

	// 各テストの前に、モックを新しく生成してクリーンな状態にする
	s.mockUserRepo = new(mocks.UserRepository)
	s.mockTokenRepo = new(mocks.TokenRepository)
	s.mockMailer = new(servicemocks.Mailer)

	// テスト用のダミー設定
	s.cfg = &config.Config{
		App: config.AppConfig{Name: "EcoGuide", FrontendURL: "http://localhost:3000"},
		JWT: config.JWTConfig{
			SecretKey:      "test-secret",
			AccessTokenTTL: 15 * time.Minute,
		},
	}

	// テスト対象のサービスにモックを注入してインスタンスを生成
	s.authService = service.NewAuthService(s.db, s.mockUserRepo, s.mockTokenRepo, s.mockMailer, s.cfg)
}

// --- テストランナー ---
// この関数が `go test` から実際に呼ばれる
func TestAuthService(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

// --- RegisterUserメソッドのテスト ---
func (s *AuthServiceTestSuite) TestRegisterUser() {
	// テストケースをテーブルとして定義
	testCases := []struct {
		name        string // テストケース名
		req         *model.RegisterRequest
		setupMocks  func()                            // このケースのためのモック設定
		checkResult func(user *model.User, err error) // 結果の検証
	}{
		{
			name: "Success - 正常に登録できる",
			req:  &model.RegisterRequest{Name: "test", Email: "test@example.com", Password: "password123"},
			setupMocks: func() {
				s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "test@example.com").Return(nil, model.ErrNotFound).Once()
				s.mockUserRepo.On("FindByName", mock.Anything, mock.Anything, "test").Return(nil, model.ErrNotFound).Once()
				s.mockUserRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*model.User")).Return(nil).Once()
				s.mockTokenRepo.On("CreateVerificationToken", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
				s.mockMailer.On("Send", mock.Anything, "test@example.com", mock.Anything, mock.Anything).Return(nil).Once()
			},
			checkResult: func(user *model.User, err error) {
				s.NoError(err)
				s.Require().NotNil(user)
				s.Equal("test@example.com", user.Email)
				s.False(user.IsActive, "登録直後は未有効化")
				s.NotEqual("password123", user.PasswordHash, "パスワードはハッシュ化されている")
			},
		},
		{
			name: "Error - メールアドレスが重複している",
			req:  &model.RegisterRequest{Name: "test", Email: "dup@example.com", Password: "password123"},
			setupMocks: func() {
				existing := &model.User{UserID: uuid.New(), Email: "dup@example.com"}
				s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "dup@example.com").Return(existing, nil).Once()
			},
			checkResult: func(user *model.User, err error) {
				s.Nil(user)
				s.ErrorIs(err, model.ErrConflict)
			},
		},
		{
			name: "Error - ユーザ名が重複している",
			req:  &model.RegisterRequest{Name: "taken", Email: "new@example.com", Password: "password123"},
			setupMocks: func() {
				existing := &model.User{UserID: uuid.New(), Name: "taken"}
				s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "new@example.com").Return(nil, model.ErrNotFound).Once()
				s.mockUserRepo.On("FindByName", mock.Anything, mock.Anything, "taken").Return(existing, nil).Once()
			},
			checkResult: func(user *model.User, err error) {
				s.Nil(user)
				s.ErrorIs(err, model.ErrConflict)
			},
		},
		{
			name: "Error - 作成時にレースコンディションで重複検知",
			req:  &model.RegisterRequest{Name: "race", Email: "race@example.com", Password: "password123"},
			setupMocks: func() {
				s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "race@example.com").Return(nil, model.ErrNotFound).Once()
				s.mockUserRepo.On("FindByName", mock.Anything, mock.Anything, "race").Return(nil, model.ErrNotFound).Once()
				s.mockUserRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*model.User")).Return(model.ErrConflict).Once()
			},
			checkResult: func(user *model.User, err error) {
				s.Nil(user)
				s.ErrorIs(err, model.ErrConflict)
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest() // ケースごとにモックをリセット
			tc.setupMocks()

			user, err := s.authService.RegisterUser(context.Background(), tc.req)

			tc.checkResult(user, err)
			s.mockUserRepo.AssertExpectations(s.T())
			s.mockTokenRepo.AssertExpectations(s.T())
			s.mockMailer.AssertExpectations(s.T())
		})
	}
}

// --- Loginメソッドのテスト ---
func (s *AuthServiceTestSuite) TestLogin() {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	activeUser := &model.User{
		UserID:       uuid.New(),
		Name:         "player",
		Email:        "player@example.com",
		PasswordHash: string(hashed),
		TotalPoints:  120,
		IsActive:     true,
	}

	testCases := []struct {
		name        string
		req         *model.LoginRequest
		setupMocks  func()
		checkResult func(resp *model.LoginResponse, err error)
	}{
		{
			name: "Success - 正しい資格情報でトークンが返る",
			req:  &model.LoginRequest{Email: "player@example.com", Password: "correct-password"},
			setupMocks: func() {
				s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "player@example.com").Return(activeUser, nil).Once()
			},
			checkResult: func(resp *model.LoginResponse, err error) {
				s.NoError(err)
				s.Require().NotNil(resp)
				s.NotEmpty(resp.AccessToken)
				s.Equal(activeUser.UserID, resp.User.UserID)
				s.Equal(120, resp.User.TotalPoints)
			},
		},
		{
			name: "Error - パスワード不一致",
			req:  &model.LoginRequest{Email: "player@example.com", Password: "wrong"},
			setupMocks: func() {
				s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "player@example.com").Return(activeUser, nil).Once()
			},
			checkResult: func(resp *model.LoginResponse, err error) {
				s.Nil(resp)
				s.ErrorIs(err, model.ErrInvalidInput)
			},
		},
		{
			name: "Error - 存在しないユーザー",
			req:  &model.LoginRequest{Email: "nobody@example.com", Password: "whatever"},
			setupMocks: func() {
				s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "nobody@example.com").Return(nil, model.ErrNotFound).Once()
			},
			checkResult: func(resp *model.LoginResponse, err error) {
				s.Nil(resp)
				// 存在有無を悟られないよう、パスワード不一致と同じエラーになる
				s.ErrorIs(err, model.ErrInvalidInput)
			},
		},
		{
			name: "Error - 未有効化アカウント",
			req:  &model.LoginRequest{Email: "inactive@example.com", Password: "correct-password"},
			setupMocks: func() {
				inactive := &model.User{
					UserID:       uuid.New(),
					Email:        "inactive@example.com",
					PasswordHash: string(hashed),
					IsActive:     false,
				}
				s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "inactive@example.com").Return(inactive, nil).Once()
			},
			checkResult: func(resp *model.LoginResponse, err error) {
				s.Nil(resp)
				s.ErrorIs(err, model.ErrForbidden)
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			tc.setupMocks()

			resp, err := s.authService.Login(context.Background(), tc.req)

			tc.checkResult(resp, err)
			s.mockUserRepo.AssertExpectations(s.T())
		})
	}
}

// --- VerifyAccountメソッドのテスト ---
func (s *AuthServiceTestSuite) TestVerifyAccount() {
	s.Run("Success - アカウントが有効化される", func() {
		s.SetupTest()
		user := &model.User{UserID: uuid.New(), Name: "u1", Email: "u1@example.com", PasswordHash: "x", IsActive: false}
		s.Require().NoError(s.db.Create(user).Error)

		token := &model.UserVerificationToken{
			Token:     "valid-token",
			UserID:    user.UserID,
			ExpiresAt: time.Now().Add(1 * time.Hour),
		}
		s.mockTokenRepo.On("FindVerificationToken", mock.Anything, mock.Anything, "valid-token").Return(token, nil).Once()
		s.mockTokenRepo.On("DeleteVerificationToken", mock.Anything, mock.Anything, "valid-token").Return(nil).Once()

		err := s.authService.VerifyAccount(context.Background(), "valid-token")

		s.NoError(err)
		var stored model.User
		s.Require().NoError(s.db.First(&stored, "user_id = ?", user.UserID).Error)
		s.True(stored.IsActive)
	})

	s.Run("Error - 期限切れトークン", func() {
		s.SetupTest()
		token := &model.UserVerificationToken{
			Token:     "expired-token",
			UserID:    uuid.New(),
			ExpiresAt: time.Now().Add(-1 * time.Minute),
		}
		s.mockTokenRepo.On("FindVerificationToken", mock.Anything, mock.Anything, "expired-token").Return(token, nil).Once()
		s.mockTokenRepo.On("DeleteVerificationToken", mock.Anything, mock.Anything, "expired-token").Return(nil).Once()

		err := s.authService.VerifyAccount(context.Background(), "expired-token")

		s.ErrorIs(err, model.ErrInvalidInput)
	})

	s.Run("Error - 不明なトークン", func() {
		s.SetupTest()
		s.mockTokenRepo.On("FindVerificationToken", mock.Anything, mock.Anything, "unknown").Return(nil, model.ErrNotFound).Once()

		err := s.authService.VerifyAccount(context.Background(), "unknown")

		s.ErrorIs(err, model.ErrInvalidInput)
	})
}

// --- RequestPasswordResetメソッドのテスト ---
func (s *AuthServiceTestSuite) TestRequestPasswordReset() {
	s.Run("Success - 存在しないメールでも成功として扱う", func() {
		s.SetupTest()
		s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "ghost@example.com").Return(nil, model.ErrNotFound).Once()

		err := s.authService.RequestPasswordReset(context.Background(), "ghost@example.com")

		s.NoError(err)
		s.mockMailer.AssertNotCalled(s.T(), "Send")
	})

	s.Run("Success - トークンを保存してメールを送る", func() {
		s.SetupTest()
		user := &model.User{UserID: uuid.New(), Email: "player@example.com"}
		s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "player@example.com").Return(user, nil).Once()
		s.mockTokenRepo.On("CreatePasswordResetToken", mock.Anything, mock.Anything, mock.AnythingOfType("*model.PasswordResetToken")).Return(nil).Once()
		s.mockMailer.On("Send", mock.Anything, "player@example.com", mock.Anything, mock.Anything).Return(nil).Once()

		err := s.authService.RequestPasswordReset(context.Background(), "player@example.com")

		s.NoError(err)
		s.mockTokenRepo.AssertExpectations(s.T())
		s.mockMailer.AssertExpectations(s.T())
	})
}
