// internal/model/error.go
package model

import "errors"

// アプリケーション固有のエラー
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternalServer = errors.New("internal server error")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("resource conflict") // 重複エラー用

	// ゲーム進行のエラー
	ErrInvalidCatalog  = errors.New("catalog is empty")          // カタログが空でラウンドを開始できない
	ErrRoundNotStarted = errors.New("round not started")         // アクティブなラウンドが存在しない
	ErrStaleAttempt    = errors.New("stale attempt")             // advance待ち中の二重送信など
	ErrQuotaExceeded   = errors.New("daily quota exceeded")      // 当日の分別上限に到達
	ErrPersistence     = errors.New("failed to persist attempt") // 台帳書き込み失敗
)

// ErrorDetail はAPIエラーレスポンスに含める詳細情報です
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// APIErrorResponse はAPIエラーレスポンスの構造体
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// AppError はエラーコード・ユーザー向けメッセージ・原因エラーをまとめた
// アプリケーション共通のエラー型です。原因エラー(Err)には上記のセンチネル
// エラーをラップし、HTTPステータスへの変換に使います。
type AppError struct {
	Detail ErrorDetail
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Detail.Code + ": " + e.Detail.Message + " (" + e.Err.Error() + ")"
	}
	return e.Detail.Code + ": " + e.Detail.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message, field string, err error) *AppError {
	return &AppError{
		Detail: ErrorDetail{
			Code:    code,
			Message: message,
			Field:   field,
		},
		Err: err,
	}
}
