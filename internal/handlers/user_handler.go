package handlers

import (
	"errors"
	"net/http"

	"ecoguide/internal/middleware"
	"ecoguide/internal/model"
	"ecoguide/internal/service"
	"ecoguide/internal/webutil"

	"github.com/go-playground/validator/v10"
)

type UserHandler struct {
	service     service.UserService
	gameService service.GameService
}

func NewUserHandler(s service.UserService, gs service.GameService) *UserHandler {
	return &UserHandler{service: s, gameService: gs}
}

// GetMe はプロフィールと直近の分別履歴を返します
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, profile)
}

// UpdateMe はプロフィールを部分更新します
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.UpdateProfileRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			webutil.HandleError(w, logger, webutil.NewValidationErrorResponse(validationErrors))
		} else {
			webutil.HandleError(w, logger, err)
		}
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, model.NewUserResponse(user))
}

// DeleteMe はアカウントと関連データを削除します
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.DeleteAccount(r.Context(), userID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	// 進行中のラウンド状態も破棄する
	h.gameService.DropSession(userID)

	w.WriteHeader(http.StatusNoContent)
}
