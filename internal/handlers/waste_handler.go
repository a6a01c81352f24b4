// internal/handlers/waste_handler.go
package handlers

import (
	"errors"
	"net/http"

	"ecoguide/internal/middleware"
	"ecoguide/internal/model"
	"ecoguide/internal/service"
	"ecoguide/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type WasteHandler struct {
	service service.WasteService
}

func NewWasteHandler(s service.WasteService) *WasteHandler {
	return &WasteHandler{service: s}
}

func (h *WasteHandler) PostWasteItem(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.PostWasteItemRequest
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

	item, err := h.service.CreateWasteItem(r.Context(), &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusCreated, item)
}

func (h *WasteHandler) GetWasteItem(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	wasteID, err := parseWasteID(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	item, err := h.service.GetWasteItem(r.Context(), wasteID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, item)
}

func (h *WasteHandler) ListWasteItems(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	items, err := h.service.ListWasteItems(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if items == nil {
		items = []*model.WasteItem{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, items)
}

func (h *WasteHandler) PatchWasteItem(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	wasteID, err := parseWasteID(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.PatchWasteItemRequest
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

	item, err := h.service.UpdateWasteItem(r.Context(), wasteID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, item)
}

func (h *WasteHandler) DeleteWasteItem(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	wasteID, err := parseWasteID(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.DeleteWasteItem(r.Context(), wasteID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseWasteID(r *http.Request) (uuid.UUID, error) {
	idStr := chi.URLParam(r, "waste_id")
	wasteID, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, model.NewAppError("INVALID_REQUEST", "アイテムIDの形式が正しくありません。", "waste_id", model.ErrInvalidInput)
	}
	return wasteID, nil
}
