package handlers

import (
	"net/http"

	"ecoguide/internal/middleware"
	"ecoguide/internal/model"
	"ecoguide/internal/service"
	"ecoguide/internal/webutil"
)

type RankingHandler struct {
	service service.RankingService
}

func NewRankingHandler(s service.RankingService) *RankingHandler {
	return &RankingHandler{service: s}
}

// GetRanking は累計ポイント上位のランキングを返します (認証不要)
func (h *RankingHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	entries, err := h.service.GetRanking(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if entries == nil {
		entries = []model.RankingEntry{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, entries)
}
