package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/playmatch/playmatch-server/services"
)

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "playerID")
	playerID, err := strconv.Atoi(raw)
	if err != nil || playerID <= 0 {
		badRequestResponse(w, r, fmt.Errorf("invalid player id: %q", raw))
		return
	}

	stats, err := h.statsService.GetPlayerStats(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, stats, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.ListAllPlayersStats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
