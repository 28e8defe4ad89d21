package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/playmatch/playmatch-server/live"
	"github.com/playmatch/playmatch-server/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin фильтруется на уровне CORS-мидлвара; сам апгрейд
		// открыт, канал отдаёт только публичные события состава.
		return true
	},
}

type WebSocketHandler struct {
	hub          *live.Hub
	matchService services.MatchService
	logger       *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, matchService services.MatchService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		matchService: matchService,
		logger:       logger,
	}
}

// ServeMatch подписывает клиента на события состава матча.
// Подключение: /ws/matches/{matchID}.
func (h *WebSocketHandler) ServeMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuid.Parse(chi.URLParam(r, "matchID"))
	if err != nil {
		http.Error(w, "invalid match id", http.StatusBadRequest)
		return
	}

	// Комнату открываем только для существующего матча.
	if _, err := h.matchService.GetMatch(r.Context(), matchID, 0); err != nil {
		if errors.Is(err, services.ErrMatchNotFound) {
			http.NotFound(w, r)
			return
		}
		serverErrorResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам пишет HTTP-ошибку клиенту.
		h.logger.Warn("failed to upgrade websocket connection",
			slog.String("match_id", matchID.String()),
			slog.Any("error", err))
		return
	}

	h.hub.NewClient(conn, matchID.String())
	h.logger.Debug("websocket client connected", slog.String("match_id", matchID.String()))
}
