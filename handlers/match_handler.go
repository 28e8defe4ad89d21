package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/playmatch/playmatch-server/middleware"
	"github.com/playmatch/playmatch-server/services"
)

type MatchHandler struct {
	matchService   services.MatchService
	paymentService services.PaymentService
	backoutService services.BackoutService
	inviteService  services.InviteService
}

func NewMatchHandler(
	matchService services.MatchService,
	paymentService services.PaymentService,
	backoutService services.BackoutService,
	inviteService services.InviteService,
) *MatchHandler {
	return &MatchHandler{
		matchService:   matchService,
		paymentService: paymentService,
		backoutService: backoutService,
		inviteService:  inviteService,
	}
}

func matchIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "matchID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid match id: %q", raw)
	}
	return id, nil
}

func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchService.CreateMatch(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"match": result.Match,
	}
	inviteURLs := make(map[string]string, len(result.Invites))
	for _, invite := range result.Invites {
		inviteURLs[strings.ToLower(string(invite.Type))] = h.inviteService.BuildInviteURL(invite.Token)
	}
	response["invite_urls"] = inviteURLs

	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDFromRequest(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Анонимный просмотр допустим: userID=0 не совпадёт ни с одним
	// участником, вернётся публичная проекция.
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	details, err := h.matchService.GetMatch(r.Context(), matchID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, details, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Respond(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDFromRequest(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input struct {
		Response string `json:"response"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	switch strings.ToUpper(input.Response) {
	case "YES":
		participant, respondErr := h.matchService.RespondYes(r.Context(), matchID, userID)
		if respondErr != nil {
			mapServiceErrorToHTTP(w, r, respondErr)
			return
		}
		if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
	case "NO":
		if respondErr := h.matchService.RespondNo(r.Context(), matchID, userID); respondErr != nil {
			mapServiceErrorToHTTP(w, r, respondErr)
			return
		}
		if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "response recorded"}, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
	default:
		badRequestResponse(w, r, errors.New(`response must be "YES" or "NO"`))
	}
}

func (h *MatchHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.matchService.CompleteMatch, "match completed")
}

func (h *MatchHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.matchService.CancelMatch, "match cancelled")
}

func (h *MatchHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, matchID uuid.UUID, captainID int) error,
	message string,
) {
	matchID, err := matchIDFromRequest(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	if err := op(r.Context(), matchID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": message}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) MyGames(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	result, err := h.matchService.GetMyGames(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": result.Games, "summary": result.Summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) LogBackout(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDFromRequest(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.LogBackoutInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	log, err := h.backoutService.LogBackout(r.Context(), matchID, userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"backout": log}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
