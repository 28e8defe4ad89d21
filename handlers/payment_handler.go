package handlers

import (
	"net/http"

	"github.com/playmatch/playmatch-server/middleware"
	"github.com/playmatch/playmatch-server/models"
	"github.com/playmatch/playmatch-server/services"
)

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) Mark(w http.ResponseWriter, r *http.Request) {
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

	var input services.MarkPaymentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.paymentService.MarkPayment(r.Context(), matchID, userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PaymentHandler) Tracking(w http.ResponseWriter, r *http.Request) {
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

	var filter *models.PaymentStatus
	if raw := r.URL.Query().Get("filterStatus"); raw != "" {
		status, parseErr := models.ParsePaymentStatus(raw)
		if parseErr != nil {
			badRequestResponse(w, r, parseErr)
			return
		}
		filter = &status
	}

	tracking, err := h.paymentService.GetPaymentTracking(r.Context(), matchID, userID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, tracking, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
