package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/freeeve/narrow-seas/api/internal/auth"
	"github.com/freeeve/narrow-seas/api/internal/service"
	"github.com/freeeve/narrow-seas/api/pkg/wargame"
)

// CardHandler handles the card catalog, purchases, and plays.
type CardHandler struct {
	cardSvc *service.CardService
}

// NewCardHandler creates a CardHandler.
func NewCardHandler(cardSvc *service.CardService) *CardHandler {
	return &CardHandler{cardSvc: cardSvc}
}

// ListCatalog handles GET /api/v1/cards
func (h *CardHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, wargame.AllCards())
}

// PurchaseCard handles POST /api/v1/games/{id}/cards/purchase
func (h *CardHandler) PurchaseCard(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		CardID string `json:"card_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CardID == "" {
		writeError(w, http.StatusBadRequest, "card_id is required")
		return
	}

	world, err := h.cardSvc.PurchaseCard(r.Context(), gameID, userID, req.CardID)
	if err != nil {
		writeError(w, cardErrStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, world)
}

// PlayCard handles POST /api/v1/games/{id}/cards/play
func (h *CardHandler) PlayCard(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		CardID string `json:"card_id"`
		AreaID string `json:"area_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CardID == "" || req.AreaID == "" {
		writeError(w, http.StatusBadRequest, "card_id and area_id are required")
		return
	}

	result, err := h.cardSvc.PlayCard(r.Context(), gameID, userID, req.CardID, req.AreaID)
	if err != nil {
		writeError(w, cardErrStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListNotifications handles GET /api/v1/games/{id}/notifications
func (h *CardHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	notes, err := h.cardSvc.ListNotifications(r.Context(), gameID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if notes == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// cardErrStatus maps card and deployment service errors to HTTP codes.
func cardErrStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrCardNotFound),
		errors.Is(err, service.ErrCardNotInHand),
		errors.Is(err, service.ErrInvalidArea),
		errors.Is(err, service.ErrInsufficientPoints),
		errors.Is(err, service.ErrInvalidUnitType),
		errors.Is(err, service.ErrTaskForceNotFound),
		errors.Is(err, service.ErrGameNotActive):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotInGame), errors.Is(err, service.ErrNotYourForce):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
