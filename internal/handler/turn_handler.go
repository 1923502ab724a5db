package handler

import (
	"errors"
	"net/http"

	"github.com/freeeve/narrow-seas/api/internal/auth"
	"github.com/freeeve/narrow-seas/api/internal/service"
	"github.com/freeeve/narrow-seas/api/pkg/wargame"
)

// TurnHandler handles clock advancement and turn history endpoints.
type TurnHandler struct {
	turnSvc *service.TurnService
}

// NewTurnHandler creates a TurnHandler.
func NewTurnHandler(turnSvc *service.TurnService) *TurnHandler {
	return &TurnHandler{turnSvc: turnSvc}
}

// AdvanceTurn handles POST /api/v1/games/{id}/turn/advance
func (h *TurnHandler) AdvanceTurn(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	result, err := h.turnSvc.AdvanceTurn(r.Context(), gameID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrGameNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, service.ErrGameNotActive) {
			status = http.StatusBadRequest
		} else if errors.Is(err, service.ErrNotCreator) {
			status = http.StatusForbidden
		} else if errors.Is(err, service.ErrClockConflict) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"clock":          result.NewState,
		"display":        wargame.FormatTurnDisplay(result.NewState),
		"completed_week": result.CompletedWeek,
	})
}

// GetClock handles GET /api/v1/games/{id}/turn
func (h *TurnHandler) GetClock(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")

	clock, err := h.turnSvc.CurrentClock(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, service.ErrClockNotFound) {
			writeError(w, http.StatusNotFound, "game clock not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, clock)
}

// GetHistory handles GET /api/v1/games/{id}/turn/history
func (h *TurnHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")

	records, err := h.turnSvc.History(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// GetWorld handles GET /api/v1/games/{id}/world
func (h *TurnHandler) GetWorld(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")

	world, err := h.turnSvc.CurrentWorld(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, service.ErrWorldNotFound) {
			writeError(w, http.StatusNotFound, "world state not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, world)
}
