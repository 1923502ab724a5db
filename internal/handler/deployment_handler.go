package handler

import (
	"net/http"

	"github.com/freeeve/narrow-seas/api/internal/auth"
	"github.com/freeeve/narrow-seas/api/internal/service"
)

// DeploymentHandler handles task force and unit deployment endpoints.
type DeploymentHandler struct {
	deploySvc *service.DeploymentService
}

// NewDeploymentHandler creates a DeploymentHandler.
func NewDeploymentHandler(deploySvc *service.DeploymentService) *DeploymentHandler {
	return &DeploymentHandler{deploySvc: deploySvc}
}

// DeployTaskForce handles POST /api/v1/games/{id}/taskforces
func (h *DeploymentHandler) DeployTaskForce(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		Name      string `json:"name"`
		AreaID    string `json:"area_id"`
		DelayDays int    `json:"delay_days,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.AreaID == "" {
		writeError(w, http.StatusBadRequest, "name and area_id are required")
		return
	}
	if req.DelayDays < 0 {
		writeError(w, http.StatusBadRequest, "delay_days must not be negative")
		return
	}

	tf, err := h.deploySvc.DeployTaskForce(r.Context(), gameID, userID, req.Name, req.AreaID, req.DelayDays)
	if err != nil {
		writeError(w, cardErrStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, tf)
}

// DeployUnit handles POST /api/v1/games/{id}/units
func (h *DeploymentHandler) DeployUnit(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		UnitType    string `json:"unit_type"`
		TaskForceID string `json:"task_force_id"`
		AreaID      string `json:"area_id,omitempty"`
		DelayDays   int    `json:"delay_days,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UnitType == "" || req.TaskForceID == "" {
		writeError(w, http.StatusBadRequest, "unit_type and task_force_id are required")
		return
	}
	if req.DelayDays < 0 {
		writeError(w, http.StatusBadRequest, "delay_days must not be negative")
		return
	}

	unit, err := h.deploySvc.DeployUnit(r.Context(), gameID, userID, req.UnitType, req.TaskForceID, req.AreaID, req.DelayDays)
	if err != nil {
		writeError(w, cardErrStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, unit)
}

// ListPending handles GET /api/v1/games/{id}/deployments
func (h *DeploymentHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")

	pending, err := h.deploySvc.ListByGame(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if pending == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, pending)
}
