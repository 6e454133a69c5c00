package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"canvas-backend/application/services"
	"canvas-backend/domain/core/aggregates"
	"canvas-backend/domain/core/entities"
	"canvas-backend/domain/core/valueobjects"
	"canvas-backend/pkg/common"
)

// EdgeHandler handles edge-related HTTP requests
type EdgeHandler struct {
	registry *services.Registry
	logger   *zap.Logger
}

// NewEdgeHandler creates a new edge handler
func NewEdgeHandler(registry *services.Registry, logger *zap.Logger) *EdgeHandler {
	return &EdgeHandler{registry: registry, logger: logger}
}

// CreateEdgeRequest represents the request body for creating an edge
type CreateEdgeRequest struct {
	Source       string `json:"source" validate:"required,uuid"`
	Target       string `json:"target" validate:"required,uuid"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// UpdateEdgeRequest replaces an edge's attributes
type UpdateEdgeRequest struct {
	Strength  string `json:"strength" validate:"required,oneof=strong normal light"`
	Direction string `json:"direction" validate:"required,oneof=directed bidirectional"`
	Active    bool   `json:"active"`
	Color     string `json:"color,omitempty"`
	Label     string `json:"label,omitempty" validate:"omitempty,max=200"`
	Waypoints []struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"waypoints,omitempty"`
}

// CreateEdge handles POST /workspaces/{workspaceID}/edges. A duplicate
// (source, target) pair responds 200 with no edge rather than an error.
func (h *EdgeHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req CreateEdgeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	conn, err := h.connection(req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	edge, err := svc.AddEdge(conn)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if edge == nil {
		common.RespondJSON(w, http.StatusOK, map[string]string{"status": "duplicate"})
		return
	}
	common.RespondJSON(w, http.StatusCreated, edge)
}

// DeleteEdge handles DELETE /workspaces/{workspaceID}/edges/{edgeID}
func (h *EdgeHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	edgeID := chi.URLParam(r, "edgeID")
	svc.DeleteEdge(edgeID)
	common.RespondJSON(w, http.StatusOK, map[string]string{"id": edgeID})
}

// UpdateEdge handles PUT /workspaces/{workspaceID}/edges/{edgeID}
func (h *EdgeHandler) UpdateEdge(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req UpdateEdgeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	data := entities.EdgeData{
		Strength:  valueobjects.Strength(req.Strength),
		Direction: valueobjects.Direction(req.Direction),
		Active:    req.Active,
		Color:     req.Color,
		Label:     req.Label,
	}
	for _, wp := range req.Waypoints {
		data.Waypoints = append(data.Waypoints, valueobjects.NewPosition(wp.X, wp.Y))
	}

	edgeID := chi.URLParam(r, "edgeID")
	if err := svc.UpdateEdge(edgeID, data); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"id": edgeID})
}

// ReverseEdge handles POST /workspaces/{workspaceID}/edges/{edgeID}/reverse
func (h *EdgeHandler) ReverseEdge(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	edgeID := chi.URLParam(r, "edgeID")
	if err := svc.ReverseEdge(edgeID); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"id": edgeID})
}

// ReconnectEdge handles POST /workspaces/{workspaceID}/edges/{edgeID}/reconnect
func (h *EdgeHandler) ReconnectEdge(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req CreateEdgeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	conn, err := h.connection(req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	edgeID := chi.URLParam(r, "edgeID")
	if err := svc.ReconnectEdge(edgeID, conn); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"id": edgeID})
}

func (h *EdgeHandler) connection(req CreateEdgeRequest) (aggregates.Connection, error) {
	source, err := parseNodeID(req.Source)
	if err != nil {
		return aggregates.Connection{}, err
	}
	target, err := parseNodeID(req.Target)
	if err != nil {
		return aggregates.Connection{}, err
	}
	return aggregates.Connection{
		Source:       source,
		Target:       target,
		SourceHandle: req.SourceHandle,
		TargetHandle: req.TargetHandle,
	}, nil
}
