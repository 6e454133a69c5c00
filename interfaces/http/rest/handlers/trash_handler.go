package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"canvas-backend/application/services"
	"canvas-backend/pkg/common"
)

// TrashHandler handles soft delete and restore requests
type TrashHandler struct {
	registry *services.Registry
	logger   *zap.Logger
}

// NewTrashHandler creates a new trash handler
func NewTrashHandler(registry *services.Registry, logger *zap.Logger) *TrashHandler {
	return &TrashHandler{registry: registry, logger: logger}
}

// SoftDeleteRequest lists the nodes to move to the trash
type SoftDeleteRequest struct {
	NodeIDs []string `json:"nodeIds" validate:"required,min=1,dive,uuid"`
}

// ListTrash handles GET /workspaces/{workspaceID}/trash
func (h *TrashHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, svc.Trash())
}

// SoftDelete handles POST /workspaces/{workspaceID}/trash
func (h *TrashHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req SoftDeleteRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	ids, err := parseNodeIDs(req.NodeIDs)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	items := svc.SoftDeleteNodes(ids)
	common.RespondJSON(w, http.StatusOK, map[string]int{"trashed": len(items)})
}

// Restore handles POST /workspaces/{workspaceID}/trash/{nodeID}/restore
func (h *TrashHandler) Restore(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	nodeID, err := parseNodeID(chi.URLParam(r, "nodeID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	node, err := svc.RestoreFromTrash(nodeID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, node)
}
