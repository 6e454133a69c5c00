package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"canvas-backend/application/services"
	"canvas-backend/pkg/common"
)

// ContextHandler serves assembled context for nodes
type ContextHandler struct {
	registry *services.Registry
	logger   *zap.Logger
}

// NewContextHandler creates a new context handler
func NewContextHandler(registry *services.Registry, logger *zap.Logger) *ContextHandler {
	return &ContextHandler{registry: registry, logger: logger}
}

// ContextResponse carries the assembled context text
type ContextResponse struct {
	NodeID  string `json:"nodeId"`
	Context string `json:"context"`
}

// GetContext handles GET /workspaces/{workspaceID}/nodes/{nodeID}/context
func (h *ContextHandler) GetContext(w http.ResponseWriter, r *http.Request) {
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

	value, err := svc.GetContextForNode(nodeID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, ContextResponse{NodeID: nodeID.String(), Context: value})
}
