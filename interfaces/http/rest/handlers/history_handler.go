package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"canvas-backend/application/services"
	"canvas-backend/pkg/common"
)

// HistoryHandler handles undo/redo HTTP requests
type HistoryHandler struct {
	registry *services.Registry
	logger   *zap.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(registry *services.Registry, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{registry: registry, logger: logger}
}

// UndoRedoResponse reports whether the operation applied and the
// resulting log state
type UndoRedoResponse struct {
	Applied bool                   `json:"applied"`
	History services.HistoryStatus `json:"history"`
}

// GetHistory handles GET /workspaces/{workspaceID}/history
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, svc.History())
}

// Undo handles POST /workspaces/{workspaceID}/history/undo. Undoing
// past the beginning is a no-op, not an error.
func (h *HistoryHandler) Undo(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	applied := svc.Undo()
	common.RespondJSON(w, http.StatusOK, UndoRedoResponse{Applied: applied, History: svc.History()})
}

// Redo handles POST /workspaces/{workspaceID}/history/redo
func (h *HistoryHandler) Redo(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	applied := svc.Redo()
	common.RespondJSON(w, http.StatusOK, UndoRedoResponse{Applied: applied, History: svc.History()})
}
