package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"canvas-backend/application/contextassembly"
	"canvas-backend/application/services"
	"canvas-backend/infrastructure/persistence/snapshot"
	"canvas-backend/pkg/common"
)

const maxBodyBytes = 10 << 20

var validate = validator.New()

// WorkspaceHandler handles workspace lifecycle and snapshot requests
type WorkspaceHandler struct {
	registry *services.Registry
	store    *snapshot.FileStore
	logger   *zap.Logger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(registry *services.Registry, store *snapshot.FileStore, logger *zap.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{registry: registry, store: store, logger: logger}
}

// CreateWorkspaceRequest represents the request body for creating a workspace
type CreateWorkspaceRequest struct {
	ID string `json:"id" validate:"required,max=128"`
}

// WorkspaceView is the full client-facing state of one workspace
type WorkspaceView struct {
	ID         string                   `json:"id"`
	Nodes      interface{}              `json:"nodes"`
	Edges      interface{}              `json:"edges"`
	History    services.HistoryStatus   `json:"history"`
	SpawnFlags []string                 `json:"spawnFlags"`
	Settings   contextassembly.Settings `json:"settings"`
}

// ListWorkspaces handles GET /workspaces
func (h *WorkspaceHandler) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	loaded := h.registry.IDs()
	stored, err := h.store.List()
	if err != nil {
		h.logger.Error("failed to list snapshots", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"loaded": loaded,
		"stored": stored,
	})
}

// CreateWorkspace handles POST /workspaces
func (h *WorkspaceHandler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkspaceRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	svc := h.registry.GetOrCreate(req.ID)
	common.RespondJSON(w, http.StatusCreated, h.view(svc))
}

// GetWorkspace handles GET /workspaces/{workspaceID}
func (h *WorkspaceHandler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, h.view(svc))
}

// DeleteWorkspace handles DELETE /workspaces/{workspaceID}
func (h *WorkspaceHandler) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	h.registry.Remove(id)
	common.RespondJSON(w, http.StatusOK, map[string]string{"id": id})
}

// SaveWorkspace handles POST /workspaces/{workspaceID}/save
func (h *WorkspaceHandler) SaveWorkspace(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	settings := svc.Settings()
	snap, err := snapshot.Export(svc.Workspace(), snapshot.SettingsDoc{
		MaxDepth:         settings.MaxDepth,
		ChunkTokenBudget: settings.ChunkTokenBudget,
		ConversationTail: settings.ConversationTail,
	})
	if err != nil {
		h.logger.Error("failed to export workspace", zap.String("workspace", svc.ID()), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	if err := h.store.Save(snap); err != nil {
		common.RespondAppError(w, err)
		return
	}
	svc.MarkSaved(snap.SavedAt)
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"savedAt": snap.SavedAt.Format(time.RFC3339),
		"nodes":   len(snap.Nodes),
		"edges":   len(snap.Edges),
	})
}

// LoadWorkspace handles POST /workspaces/{workspaceID}/load, restoring
// the workspace from its stored snapshot. History and the context
// cache are reset by the load.
func (h *WorkspaceHandler) LoadWorkspace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	snap, err := h.store.Load(id)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	h.restore(w, id, snap)
}

// ImportSnapshot handles POST /workspaces/{workspaceID}/snapshot with
// a snapshot document as the body
func (h *WorkspaceHandler) ImportSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	var snap snapshot.Snapshot
	if err := common.ParseJSONBody(r, &snap, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid snapshot body")
		return
	}
	snap.ID = id
	h.restore(w, id, &snap)
}

// ExportSnapshot handles GET /workspaces/{workspaceID}/snapshot
func (h *WorkspaceHandler) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	settings := svc.Settings()
	snap, err := snapshot.Export(svc.Workspace(), snapshot.SettingsDoc{
		MaxDepth:         settings.MaxDepth,
		ChunkTokenBudget: settings.ChunkTokenBudget,
		ConversationTail: settings.ConversationTail,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(snap) //nolint:errcheck
}

// UpdateSettings handles PUT /workspaces/{workspaceID}/settings
func (h *WorkspaceHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var settings contextassembly.Settings
	if err := common.ParseJSONBody(r, &settings, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	svc.UpdateSettings(settings)
	common.RespondJSON(w, http.StatusOK, svc.Settings())
}

func (h *WorkspaceHandler) restore(w http.ResponseWriter, id string, snap *snapshot.Snapshot) {
	svc := h.registry.GetOrCreate(id)
	ws, err := snap.Restore(svc.DomainConfig())
	if err != nil {
		h.logger.Warn("snapshot rejected", zap.String("workspace", id), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	svc.ReplaceWorkspace(ws, contextassembly.Settings{
		MaxDepth:         snap.Settings.MaxDepth,
		ChunkTokenBudget: snap.Settings.ChunkTokenBudget,
		ConversationTail: snap.Settings.ConversationTail,
	})
	common.RespondJSON(w, http.StatusOK, h.view(svc))
}

func (h *WorkspaceHandler) view(svc *services.WorkspaceService) WorkspaceView {
	flags := svc.SpawnFlags()
	spawnIDs := make([]string, len(flags))
	for i, id := range flags {
		spawnIDs[i] = id.String()
	}
	return WorkspaceView{
		ID:         svc.ID(),
		Nodes:      svc.Nodes(),
		Edges:      svc.Edges(),
		History:    svc.History(),
		SpawnFlags: spawnIDs,
		Settings:   svc.Settings(),
	}
}
