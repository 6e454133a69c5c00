package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"canvas-backend/application/services"
	"canvas-backend/domain/core/valueobjects"
	"canvas-backend/pkg/common"
)

// SuggestionHandler handles AI suggestion acceptance
type SuggestionHandler struct {
	registry *services.Registry
	logger   *zap.Logger
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(registry *services.Registry, logger *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{registry: registry, logger: logger}
}

// AcceptSuggestionRequest materializes a pending suggestion
type AcceptSuggestionRequest struct {
	AnchorID string  `json:"anchorId" validate:"required,uuid"`
	Kind     string  `json:"kind" validate:"required"`
	Title    string  `json:"title,omitempty" validate:"omitempty,max=500"`
	Content  string  `json:"content,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Accept handles POST /workspaces/{workspaceID}/suggestions/accept.
// A suggestion whose anchor node no longer exists is rejected whole;
// no orphan node is created.
func (h *SuggestionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req AcceptSuggestionRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	anchorID, err := parseNodeID(req.AnchorID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	node, err := svc.AcceptSuggestion(services.Suggestion{
		AnchorID: anchorID,
		Kind:     valueobjects.NodeKind(req.Kind),
		Title:    req.Title,
		Content:  req.Content,
		Position: valueobjects.NewPosition(req.X, req.Y),
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, node)
}
