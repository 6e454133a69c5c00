package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"canvas-backend/application/history"
	"canvas-backend/application/services"
	"canvas-backend/domain/core/entities"
	"canvas-backend/domain/core/valueobjects"
	"canvas-backend/pkg/common"
)

// NodeHandler handles node-related HTTP requests
type NodeHandler struct {
	registry *services.Registry
	logger   *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(registry *services.Registry, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{registry: registry, logger: logger}
}

// CreateNodeRequest represents the request body for creating a node
type CreateNodeRequest struct {
	Kind string  `json:"kind" validate:"required"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// UpdateNodeRequest is a partial node payload update. Absent fields
// are left untouched.
type UpdateNodeRequest struct {
	Title               *string                `json:"title,omitempty" validate:"omitempty,max=500"`
	Color               *string                `json:"color,omitempty"`
	ParentID            *string                `json:"parentId,omitempty"`
	Tags                *[]string              `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	Summary             *string                `json:"summary,omitempty"`
	KeyEntities         *[]string              `json:"keyEntities,omitempty"`
	ContextRole         *string                `json:"contextRole,omitempty"`
	ContextPriority     *string                `json:"contextPriority,omitempty" validate:"omitempty,oneof=high medium low"`
	Enabled             *bool                  `json:"enabled,omitempty"`
	ActivationCondition *string                `json:"activationCondition,omitempty" validate:"omitempty,oneof=always any-active-neighbor all-neighbors-active never"`
	IncludeInContext    *bool                  `json:"includeInContext,omitempty"`
	Properties          map[string]interface{} `json:"properties,omitempty"`
	Provider            *string                `json:"provider,omitempty"`
	Content             *string                `json:"content,omitempty"`
	Status              *string                `json:"status,omitempty"`
	TaskPriority        *string                `json:"taskPriority,omitempty"`
	DueDate             *string                `json:"dueDate,omitempty"`
	InjectionFormat     *string                `json:"injectionFormat,omitempty" validate:"omitempty,oneof=full summary chunked reference-only"`
}

// BulkDeleteRequest lists the node ids of a multi-select delete
type BulkDeleteRequest struct {
	NodeIDs []string `json:"nodeIds" validate:"required,min=1,dive,uuid"`
}

// BulkUpdateItem is one node's partial update within a bulk request
type BulkUpdateItem struct {
	NodeID string `json:"nodeId" validate:"required,uuid"`
	UpdateNodeRequest
}

// BulkUpdateRequest applies partial updates to several nodes at once,
// recorded as a single history entry
type BulkUpdateRequest struct {
	Updates []BulkUpdateItem `json:"updates" validate:"required,min=1,dive"`
}

// GesturePositionsRequest carries per-node positions during a drag
type GesturePositionsRequest struct {
	Positions map[string]struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"positions" validate:"required"`
}

// GestureGeometryRequest carries per-node geometry during a resize
type GestureGeometryRequest struct {
	Changes map[string]struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"changes" validate:"required"`
}

// GestureStartRequest lists the nodes a gesture touches
type GestureStartRequest struct {
	NodeIDs []string `json:"nodeIds" validate:"required,min=1,dive,uuid"`
}

// ReorderLayersRequest maps node ids to new z-indexes
type ReorderLayersRequest struct {
	Order map[string]int `json:"order" validate:"required"`
}

// AddMessageRequest appends a message to a conversation node
type AddMessageRequest struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

// CreateNode handles POST /workspaces/{workspaceID}/nodes
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req CreateNodeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	node, err := svc.CreateNode(valueobjects.NodeKind(req.Kind), valueobjects.NewPosition(req.X, req.Y))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, node)
}

// UpdateNode handles PATCH /workspaces/{workspaceID}/nodes/{nodeID}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req UpdateNodeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	nodeID, err := parseNodeID(chi.URLParam(r, "nodeID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := svc.UpdateNode(nodeID, patch); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"id": nodeID.String()})
}

// BulkDeleteNodes handles POST /workspaces/{workspaceID}/nodes/bulk-delete
func (h *NodeHandler) BulkDeleteNodes(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req BulkDeleteRequest
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
	svc.DeleteNodes(ids)
	common.RespondJSON(w, http.StatusOK, map[string]int{"deleted": len(ids)})
}

// BulkUpdateNodes handles POST /workspaces/{workspaceID}/nodes/bulk-update
func (h *NodeHandler) BulkUpdateNodes(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req BulkUpdateRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	patches := make(map[valueobjects.NodeID]entities.NodePatch, len(req.Updates))
	for _, item := range req.Updates {
		id, err := parseNodeID(item.NodeID)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		patch, err := item.toPatch()
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		patches[id] = patch
	}
	if err := svc.UpdateNodes(patches); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]int{"updated": len(patches)})
}

// DeleteNode handles DELETE /workspaces/{workspaceID}/nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
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
	svc.DeleteNodes([]valueobjects.NodeID{nodeID})
	common.RespondJSON(w, http.StatusOK, map[string]string{"id": nodeID.String()})
}

// StartDrag handles POST /workspaces/{workspaceID}/nodes/drag/start
func (h *NodeHandler) StartDrag(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req GestureStartRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	ids, err := parseNodeIDs(req.NodeIDs)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	svc.StartNodeDrag(ids)
	common.RespondJSON(w, http.StatusOK, map[string]int{"nodes": len(ids)})
}

// Drag handles POST /workspaces/{workspaceID}/nodes/drag
func (h *NodeHandler) Drag(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req GesturePositionsRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	positions := make(map[valueobjects.NodeID]valueobjects.Position, len(req.Positions))
	for raw, pos := range req.Positions {
		id, err := parseNodeID(raw)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		positions[id] = valueobjects.NewPosition(pos.X, pos.Y)
	}
	svc.DragNodes(positions)
	common.RespondJSON(w, http.StatusOK, map[string]int{"nodes": len(positions)})
}

// CommitDrag handles POST /workspaces/{workspaceID}/nodes/drag/commit
func (h *NodeHandler) CommitDrag(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	svc.CommitNodeDrag()
	common.RespondJSON(w, http.StatusOK, svc.History())
}

// StartResize handles POST /workspaces/{workspaceID}/nodes/resize/start
func (h *NodeHandler) StartResize(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req GestureStartRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	ids, err := parseNodeIDs(req.NodeIDs)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	svc.StartNodeResize(ids)
	common.RespondJSON(w, http.StatusOK, map[string]int{"nodes": len(ids)})
}

// Resize handles POST /workspaces/{workspaceID}/nodes/resize
func (h *NodeHandler) Resize(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req GestureGeometryRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	changes := make(map[valueobjects.NodeID]history.Geometry, len(req.Changes))
	for raw, g := range req.Changes {
		id, err := parseNodeID(raw)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		changes[id] = history.Geometry{
			Position: valueobjects.NewPosition(g.X, g.Y),
			Size:     valueobjects.NewDimensions(g.Width, g.Height),
		}
	}
	svc.ResizeNodes(changes)
	common.RespondJSON(w, http.StatusOK, map[string]int{"nodes": len(changes)})
}

// CommitResize handles POST /workspaces/{workspaceID}/nodes/resize/commit
func (h *NodeHandler) CommitResize(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	svc.CommitNodeResize()
	common.RespondJSON(w, http.StatusOK, svc.History())
}

// ReorderLayers handles POST /workspaces/{workspaceID}/nodes/reorder
func (h *NodeHandler) ReorderLayers(w http.ResponseWriter, r *http.Request) {
	svc, err := h.registry.Get(chi.URLParam(r, "workspaceID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req ReorderLayersRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	order := make(map[valueobjects.NodeID]int, len(req.Order))
	for raw, z := range req.Order {
		id, err := parseNodeID(raw)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		order[id] = z
	}
	svc.ReorderLayers(order)
	common.RespondJSON(w, http.StatusOK, map[string]int{"nodes": len(order)})
}

// AddMessage handles POST /workspaces/{workspaceID}/nodes/{nodeID}/messages
func (h *NodeHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
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
	var req AddMessageRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	msg, err := svc.AddMessage(nodeID, req.Role, req.Content)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, msg)
}

// DeleteMessage handles DELETE /workspaces/{workspaceID}/nodes/{nodeID}/messages/{messageID}
func (h *NodeHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
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
	messageID := chi.URLParam(r, "messageID")
	svc.DeleteMessage(nodeID, messageID)
	common.RespondJSON(w, http.StatusOK, map[string]string{"id": messageID})
}

// toPatch converts the request into a domain patch
func (r UpdateNodeRequest) toPatch() (entities.NodePatch, error) {
	patch := entities.NodePatch{
		Title:            r.Title,
		Color:            r.Color,
		Tags:             r.Tags,
		Summary:          r.Summary,
		KeyEntities:      r.KeyEntities,
		ContextRole:      r.ContextRole,
		Enabled:          r.Enabled,
		IncludeInContext: r.IncludeInContext,
		Properties:       r.Properties,
		Provider:         r.Provider,
		Content:          r.Content,
		Status:           r.Status,
		TaskPriority:     r.TaskPriority,
		DueDate:          r.DueDate,
	}
	if r.ParentID != nil {
		if *r.ParentID == "" {
			patch.ParentID = &valueobjects.NodeID{}
		} else {
			id, err := parseNodeID(*r.ParentID)
			if err != nil {
				return entities.NodePatch{}, err
			}
			patch.ParentID = &id
		}
	}
	if r.ContextPriority != nil {
		p := valueobjects.ContextPriority(*r.ContextPriority)
		patch.ContextPriority = &p
	}
	if r.ActivationCondition != nil {
		c := valueobjects.ActivationCondition(*r.ActivationCondition)
		patch.ActivationCondition = &c
	}
	if r.InjectionFormat != nil {
		f := valueobjects.InjectionFormat(*r.InjectionFormat)
		patch.InjectionFormat = &f
	}
	return patch, nil
}
