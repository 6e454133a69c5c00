package history

import (
	"canvas-backend/domain/core/aggregates"
	"canvas-backend/domain/core/entities"
	"canvas-backend/domain/core/valueobjects"
)

// Kind identifies a history action variant
type Kind string

const (
	KindAddNode         Kind = "ADD_NODE"
	KindDeleteNode      Kind = "DELETE_NODE"
	KindUpdateNode      Kind = "UPDATE_NODE"
	KindMoveNode        Kind = "MOVE_NODE"
	KindResizeNode      Kind = "RESIZE_NODE"
	KindBulkUpdateNodes Kind = "BULK_UPDATE_NODES"
	KindAddEdge         Kind = "ADD_EDGE"
	KindDeleteEdge      Kind = "DELETE_EDGE"
	KindUpdateEdge      Kind = "UPDATE_EDGE"
	KindReverseEdge     Kind = "REVERSE_EDGE"
	KindReconnectEdge   Kind = "RECONNECT_EDGE"
	KindReorderLayers   Kind = "REORDER_LAYERS"
	KindAddMessage      Kind = "ADD_MESSAGE"
	KindDeleteMessage   Kind = "DELETE_MESSAGE"
	KindBatch           Kind = "BATCH"
)

// Action is one reversible mutation. Apply replays the forward form
// (redo); Revert applies the inverse (undo). Every variant implements
// both directions, so call sites never hand-write an inverse.
//
// Actions hold deep-cloned snapshots of the entities they touch, taken
// at the moment of mutation. They never alias live workspace objects.
type Action interface {
	Kind() Kind
	Apply(ws *aggregates.Workspace)
	Revert(ws *aggregates.Workspace)
}

// AddNode records a node creation
type AddNode struct {
	Node *entities.Node
}

// NewAddNode snapshots a created node
func NewAddNode(node *entities.Node) *AddNode {
	return &AddNode{Node: node.Clone()}
}

func (a *AddNode) Kind() Kind { return KindAddNode }

func (a *AddNode) Apply(ws *aggregates.Workspace) {
	ws.InsertNode(a.Node.Clone())
}

func (a *AddNode) Revert(ws *aggregates.Workspace) {
	ws.RemoveNodes([]valueobjects.NodeID{a.Node.ID})
}

// DeleteNode records a node removal together with the incident edges
// that were cascaded away, so undo restores all of them
type DeleteNode struct {
	Node  *entities.Node
	Edges []*entities.Edge
}

// NewDeleteNode snapshots a removed node and its cascaded edges
func NewDeleteNode(node *entities.Node, edges []*entities.Edge) *DeleteNode {
	a := &DeleteNode{Node: node.Clone()}
	for _, e := range edges {
		a.Edges = append(a.Edges, e.Clone())
	}
	return a
}

func (a *DeleteNode) Kind() Kind { return KindDeleteNode }

func (a *DeleteNode) Apply(ws *aggregates.Workspace) {
	ws.RemoveNodes([]valueobjects.NodeID{a.Node.ID})
}

func (a *DeleteNode) Revert(ws *aggregates.Workspace) {
	ws.InsertNode(a.Node.Clone())
	for _, e := range a.Edges {
		ws.InsertEdge(e.Clone())
	}
}

// UpdateNode records a payload change as before/after snapshots
type UpdateNode struct {
	NodeID valueobjects.NodeID
	Before entities.NodeData
	After  entities.NodeData
}

// NewUpdateNode snapshots a payload transition
func NewUpdateNode(id valueobjects.NodeID, before, after entities.NodeData) *UpdateNode {
	return &UpdateNode{NodeID: id, Before: before.Clone(), After: after.Clone()}
}

func (a *UpdateNode) Kind() Kind { return KindUpdateNode }

func (a *UpdateNode) Apply(ws *aggregates.Workspace) {
	ws.SetNodeData(a.NodeID, a.After)
}

func (a *UpdateNode) Revert(ws *aggregates.Workspace) {
	ws.SetNodeData(a.NodeID, a.Before)
}

// MoveNode records a position change
type MoveNode struct {
	NodeID valueobjects.NodeID
	Before valueobjects.Position
	After  valueobjects.Position
}

func (a *MoveNode) Kind() Kind { return KindMoveNode }

func (a *MoveNode) Apply(ws *aggregates.Workspace) {
	ws.MoveNode(a.NodeID, a.After)
}

func (a *MoveNode) Revert(ws *aggregates.Workspace) {
	ws.MoveNode(a.NodeID, a.Before)
}

// Geometry is a node's origin and size taken together, the unit a
// resize gesture changes
type Geometry struct {
	Position valueobjects.Position
	Size     valueobjects.Dimensions
}

// ResizeNode records a size (and origin) change
type ResizeNode struct {
	NodeID valueobjects.NodeID
	Before Geometry
	After  Geometry
}

func (a *ResizeNode) Kind() Kind { return KindResizeNode }

func (a *ResizeNode) Apply(ws *aggregates.Workspace) {
	ws.ResizeNode(a.NodeID, a.After.Position, a.After.Size)
}

func (a *ResizeNode) Revert(ws *aggregates.Workspace) {
	ws.ResizeNode(a.NodeID, a.Before.Position, a.Before.Size)
}

// NodeDataChange is one entry of a bulk update
type NodeDataChange struct {
	NodeID valueobjects.NodeID
	Before entities.NodeData
	After  entities.NodeData
}

// BulkUpdateNodes records payload changes to several nodes at once
type BulkUpdateNodes struct {
	Changes []NodeDataChange
}

func (a *BulkUpdateNodes) Kind() Kind { return KindBulkUpdateNodes }

func (a *BulkUpdateNodes) Apply(ws *aggregates.Workspace) {
	for _, c := range a.Changes {
		ws.SetNodeData(c.NodeID, c.After)
	}
}

func (a *BulkUpdateNodes) Revert(ws *aggregates.Workspace) {
	for i := len(a.Changes) - 1; i >= 0; i-- {
		ws.SetNodeData(a.Changes[i].NodeID, a.Changes[i].Before)
	}
}

// AddEdge records an edge creation
type AddEdge struct {
	Edge *entities.Edge
}

// NewAddEdge snapshots a created edge
func NewAddEdge(edge *entities.Edge) *AddEdge {
	return &AddEdge{Edge: edge.Clone()}
}

func (a *AddEdge) Kind() Kind { return KindAddEdge }

func (a *AddEdge) Apply(ws *aggregates.Workspace) {
	ws.InsertEdge(a.Edge.Clone())
}

func (a *AddEdge) Revert(ws *aggregates.Workspace) {
	ws.RemoveEdge(a.Edge.ID)
}

// DeleteEdge records an edge removal
type DeleteEdge struct {
	Edge *entities.Edge
}

// NewDeleteEdge snapshots a removed edge
func NewDeleteEdge(edge *entities.Edge) *DeleteEdge {
	return &DeleteEdge{Edge: edge.Clone()}
}

func (a *DeleteEdge) Kind() Kind { return KindDeleteEdge }

func (a *DeleteEdge) Apply(ws *aggregates.Workspace) {
	ws.RemoveEdge(a.Edge.ID)
}

func (a *DeleteEdge) Revert(ws *aggregates.Workspace) {
	ws.InsertEdge(a.Edge.Clone())
}

// UpdateEdge records an edge attribute change
type UpdateEdge struct {
	EdgeID string
	Before entities.EdgeData
	After  entities.EdgeData
}

func (a *UpdateEdge) Kind() Kind { return KindUpdateEdge }

func (a *UpdateEdge) Apply(ws *aggregates.Workspace) {
	ws.SetEdgeData(a.EdgeID, a.After)
}

func (a *UpdateEdge) Revert(ws *aggregates.Workspace) {
	ws.SetEdgeData(a.EdgeID, a.Before)
}

// ReverseEdge records an endpoint swap. The operation is its own
// inverse.
type ReverseEdge struct {
	EdgeID string
}

func (a *ReverseEdge) Kind() Kind { return KindReverseEdge }

func (a *ReverseEdge) Apply(ws *aggregates.Workspace) {
	ws.ReverseEdge(a.EdgeID) //nolint:errcheck
}

func (a *ReverseEdge) Revert(ws *aggregates.Workspace) {
	ws.ReverseEdge(a.EdgeID) //nolint:errcheck
}

// ReconnectEdge records an edge re-target. After is nil when the new
// pair was already occupied and the old edge was dropped instead.
type ReconnectEdge struct {
	Before *entities.Edge
	After  *entities.Edge
}

// NewReconnectEdge snapshots a reconnection transition
func NewReconnectEdge(before, after *entities.Edge) *ReconnectEdge {
	return &ReconnectEdge{Before: before.Clone(), After: after.Clone()}
}

func (a *ReconnectEdge) Kind() Kind { return KindReconnectEdge }

func (a *ReconnectEdge) Apply(ws *aggregates.Workspace) {
	ws.RemoveEdge(a.Before.ID)
	if a.After != nil {
		ws.InsertEdge(a.After.Clone())
	}
}

func (a *ReconnectEdge) Revert(ws *aggregates.Workspace) {
	if a.After != nil {
		ws.RemoveEdge(a.After.ID)
	}
	ws.InsertEdge(a.Before.Clone())
}

// ReorderLayers records a z-order rearrangement
type ReorderLayers struct {
	Before map[valueobjects.NodeID]int
	After  map[valueobjects.NodeID]int
}

func (a *ReorderLayers) Kind() Kind { return KindReorderLayers }

func (a *ReorderLayers) Apply(ws *aggregates.Workspace) {
	ws.ApplyZOrder(a.After)
}

func (a *ReorderLayers) Revert(ws *aggregates.Workspace) {
	ws.ApplyZOrder(a.Before)
}

// AddMessage records a message appended to a conversation
type AddMessage struct {
	NodeID  valueobjects.NodeID
	Message entities.Message
}

func (a *AddMessage) Kind() Kind { return KindAddMessage }

func (a *AddMessage) Apply(ws *aggregates.Workspace) {
	ws.AddMessage(a.NodeID, a.Message) //nolint:errcheck
}

func (a *AddMessage) Revert(ws *aggregates.Workspace) {
	ws.RemoveMessage(a.NodeID, a.Message.ID)
}

// DeleteMessage records a message removal with its transcript index
type DeleteMessage struct {
	NodeID  valueobjects.NodeID
	Message entities.Message
	Index   int
}

func (a *DeleteMessage) Kind() Kind { return KindDeleteMessage }

func (a *DeleteMessage) Apply(ws *aggregates.Workspace) {
	ws.RemoveMessage(a.NodeID, a.Message.ID)
}

func (a *DeleteMessage) Revert(ws *aggregates.Workspace) {
	ws.InsertMessageAt(a.NodeID, a.Message, a.Index)
}

// Batch wraps an ordered list of actions applied and reverted
// atomically. Redo applies sub-actions in order; undo reverts them in
// reverse order, because later sub-actions may depend on earlier ones
// having already been applied.
type Batch struct {
	Actions []Action
}

// NewBatch wraps actions into a single history entry. One action is
// returned as itself; an empty batch collapses to nil.
func NewBatch(actions ...Action) Action {
	filtered := make([]Action, 0, len(actions))
	for _, a := range actions {
		if a != nil {
			filtered = append(filtered, a)
		}
	}
	switch len(filtered) {
	case 0:
		return nil
	case 1:
		return filtered[0]
	default:
		return &Batch{Actions: filtered}
	}
}

func (a *Batch) Kind() Kind { return KindBatch }

func (a *Batch) Apply(ws *aggregates.Workspace) {
	for _, sub := range a.Actions {
		sub.Apply(ws)
	}
}

func (a *Batch) Revert(ws *aggregates.Workspace) {
	for i := len(a.Actions) - 1; i >= 0; i-- {
		a.Actions[i].Revert(ws)
	}
}
