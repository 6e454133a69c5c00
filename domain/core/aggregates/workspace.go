package aggregates

import (
	"time"

	"canvas-backend/domain/config"
	"canvas-backend/domain/core/entities"
	"canvas-backend/domain/core/valueobjects"
	"canvas-backend/domain/events"
	pkgerrors "canvas-backend/pkg/errors"
)

// Workspace is the aggregate root owning the canonical node and edge
// collections of one canvas. It enforces structural invariants (no
// duplicate edges, cascading edge removal, parent/child consistency)
// and knows nothing about history or context assembly.
type Workspace struct {
	id          string
	nodes       []*entities.Node
	nodeIndex   map[valueobjects.NodeID]int
	edges       []*entities.Edge
	edgeIndex   map[string]int
	pairIndex   map[string]string
	trash       []TrashedItem
	lastSavedAt time.Time
	dirty       bool
	cfg         *config.DomainConfig
	events      []events.DomainEvent
}

// Connection describes the endpoints of a new or re-targeted edge
type Connection struct {
	Source       valueobjects.NodeID
	Target       valueobjects.NodeID
	SourceHandle string
	TargetHandle string
}

// TrashedItem bundles a soft-deleted node with the edges that touched
// it, so the node can be fully restored later
type TrashedItem struct {
	Node      *entities.Node   `json:"node"`
	Edges     []*entities.Edge `json:"edges"`
	DeletedAt time.Time        `json:"deletedAt"`
}

// NewWorkspace creates an empty workspace aggregate
func NewWorkspace(id string, cfg *config.DomainConfig) *Workspace {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &Workspace{
		id:        id,
		nodeIndex: make(map[valueobjects.NodeID]int),
		edgeIndex: make(map[string]int),
		pairIndex: make(map[string]string),
		cfg:       cfg,
	}
}

// RestoreWorkspace rebuilds a workspace from snapshot collections.
// Edges whose endpoints are missing, and edges duplicating an ordered
// pair, are silently pruned. Project child lists are rebuilt from the
// nodes' parent references.
func RestoreWorkspace(id string, nodes []*entities.Node, edges []*entities.Edge, savedAt time.Time, cfg *config.DomainConfig) *Workspace {
	ws := NewWorkspace(id, cfg)
	for _, n := range nodes {
		if n == nil || n.ID.IsZero() {
			continue
		}
		if _, exists := ws.nodeIndex[n.ID]; exists {
			continue
		}
		n.Data.ChildIDs = nil
		ws.appendNode(n)
	}
	for _, n := range ws.nodes {
		ws.attachToParent(n)
	}
	for _, e := range edges {
		if e == nil {
			continue
		}
		if _, ok := ws.nodeIndex[e.Source]; !ok {
			continue
		}
		if _, ok := ws.nodeIndex[e.Target]; !ok {
			continue
		}
		if _, taken := ws.pairIndex[e.PairKey()]; taken {
			continue
		}
		e.Data.IntraProject = ws.isIntraProject(e.Source, e.Target)
		ws.appendEdge(e)
	}
	ws.lastSavedAt = savedAt
	ws.raise(events.NewWorkspaceLoaded(id, len(ws.nodes), len(ws.edges), time.Now()))
	return ws
}

// ID returns the workspace identifier
func (ws *Workspace) ID() string {
	return ws.id
}

// Nodes returns the node collection in canonical order
func (ws *Workspace) Nodes() []*entities.Node {
	out := make([]*entities.Node, len(ws.nodes))
	copy(out, ws.nodes)
	return out
}

// Edges returns the edge collection in canonical order
func (ws *Workspace) Edges() []*entities.Edge {
	out := make([]*entities.Edge, len(ws.edges))
	copy(out, ws.edges)
	return out
}

// Node returns the node with the given id
func (ws *Workspace) Node(id valueobjects.NodeID) (*entities.Node, bool) {
	i, ok := ws.nodeIndex[id]
	if !ok {
		return nil, false
	}
	return ws.nodes[i], true
}

// Edge returns the edge with the given id
func (ws *Workspace) Edge(id string) (*entities.Edge, bool) {
	i, ok := ws.edgeIndex[id]
	if !ok {
		return nil, false
	}
	return ws.edges[i], true
}

// EdgeByPair returns the edge for an ordered (source, target) pair
func (ws *Workspace) EdgeByPair(source, target valueobjects.NodeID) (*entities.Edge, bool) {
	id, ok := ws.pairIndex[entities.PairKey(source, target)]
	if !ok {
		return nil, false
	}
	return ws.edges[ws.edgeIndex[id]], true
}

// NodeCount returns the number of nodes
func (ws *Workspace) NodeCount() int { return len(ws.nodes) }

// EdgeCount returns the number of edges
func (ws *Workspace) EdgeCount() int { return len(ws.edges) }

// LastSavedAt returns when the workspace was last persisted
func (ws *Workspace) LastSavedAt() time.Time { return ws.lastSavedAt }

// Dirty reports whether the workspace changed since the last save
func (ws *Workspace) Dirty() bool { return ws.dirty }

// MarkSaved records a successful persistence pass
func (ws *Workspace) MarkSaved(at time.Time) {
	ws.lastSavedAt = at
	ws.dirty = false
}

// TakeEvents drains and returns the uncommitted domain events
func (ws *Workspace) TakeEvents() []events.DomainEvent {
	out := ws.events
	ws.events = nil
	return out
}

// AddNode constructs a node of the given kind at the given position,
// stacked above every existing node. An unrecognized kind panics
// inside the entity factory.
func (ws *Workspace) AddNode(kind valueobjects.NodeKind, position valueobjects.Position) *entities.Node {
	node := entities.NewNode(kind, position)
	node.ZIndex = ws.topZIndex() + 1
	ws.appendNode(node)
	ws.markDirty()
	ws.raise(events.NewNodeCreated(ws.id, node.ID, kind, time.Now()))
	return node
}

// InsertNode re-inserts a fully formed node, used by undo/redo and
// trash restore. The caller passes an owned clone.
func (ws *Workspace) InsertNode(node *entities.Node) {
	if node == nil || node.ID.IsZero() {
		return
	}
	if _, exists := ws.nodeIndex[node.ID]; exists {
		return
	}
	ws.appendNode(node)
	ws.attachToParent(node)
	if node.Kind == valueobjects.KindProject {
		kept := node.Data.ChildIDs[:0]
		for _, childID := range node.Data.ChildIDs {
			if child, ok := ws.Node(childID); ok && child.Data.ParentID.Equals(node.ID) {
				kept = append(kept, childID)
			}
		}
		node.Data.ChildIDs = kept
	}
	ws.markDirty()
	ws.raise(events.NewNodeCreated(ws.id, node.ID, node.Kind, time.Now()))
}

// OrphanedChild records a surviving node whose parent project was
// removed, with payload snapshots so callers can record the detachment
type OrphanedChild struct {
	NodeID valueobjects.NodeID
	Before entities.NodeData
	After  entities.NodeData
}

// RemoveNodes removes the given nodes and every edge touching them.
// Surviving children of a removed project are detached: their ParentID
// is cleared and their edges' intraProject flags recomputed. It returns
// the removed entities and the detached children so callers can record
// or trash them.
func (ws *Workspace) RemoveNodes(ids []valueobjects.NodeID) ([]*entities.Node, []*entities.Edge, []OrphanedChild) {
	doomed := make(map[valueobjects.NodeID]bool, len(ids))
	for _, id := range ids {
		if _, ok := ws.nodeIndex[id]; ok {
			doomed[id] = true
		}
	}
	if len(doomed) == 0 {
		return nil, nil, nil
	}

	var removedEdges []*entities.Edge
	keptEdges := ws.edges[:0]
	for _, e := range ws.edges {
		if doomed[e.Source] || doomed[e.Target] {
			removedEdges = append(removedEdges, e)
			continue
		}
		keptEdges = append(keptEdges, e)
	}
	ws.edges = keptEdges

	var removedNodes []*entities.Node
	keptNodes := ws.nodes[:0]
	for _, n := range ws.nodes {
		if doomed[n.ID] {
			removedNodes = append(removedNodes, n)
			continue
		}
		keptNodes = append(keptNodes, n)
	}
	ws.nodes = keptNodes

	ws.reindex()
	now := time.Now()
	for _, n := range removedNodes {
		ws.detachFromParent(n)
		ws.raise(events.NewNodeRemoved(ws.id, n.ID, now))
	}
	for _, e := range removedEdges {
		ws.raise(events.NewEdgeRemoved(ws.id, e.ID, e.Source, e.Target, now))
	}

	var orphans []OrphanedChild
	for _, n := range ws.nodes {
		if n.Data.ParentID.IsZero() || !doomed[n.Data.ParentID] {
			continue
		}
		before := n.Data.Clone()
		n.Data.ParentID = valueobjects.NodeID{}
		ws.recomputeIntraProject(n.ID)
		orphans = append(orphans, OrphanedChild{NodeID: n.ID, Before: before, After: n.Data.Clone()})
		ws.raise(events.NewNodeUpdated(ws.id, n.ID, now))
	}

	ws.markDirty()
	return removedNodes, removedEdges, orphans
}

// PatchNode merges a partial update into the node's payload and stamps
// UpdatedAt. A missing id is reported via a not-found error so callers
// can treat it as a no-op without recording history.
func (ws *Workspace) PatchNode(id valueobjects.NodeID, patch entities.NodePatch) (before, after entities.NodeData, err error) {
	node, ok := ws.Node(id)
	if !ok {
		return entities.NodeData{}, entities.NodeData{}, pkgerrors.NewNotFoundError("node")
	}

	if patch.ParentID != nil && !patch.ParentID.IsZero() {
		parent, ok := ws.Node(*patch.ParentID)
		if !ok {
			return entities.NodeData{}, entities.NodeData{}, pkgerrors.NewValidationError("parent project does not exist")
		}
		if parent.Kind != valueobjects.KindProject {
			return entities.NodeData{}, entities.NodeData{}, pkgerrors.NewValidationError("parent must be a project node")
		}
	}

	before = node.Data.Clone()
	reparented := patch.ParentID != nil && !patch.ParentID.Equals(node.Data.ParentID)
	if reparented {
		ws.detachFromParent(node)
	}
	patch.Apply(&node.Data)
	if reparented {
		ws.attachToParent(node)
		ws.recomputeIntraProject(node.ID)
	}
	after = node.Data.Clone()
	ws.markDirty()
	ws.raise(events.NewNodeUpdated(ws.id, id, time.Now()))
	return before, after, nil
}

// SetNodeData replaces a node's payload wholesale, used by undo/redo
func (ws *Workspace) SetNodeData(id valueobjects.NodeID, data entities.NodeData) bool {
	node, ok := ws.Node(id)
	if !ok {
		return false
	}
	reparented := !node.Data.ParentID.Equals(data.ParentID)
	if reparented {
		ws.detachFromParent(node)
	}
	node.Data = data.Clone()
	if reparented {
		ws.attachToParent(node)
		ws.recomputeIntraProject(node.ID)
	}
	ws.markDirty()
	ws.raise(events.NewNodeUpdated(ws.id, id, time.Now()))
	return true
}

// MoveNode places a node at a new position
func (ws *Workspace) MoveNode(id valueobjects.NodeID, position valueobjects.Position) bool {
	node, ok := ws.Node(id)
	if !ok {
		return false
	}
	node.Position = position
	ws.markDirty()
	return true
}

// ResizeNode applies a new size and origin to a node. Resizing from a
// top or left handle moves the origin as well.
func (ws *Workspace) ResizeNode(id valueobjects.NodeID, position valueobjects.Position, size valueobjects.Dimensions) bool {
	node, ok := ws.Node(id)
	if !ok {
		return false
	}
	node.Position = position
	node.Size = size
	ws.markDirty()
	return true
}

// SetEnabled updates a node's activation state. The value is derived
// by the settle pass, so no event is raised for it.
func (ws *Workspace) SetEnabled(id valueobjects.NodeID, enabled bool) bool {
	node, ok := ws.Node(id)
	if !ok || node.Data.Enabled == enabled {
		return false
	}
	node.Data.Enabled = enabled
	ws.markDirty()
	return true
}

// SetSelected updates a node's selection flag. Selection is rendering
// state and is never recorded in history.
func (ws *Workspace) SetSelected(id valueobjects.NodeID, selected bool) bool {
	node, ok := ws.Node(id)
	if !ok {
		return false
	}
	node.Selected = selected
	return true
}

// ZOrder captures the current z-index of every node
func (ws *Workspace) ZOrder() map[valueobjects.NodeID]int {
	order := make(map[valueobjects.NodeID]int, len(ws.nodes))
	for _, n := range ws.nodes {
		order[n.ID] = n.ZIndex
	}
	return order
}

// ApplyZOrder assigns z-indexes from the given map, skipping unknown ids
func (ws *Workspace) ApplyZOrder(order map[valueobjects.NodeID]int) {
	changed := false
	for id, z := range order {
		if node, ok := ws.Node(id); ok {
			node.ZIndex = z
			changed = true
		}
	}
	if changed {
		ws.markDirty()
	}
}

// AddEdge creates an edge for the connection. If an edge already
// exists for the exact (source, target) pair the call is a silent
// no-op and returns nil.
func (ws *Workspace) AddEdge(conn Connection) (*entities.Edge, error) {
	if _, ok := ws.nodeIndex[conn.Source]; !ok {
		return nil, pkgerrors.NewNotFoundError("source node")
	}
	if _, ok := ws.nodeIndex[conn.Target]; !ok {
		return nil, pkgerrors.NewNotFoundError("target node")
	}
	if !ws.cfg.AllowSelfConnections && conn.Source.Equals(conn.Target) {
		return nil, pkgerrors.NewValidationError("cannot connect node to itself")
	}
	if _, taken := ws.pairIndex[entities.PairKey(conn.Source, conn.Target)]; taken {
		return nil, nil
	}

	edge := &entities.Edge{
		ID:           valueobjects.NewEdgeID(),
		Source:       conn.Source,
		Target:       conn.Target,
		SourceHandle: conn.SourceHandle,
		TargetHandle: conn.TargetHandle,
		Data:         entities.DefaultEdgeData(),
	}
	edge.Data.IntraProject = ws.isIntraProject(conn.Source, conn.Target)
	ws.appendEdge(edge)
	ws.markDirty()
	ws.raise(events.NewEdgeAdded(ws.id, edge.ID, edge.Source, edge.Target, time.Now()))
	return edge, nil
}

// InsertEdge re-inserts a fully formed edge, used by undo/redo and
// trash restore. Occupied pairs and missing endpoints are skipped.
func (ws *Workspace) InsertEdge(edge *entities.Edge) bool {
	if edge == nil {
		return false
	}
	if _, ok := ws.nodeIndex[edge.Source]; !ok {
		return false
	}
	if _, ok := ws.nodeIndex[edge.Target]; !ok {
		return false
	}
	if _, exists := ws.edgeIndex[edge.ID]; exists {
		return false
	}
	if _, taken := ws.pairIndex[edge.PairKey()]; taken {
		return false
	}
	ws.appendEdge(edge)
	ws.markDirty()
	ws.raise(events.NewEdgeAdded(ws.id, edge.ID, edge.Source, edge.Target, time.Now()))
	return true
}

// RemoveEdge deletes an edge by id and returns it
func (ws *Workspace) RemoveEdge(id string) (*entities.Edge, bool) {
	i, ok := ws.edgeIndex[id]
	if !ok {
		return nil, false
	}
	edge := ws.edges[i]
	ws.edges = append(ws.edges[:i], ws.edges[i+1:]...)
	ws.reindexEdges()
	ws.markDirty()
	ws.raise(events.NewEdgeRemoved(ws.id, edge.ID, edge.Source, edge.Target, time.Now()))
	return edge, true
}

// SetEdgeData replaces an edge's attributes and returns the previous value
func (ws *Workspace) SetEdgeData(id string, data entities.EdgeData) (entities.EdgeData, bool) {
	edge, ok := ws.Edge(id)
	if !ok {
		return entities.EdgeData{}, false
	}
	before := edge.Data.Clone()
	data.IntraProject = ws.isIntraProject(edge.Source, edge.Target)
	edge.Data = data.Clone()
	ws.markDirty()
	ws.raise(events.NewEdgeUpdated(ws.id, id, time.Now()))
	return before, true
}

// ReverseEdge swaps an edge's endpoints in place, preserving its id
// and remapping handle suffixes. Reversing onto an occupied pair is a
// conflict and leaves the edge untouched.
func (ws *Workspace) ReverseEdge(id string) (*entities.Edge, error) {
	edge, ok := ws.Edge(id)
	if !ok {
		return nil, pkgerrors.NewNotFoundError("edge")
	}
	reversedKey := entities.PairKey(edge.Target, edge.Source)
	if other, taken := ws.pairIndex[reversedKey]; taken && other != edge.ID {
		return nil, pkgerrors.NewConflictError("an edge already exists in the opposite direction")
	}
	delete(ws.pairIndex, edge.PairKey())
	edge.Reverse()
	ws.pairIndex[edge.PairKey()] = edge.ID
	ws.markDirty()
	ws.raise(events.NewEdgeUpdated(ws.id, id, time.Now()))
	return edge, nil
}

// ReconnectEdge re-targets an existing edge to a new connection. If
// the new pair already has an edge, the old edge is dropped instead:
// duplicate prevention takes precedence over reconnection. The
// returned after edge is nil in that case.
func (ws *Workspace) ReconnectEdge(id string, conn Connection) (before, after *entities.Edge, err error) {
	edge, ok := ws.Edge(id)
	if !ok {
		return nil, nil, pkgerrors.NewNotFoundError("edge")
	}
	if _, ok := ws.nodeIndex[conn.Source]; !ok {
		return nil, nil, pkgerrors.NewNotFoundError("source node")
	}
	if _, ok := ws.nodeIndex[conn.Target]; !ok {
		return nil, nil, pkgerrors.NewNotFoundError("target node")
	}

	before = edge.Clone()
	newKey := entities.PairKey(conn.Source, conn.Target)
	if other, taken := ws.pairIndex[newKey]; taken && other != edge.ID {
		ws.RemoveEdge(edge.ID)
		return before, nil, nil
	}

	delete(ws.pairIndex, edge.PairKey())
	edge.Source = conn.Source
	edge.Target = conn.Target
	edge.SourceHandle = conn.SourceHandle
	edge.TargetHandle = conn.TargetHandle
	edge.Data.IntraProject = ws.isIntraProject(conn.Source, conn.Target)
	ws.pairIndex[edge.PairKey()] = edge.ID
	ws.markDirty()
	ws.raise(events.NewEdgeUpdated(ws.id, id, time.Now()))
	return before, edge.Clone(), nil
}

// AddMessage appends a message to a conversation node's transcript
func (ws *Workspace) AddMessage(nodeID valueobjects.NodeID, msg entities.Message) error {
	node, ok := ws.Node(nodeID)
	if !ok {
		return pkgerrors.NewNotFoundError("node")
	}
	if node.Kind != valueobjects.KindConversation {
		return pkgerrors.NewValidationError("messages belong to conversation nodes")
	}
	node.Data.Messages = append(node.Data.Messages, msg)
	node.Data.UpdatedAt = time.Now()
	ws.markDirty()
	ws.raise(events.NewNodeUpdated(ws.id, nodeID, time.Now()))
	return nil
}

// RemoveMessage deletes a message from a conversation node and returns
// it together with its former index
func (ws *Workspace) RemoveMessage(nodeID valueobjects.NodeID, messageID string) (entities.Message, int, bool) {
	node, ok := ws.Node(nodeID)
	if !ok {
		return entities.Message{}, -1, false
	}
	for i, m := range node.Data.Messages {
		if m.ID == messageID {
			node.Data.Messages = append(node.Data.Messages[:i], node.Data.Messages[i+1:]...)
			node.Data.UpdatedAt = time.Now()
			ws.markDirty()
			ws.raise(events.NewNodeUpdated(ws.id, nodeID, time.Now()))
			return m, i, true
		}
	}
	return entities.Message{}, -1, false
}

// InsertMessageAt restores a message at its original transcript index
func (ws *Workspace) InsertMessageAt(nodeID valueobjects.NodeID, msg entities.Message, index int) bool {
	node, ok := ws.Node(nodeID)
	if !ok {
		return false
	}
	msgs := node.Data.Messages
	if index < 0 || index > len(msgs) {
		index = len(msgs)
	}
	msgs = append(msgs, entities.Message{})
	copy(msgs[index+1:], msgs[index:])
	msgs[index] = msg
	node.Data.Messages = msgs
	node.Data.UpdatedAt = time.Now()
	ws.markDirty()
	return true
}

// SoftDeleteNodes removes the nodes like RemoveNodes but parks each
// one, with its incident edges, in the trash instead of discarding it.
// The trash is capped FIFO and is not part of undo history.
func (ws *Workspace) SoftDeleteNodes(ids []valueobjects.NodeID) []TrashedItem {
	var items []TrashedItem
	now := time.Now()
	for _, id := range ids {
		nodes, edges, _ := ws.RemoveNodes([]valueobjects.NodeID{id})
		if len(nodes) == 0 {
			continue
		}
		item := TrashedItem{Node: nodes[0].Clone(), DeletedAt: now}
		for _, e := range edges {
			item.Edges = append(item.Edges, e.Clone())
		}
		items = append(items, item)
		ws.trash = append(ws.trash, item)
	}
	for len(ws.trash) > ws.cfg.TrashLimit {
		ws.trash = ws.trash[1:]
	}
	return items
}

// Trash returns the trashed items, oldest first
func (ws *Workspace) Trash() []TrashedItem {
	out := make([]TrashedItem, len(ws.trash))
	copy(out, ws.trash)
	return out
}

// RestoreFromTrash reinserts a trashed node and the subset of its
// edges whose both endpoints still exist in the graph. Dangling edges
// are silently pruned.
func (ws *Workspace) RestoreFromTrash(nodeID valueobjects.NodeID) (*entities.Node, []*entities.Edge, error) {
	idx := -1
	for i, item := range ws.trash {
		if item.Node.ID.Equals(nodeID) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, pkgerrors.NewNotFoundError("trashed node")
	}
	item := ws.trash[idx]
	ws.trash = append(ws.trash[:idx], ws.trash[idx+1:]...)

	node := item.Node.Clone()
	ws.InsertNode(node)

	var restored []*entities.Edge
	for _, e := range item.Edges {
		clone := e.Clone()
		if ws.InsertEdge(clone) {
			restored = append(restored, clone)
		}
	}
	return node, restored, nil
}

// internal helpers

func (ws *Workspace) appendNode(n *entities.Node) {
	ws.nodeIndex[n.ID] = len(ws.nodes)
	ws.nodes = append(ws.nodes, n)
}

func (ws *Workspace) appendEdge(e *entities.Edge) {
	ws.edgeIndex[e.ID] = len(ws.edges)
	ws.pairIndex[e.PairKey()] = e.ID
	ws.edges = append(ws.edges, e)
}

func (ws *Workspace) reindex() {
	ws.nodeIndex = make(map[valueobjects.NodeID]int, len(ws.nodes))
	for i, n := range ws.nodes {
		ws.nodeIndex[n.ID] = i
	}
	ws.reindexEdges()
}

func (ws *Workspace) reindexEdges() {
	ws.edgeIndex = make(map[string]int, len(ws.edges))
	ws.pairIndex = make(map[string]string, len(ws.edges))
	for i, e := range ws.edges {
		ws.edgeIndex[e.ID] = i
		ws.pairIndex[e.PairKey()] = e.ID
	}
}

func (ws *Workspace) topZIndex() int {
	top := 0
	for _, n := range ws.nodes {
		if n.ZIndex > top {
			top = n.ZIndex
		}
	}
	return top
}

func (ws *Workspace) isIntraProject(source, target valueobjects.NodeID) bool {
	src, ok := ws.Node(source)
	if !ok {
		return false
	}
	tgt, ok := ws.Node(target)
	if !ok {
		return false
	}
	return !src.Data.ParentID.IsZero() && src.Data.ParentID.Equals(tgt.Data.ParentID)
}

func (ws *Workspace) recomputeIntraProject(nodeID valueobjects.NodeID) {
	for _, e := range ws.edges {
		if e.Source.Equals(nodeID) || e.Target.Equals(nodeID) {
			e.Data.IntraProject = ws.isIntraProject(e.Source, e.Target)
		}
	}
}

func (ws *Workspace) attachToParent(n *entities.Node) {
	if n.Data.ParentID.IsZero() {
		return
	}
	parent, ok := ws.Node(n.Data.ParentID)
	if !ok || parent.Kind != valueobjects.KindProject {
		n.Data.ParentID = valueobjects.NodeID{}
		return
	}
	for _, childID := range parent.Data.ChildIDs {
		if childID.Equals(n.ID) {
			return
		}
	}
	parent.Data.ChildIDs = append(parent.Data.ChildIDs, n.ID)
}

func (ws *Workspace) detachFromParent(n *entities.Node) {
	if n.Data.ParentID.IsZero() {
		return
	}
	parent, ok := ws.Node(n.Data.ParentID)
	if !ok {
		return
	}
	kept := parent.Data.ChildIDs[:0]
	for _, childID := range parent.Data.ChildIDs {
		if !childID.Equals(n.ID) {
			kept = append(kept, childID)
		}
	}
	parent.Data.ChildIDs = kept
}

func (ws *Workspace) markDirty() {
	ws.dirty = true
}

func (ws *Workspace) raise(event events.DomainEvent) {
	ws.events = append(ws.events, event)
}
