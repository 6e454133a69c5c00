package services

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"canvas-backend/application/contextassembly"
	"canvas-backend/application/contextcache"
	"canvas-backend/application/history"
	"canvas-backend/domain/config"
	"canvas-backend/domain/core/aggregates"
	"canvas-backend/domain/core/entities"
	"canvas-backend/domain/core/valueobjects"
	"canvas-backend/pkg/errors"
	"canvas-backend/pkg/observability"
)

// WorkspaceService is the per-workspace context object. It owns the
// graph store, the history log and the context cache for one canvas
// and routes every mutation through all three consistently.
//
// All operations run behind a single mutex: the core assumes a single
// writer and the lock preserves that assumption.
type WorkspaceService struct {
	mu sync.Mutex

	ws        *aggregates.Workspace
	log       *history.Log
	cache     *contextcache.Cache
	assembler *contextassembly.Assembler
	settings  contextassembly.Settings

	cfg     *config.DomainConfig
	logger  *zap.Logger
	metrics *observability.Metrics

	drag   *history.DragSession
	resize *history.ResizeSession

	// Ephemeral visual flags, never part of the authoritative model.
	// Replaced wholesale on update and swept by TTL.
	spawning map[valueobjects.NodeID]time.Time
}

// HistoryStatus summarizes the undo log for clients
type HistoryStatus struct {
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
	Cursor  int  `json:"cursor"`
	Length  int  `json:"length"`
}

// NewWorkspaceService creates the service and its three components
// for an empty workspace
func NewWorkspaceService(id string, cfg *config.DomainConfig, logger *zap.Logger, metrics *observability.Metrics) *WorkspaceService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	// Each service owns its config copy so limits reloaded at runtime
	// can be applied under the service mutex.
	own := *cfg
	cfg = &own
	return &WorkspaceService{
		ws:        aggregates.NewWorkspace(id, cfg),
		log:       history.NewLog(cfg.HistoryLimit, logger),
		cache:     contextcache.NewCache(cfg.TitleFingerprintLength),
		assembler: contextassembly.NewAssembler(logger),
		settings:  contextassembly.DefaultSettings(cfg),
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		spawning:  map[valueobjects.NodeID]time.Time{},
	}
}

// ID returns the workspace identifier
func (s *WorkspaceService) ID() string {
	return s.ws.ID()
}

// DomainConfig returns the engine limits this workspace runs with
func (s *WorkspaceService) DomainConfig() *config.DomainConfig {
	return s.cfg
}

// ApplyLimits installs reloaded engine limits on a live workspace. The
// history cap takes effect immediately; shrinking drops the oldest
// entries.
func (s *WorkspaceService) ApplyLimits(next config.DomainConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.cfg = next
	s.log.SetLimit(next.HistoryLimit)
}

// Nodes returns the current node collection
func (s *WorkspaceService) Nodes() []*entities.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	nodes := s.ws.Nodes()
	out := make([]*entities.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// Edges returns the current edge collection
func (s *WorkspaceService) Edges() []*entities.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	edges := s.ws.Edges()
	out := make([]*entities.Edge, len(edges))
	for i, e := range edges {
		out[i] = e.Clone()
	}
	return out
}

// History returns the undo log status
func (s *WorkspaceService) History() HistoryStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return HistoryStatus{
		CanUndo: s.log.CanUndo(),
		CanRedo: s.log.CanRedo(),
		Cursor:  s.log.Cursor(),
		Length:  s.log.Len(),
	}
}

// CreateNode adds a node of the given kind and records the creation
func (s *WorkspaceService) CreateNode(kind valueobjects.NodeKind, position valueobjects.Position) (*entities.Node, error) {
	if !kind.IsValid() {
		return nil, errors.NewValidationError("unknown node kind")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	node := s.ws.AddNode(kind, position)
	s.record(history.NewAddNode(node))
	s.settle()
	return node.Clone(), nil
}

// UpdateNode merges a partial payload update into a node. A missing
// id is a no-op, per the store contract.
func (s *WorkspaceService) UpdateNode(id valueobjects.NodeID, patch entities.NodePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, after, err := s.ws.PatchNode(id, patch)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return err
	}
	s.record(history.NewUpdateNode(id, before, after))
	s.settle()
	return nil
}

// UpdateNodes merges partial payload updates into several nodes,
// recorded as a single bulk entry. Missing ids are skipped.
func (s *WorkspaceService) UpdateNodes(patches map[valueobjects.NodeID]entities.NodePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changes []history.NodeDataChange
	for id, patch := range patches {
		before, after, err := s.ws.PatchNode(id, patch)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			// A failed patch rolls back the applied prefix: the bulk
			// update commits fully or not at all, and the log only
			// ever sees the committed form.
			for i := len(changes) - 1; i >= 0; i-- {
				s.ws.SetNodeData(changes[i].NodeID, changes[i].Before)
			}
			s.ws.TakeEvents()
			return err
		}
		changes = append(changes, history.NodeDataChange{NodeID: id, Before: before, After: after})
	}
	if len(changes) == 0 {
		return nil
	}
	s.record(&history.BulkUpdateNodes{Changes: changes})
	s.settle()
	return nil
}

// DeleteNodes removes nodes and their incident edges, recorded as one
// atomic entry so undo restores everything
func (s *WorkspaceService) DeleteNodes(ids []valueobjects.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, edges, orphans := s.ws.RemoveNodes(ids)
	if len(nodes) == 0 {
		return
	}

	claimed := make(map[string]bool, len(edges))
	actions := make([]history.Action, 0, len(nodes)+len(orphans))
	// Orphan detachments revert last, after their parent is back
	for _, o := range orphans {
		actions = append(actions, history.NewUpdateNode(o.NodeID, o.Before, o.After))
	}
	for _, n := range nodes {
		var incident []*entities.Edge
		for _, e := range edges {
			if claimed[e.ID] {
				continue
			}
			if e.Source.Equals(n.ID) || e.Target.Equals(n.ID) {
				claimed[e.ID] = true
				incident = append(incident, e)
			}
		}
		actions = append(actions, history.NewDeleteNode(n, incident))
	}
	s.record(history.NewBatch(actions...))
	s.settle()
}

// SoftDeleteNodes parks nodes in the trash instead of discarding them.
// The trash is its own restore path and is not written to history.
func (s *WorkspaceService) SoftDeleteNodes(ids []valueobjects.NodeID) []aggregates.TrashedItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.ws.SoftDeleteNodes(ids)
	s.metrics.SetTrashSize(s.ws.ID(), len(s.ws.Trash()))
	s.settle()
	return items
}

// Trash lists the soft-deleted items, oldest first
func (s *WorkspaceService) Trash() []aggregates.TrashedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.Trash()
}

// RestoreFromTrash reinserts a trashed node and whichever of its edges
// still have both endpoints
func (s *WorkspaceService) RestoreFromTrash(nodeID valueobjects.NodeID) (*entities.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, _, err := s.ws.RestoreFromTrash(nodeID)
	if err != nil {
		return nil, err
	}
	s.metrics.SetTrashSize(s.ws.ID(), len(s.ws.Trash()))
	s.settle()
	return node.Clone(), nil
}

// AddEdge connects two nodes. A duplicate (source, target) pair is
// silently dropped and returns nil.
func (s *WorkspaceService) AddEdge(conn aggregates.Connection) (*entities.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	edge, err := s.ws.AddEdge(conn)
	if err != nil || edge == nil {
		return nil, err
	}
	s.record(history.NewAddEdge(edge))
	s.settle()
	return edge.Clone(), nil
}

// DeleteEdge removes an edge by id
func (s *WorkspaceService) DeleteEdge(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	edge, ok := s.ws.RemoveEdge(id)
	if !ok {
		return
	}
	s.record(history.NewDeleteEdge(edge))
	s.settle()
}

// UpdateEdge replaces an edge's attributes
func (s *WorkspaceService) UpdateEdge(id string, data entities.EdgeData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.ws.SetEdgeData(id, data)
	if !ok {
		return errors.NewNotFoundError("edge")
	}
	edge, _ := s.ws.Edge(id)
	s.record(&history.UpdateEdge{EdgeID: id, Before: before, After: edge.Data.Clone()})
	s.settle()
	return nil
}

// ReverseEdge swaps an edge's endpoints, preserving its id
func (s *WorkspaceService) ReverseEdge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ws.ReverseEdge(id); err != nil {
		return err
	}
	s.record(&history.ReverseEdge{EdgeID: id})
	s.settle()
	return nil
}

// ReconnectEdge re-targets an edge to a new connection. If the new
// pair is already occupied the old edge is dropped instead.
func (s *WorkspaceService) ReconnectEdge(id string, conn aggregates.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, after, err := s.ws.ReconnectEdge(id, conn)
	if err != nil {
		return err
	}
	s.record(history.NewReconnectEdge(before, after))
	s.settle()
	return nil
}

// AddMessage appends a message to a conversation node's transcript
func (s *WorkspaceService) AddMessage(nodeID valueobjects.NodeID, role, content string) (*entities.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := entities.Message{
		ID:        valueobjects.NewMessageID(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.ws.AddMessage(nodeID, msg); err != nil {
		return nil, err
	}
	s.record(&history.AddMessage{NodeID: nodeID, Message: msg})
	s.settle()
	return &msg, nil
}

// DeleteMessage removes a message from a conversation node
func (s *WorkspaceService) DeleteMessage(nodeID valueobjects.NodeID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, index, ok := s.ws.RemoveMessage(nodeID, messageID)
	if !ok {
		return
	}
	s.record(&history.DeleteMessage{NodeID: nodeID, Message: msg, Index: index})
	s.settle()
}

// StartNodeDrag snapshots positions at gesture start. Pointer moves
// between start and commit update the store directly without touching
// history.
func (s *WorkspaceService) StartNodeDrag(ids []valueobjects.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag = history.BeginDrag(s.ws, ids)
}

// DragNodes applies transient positions during a drag gesture
func (s *WorkspaceService) DragNodes(positions map[valueobjects.NodeID]valueobjects.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, pos := range positions {
		s.ws.MoveNode(id, pos)
	}
}

// CommitNodeDrag ends the gesture, recording a single coalesced entry
// only if at least one node actually moved
func (s *WorkspaceService) CommitNodeDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if action := s.drag.Commit(s.ws); action != nil {
		s.record(action)
	}
	s.drag = nil
	s.settle()
}

// StartNodeResize snapshots geometry at gesture start
func (s *WorkspaceService) StartNodeResize(ids []valueobjects.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resize = history.BeginResize(s.ws, ids)
}

// ResizeNodes applies transient geometry during a resize gesture
func (s *WorkspaceService) ResizeNodes(changes map[valueobjects.NodeID]history.Geometry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, g := range changes {
		s.ws.ResizeNode(id, g.Position, g.Size)
	}
}

// CommitNodeResize ends the gesture, recording one coalesced entry
// only if geometry changed
func (s *WorkspaceService) CommitNodeResize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if action := s.resize.Commit(s.ws); action != nil {
		s.record(action)
	}
	s.resize = nil
	s.settle()
}

// ReorderLayers assigns new z-indexes and records the rearrangement
func (s *WorkspaceService) ReorderLayers(order map[valueobjects.NodeID]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.ws.ZOrder()
	s.ws.ApplyZOrder(order)
	s.record(&history.ReorderLayers{Before: before, After: s.ws.ZOrder()})
	s.settle()
}

// Undo reverts the entry at the history cursor. At the boundary it is
// a safe no-op and returns false.
func (s *WorkspaceService) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.log.Undo(s.ws)
	if ok {
		s.settle()
	}
	return ok
}

// Redo replays the entry past the history cursor. At the tail it is a
// safe no-op and returns false.
func (s *WorkspaceService) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.log.Redo(s.ws)
	if ok {
		s.settle()
	}
	return ok
}

// GetContextForNode returns the assembled context for the node,
// served from the fingerprint cache when the graph and settings have
// not meaningfully changed
func (s *WorkspaceService) GetContextForNode(nodeID valueobjects.NodeID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fingerprint := s.cache.Fingerprint(s.ws, s.settings, s.log.Cursor())
	if value, ok := s.cache.Get(nodeID, fingerprint); ok {
		s.metrics.RecordCacheHit()
		return value, nil
	}

	s.metrics.RecordCacheMiss()
	started := time.Now()
	value, err := s.assembler.Assemble(s.ws, nodeID, s.settings)
	if err != nil {
		return "", err
	}
	s.metrics.ObserveAssembly(time.Since(started).Seconds())
	s.cache.Put(nodeID, fingerprint, value)
	return value, nil
}

// Settings returns the current context assembly settings
func (s *WorkspaceService) Settings() contextassembly.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the context assembly settings. The cache
// key carries the depth, so stale entries miss naturally.
func (s *WorkspaceService) UpdateSettings(settings contextassembly.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings.MaxDepth <= 0 {
		settings.MaxDepth = s.cfg.MaxContextDepth
	}
	if settings.ChunkTokenBudget <= 0 {
		settings.ChunkTokenBudget = s.cfg.ChunkTokenBudget
	}
	if settings.ConversationTail <= 0 {
		settings.ConversationTail = s.cfg.ConversationTail
	}
	s.settings = settings
}

// ReplaceWorkspace swaps in a freshly restored aggregate. History and
// the context cache are cleared: prior entries are meaningless against
// the new graph.
func (s *WorkspaceService) ReplaceWorkspace(ws *aggregates.Workspace, settings contextassembly.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ws = ws
	s.log.Clear()
	s.cache.Clear()
	s.drag = nil
	s.resize = nil
	s.spawning = map[valueobjects.NodeID]time.Time{}
	if settings.MaxDepth > 0 {
		s.settings = settings
	}
	s.settle()
}

// Workspace exposes the aggregate for the persistence boundary. The
// caller must not mutate it.
func (s *WorkspaceService) Workspace() *aggregates.Workspace {
	return s.ws
}

// MarkSaved records a successful snapshot export
func (s *WorkspaceService) MarkSaved(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws.MarkSaved(at)
}

// MarkSpawning flags nodes as freshly spawned for rendering feedback
func (s *WorkspaceService) MarkSpawning(ids []valueobjects.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[valueobjects.NodeID]time.Time, len(s.spawning)+len(ids))
	for id, at := range s.spawning {
		next[id] = at
	}
	now := time.Now()
	for _, id := range ids {
		next[id] = now
	}
	s.spawning = next
}

// SpawnFlags returns the ids still flagged as spawning, sweeping
// expired flags first
func (s *WorkspaceService) SpawnFlags() []valueobjects.NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()

	ttl := time.Duration(s.cfg.SpawnFlagTTLSeconds) * time.Second
	now := time.Now()
	next := make(map[valueobjects.NodeID]time.Time, len(s.spawning))
	ids := make([]valueobjects.NodeID, 0, len(s.spawning))
	for id, at := range s.spawning {
		if now.Sub(at) < ttl {
			next[id] = at
			ids = append(ids, id)
		}
	}
	s.spawning = next
	return ids
}

// record appends an already-applied action to the history log
func (s *WorkspaceService) record(action history.Action) {
	if action == nil {
		return
	}
	s.log.Record(action)
	s.metrics.RecordMutation(string(action.Kind()))
	s.metrics.SetHistoryDepth(s.ws.ID(), s.log.Len())
}

// settle runs the explicit second pass after a mutation batch has
// fully committed: domain events are drained and, when any of them
// can affect activation, the activation conditions are re-evaluated
// against the settled graph.
func (s *WorkspaceService) settle() {
	drained := s.ws.TakeEvents()
	if len(drained) == 0 {
		return
	}
	evaluateActivation(s.ws)
}
