package history

import (
	"canvas-backend/domain/core/aggregates"
	"canvas-backend/domain/core/valueobjects"
)

// Gesture coalescing. A drag or resize produces one transient update
// per pointer-move event; recording each would flood the log. Instead
// the gesture start snapshots the affected geometry, and the commit
// diffs final against snapshotted values, producing a single entry
// only if something actually changed.

// DragSession holds the positions captured when a drag started
type DragSession struct {
	origins map[valueobjects.NodeID]valueobjects.Position
}

// BeginDrag snapshots the current positions of the dragged nodes
func BeginDrag(ws *aggregates.Workspace, ids []valueobjects.NodeID) *DragSession {
	s := &DragSession{origins: make(map[valueobjects.NodeID]valueobjects.Position, len(ids))}
	for _, id := range ids {
		if node, ok := ws.Node(id); ok {
			s.origins[id] = node.Position
		}
	}
	return s
}

// Commit diffs final positions against the snapshot and returns a
// single action covering every node that moved, or nil if none did
func (s *DragSession) Commit(ws *aggregates.Workspace) Action {
	if s == nil {
		return nil
	}
	var moves []Action
	for id, origin := range s.origins {
		node, ok := ws.Node(id)
		if !ok || node.Position.Equals(origin) {
			continue
		}
		moves = append(moves, &MoveNode{NodeID: id, Before: origin, After: node.Position})
	}
	return NewBatch(moves...)
}

// ResizeSession holds the geometry captured when a resize started
type ResizeSession struct {
	origins map[valueobjects.NodeID]Geometry
}

// BeginResize snapshots the current geometry of the resized nodes
func BeginResize(ws *aggregates.Workspace, ids []valueobjects.NodeID) *ResizeSession {
	s := &ResizeSession{origins: make(map[valueobjects.NodeID]Geometry, len(ids))}
	for _, id := range ids {
		if node, ok := ws.Node(id); ok {
			s.origins[id] = Geometry{Position: node.Position, Size: node.Size}
		}
	}
	return s
}

// Commit diffs final geometry against the snapshot and returns a
// single action covering every node that changed, or nil if none did
func (s *ResizeSession) Commit(ws *aggregates.Workspace) Action {
	if s == nil {
		return nil
	}
	var resizes []Action
	for id, origin := range s.origins {
		node, ok := ws.Node(id)
		if !ok {
			continue
		}
		if node.Position.Equals(origin.Position) && node.Size.Equals(origin.Size) {
			continue
		}
		resizes = append(resizes, &ResizeNode{
			NodeID: id,
			Before: origin,
			After:  Geometry{Position: node.Position, Size: node.Size},
		})
	}
	return NewBatch(resizes...)
}
