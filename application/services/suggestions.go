package services

import (
	"time"

	"canvas-backend/application/history"
	"canvas-backend/domain/core/aggregates"
	"canvas-backend/domain/core/entities"
	"canvas-backend/domain/core/valueobjects"
	"canvas-backend/pkg/errors"
)

// Suggestion is a proposed node anchored to an existing one, typically
// produced by an AI pass over the canvas. Accepting it materializes
// the node and a connection from the new node to its anchor.
type Suggestion struct {
	AnchorID valueobjects.NodeID   `json:"anchorId"`
	Kind     valueobjects.NodeKind `json:"kind"`
	Title    string                `json:"title"`
	Content  string                `json:"content,omitempty"`
	Position valueobjects.Position `json:"position"`
}

// AcceptSuggestion creates the suggested node and wires it to its
// anchor, recorded as one atomic history entry. If the anchor was
// deleted while the suggestion was pending the whole operation aborts
// and nothing is created.
func (s *WorkspaceService) AcceptSuggestion(sug Suggestion) (*entities.Node, error) {
	if !sug.Kind.IsValid() {
		return nil, errors.NewValidationError("unknown node kind")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ws.Node(sug.AnchorID); !ok {
		return nil, errors.NewNotFoundError("anchor node")
	}

	node := s.ws.AddNode(sug.Kind, sug.Position)
	if sug.Title != "" {
		node.Data.Title = sug.Title
	}
	if sug.Content != "" {
		node.Data.Content = sug.Content
	}

	actions := []history.Action{history.NewAddNode(node)}
	edge, err := s.ws.AddEdge(aggregates.Connection{Source: node.ID, Target: sug.AnchorID})
	if err == nil && edge != nil {
		actions = append(actions, history.NewAddEdge(edge))
	}
	s.record(history.NewBatch(actions...))

	s.spawning[node.ID] = time.Now()
	s.settle()
	return node.Clone(), nil
}
