package snapshot

import (
	"encoding/json"
	"time"

	"canvas-backend/domain/core/aggregates"
	"canvas-backend/domain/core/entities"
	"canvas-backend/domain/core/valueobjects"
)

// SchemaVersion is the current snapshot document version
const SchemaVersion = 2

// Snapshot is the serialized form of one workspace, the unit of
// persistence exchanged with clients and the file store
type Snapshot struct {
	ID       string      `json:"id" validate:"required"`
	Version  int         `json:"version"`
	SavedAt  time.Time   `json:"savedAt"`
	Nodes    []NodeDoc   `json:"nodes" validate:"dive"`
	Edges    []EdgeDoc   `json:"edges" validate:"dive"`
	Settings SettingsDoc `json:"settings"`
}

// SettingsDoc carries the context assembly settings alongside the graph
type SettingsDoc struct {
	MaxDepth         int `json:"maxDepth"`
	ChunkTokenBudget int `json:"chunkTokenBudget"`
	ConversationTail int `json:"conversationTail"`
}

// NodeDoc is one serialized node
type NodeDoc struct {
	ID       string          `json:"id" validate:"required,uuid"`
	Kind     string          `json:"kind" validate:"required"`
	Position PositionDoc     `json:"position"`
	Size     *DimensionsDoc  `json:"size,omitempty"`
	ZIndex   int             `json:"zIndex"`
	Data     json.RawMessage `json:"data"`
}

// PositionDoc is a serialized canvas position
type PositionDoc struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DimensionsDoc is a serialized node size
type DimensionsDoc struct {
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
}

// EdgeDoc is one serialized edge
type EdgeDoc struct {
	ID           string      `json:"id" validate:"required"`
	Source       string      `json:"source" validate:"required,uuid"`
	Target       string      `json:"target" validate:"required,uuid"`
	SourceHandle string      `json:"sourceHandle,omitempty"`
	TargetHandle string      `json:"targetHandle,omitempty"`
	Data         EdgeDataDoc `json:"data"`
}

// EdgeDataDoc is a serialized edge payload. Strength and Weight
// coexist so version 1 snapshots, which carried a numeric weight,
// still load.
type EdgeDataDoc struct {
	Strength     string        `json:"strength,omitempty"`
	Weight       *float64      `json:"weight,omitempty"`
	Direction    string        `json:"direction,omitempty"`
	Active       *bool         `json:"active,omitempty"`
	Color        string        `json:"color,omitempty"`
	Label        string        `json:"label,omitempty"`
	Waypoints    []PositionDoc `json:"waypoints,omitempty"`
	IntraProject bool          `json:"intraProject,omitempty"`
}

// Export serializes the workspace into a snapshot document
func Export(ws *aggregates.Workspace, settings SettingsDoc) (*Snapshot, error) {
	snap := &Snapshot{
		ID:       ws.ID(),
		Version:  SchemaVersion,
		SavedAt:  time.Now(),
		Nodes:    make([]NodeDoc, 0, ws.NodeCount()),
		Edges:    make([]EdgeDoc, 0, ws.EdgeCount()),
		Settings: settings,
	}

	for _, n := range ws.Nodes() {
		data, err := json.Marshal(n.Data)
		if err != nil {
			return nil, err
		}
		snap.Nodes = append(snap.Nodes, NodeDoc{
			ID:       n.ID.String(),
			Kind:     string(n.Kind),
			Position: PositionDoc{X: n.Position.X, Y: n.Position.Y},
			Size:     &DimensionsDoc{Width: n.Size.Width, Height: n.Size.Height},
			ZIndex:   n.ZIndex,
			Data:     data,
		})
	}

	for _, e := range ws.Edges() {
		snap.Edges = append(snap.Edges, EdgeDoc{
			ID:           e.ID,
			Source:       e.Source.String(),
			Target:       e.Target.String(),
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
			Data:         exportEdgeData(e.Data),
		})
	}

	return snap, nil
}

func exportEdgeData(d entities.EdgeData) EdgeDataDoc {
	active := d.Active
	doc := EdgeDataDoc{
		Strength:     string(d.Strength),
		Direction:    string(d.Direction),
		Active:       &active,
		Color:        d.Color,
		Label:        d.Label,
		IntraProject: d.IntraProject,
	}
	for _, wp := range d.Waypoints {
		doc.Waypoints = append(doc.Waypoints, PositionDoc{X: wp.X, Y: wp.Y})
	}
	return doc
}

func (p PositionDoc) toValue() valueobjects.Position {
	return valueobjects.NewPosition(p.X, p.Y)
}
