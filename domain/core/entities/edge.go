package entities

import (
	"strings"

	"canvas-backend/domain/core/valueobjects"
)

// Edge is a directed connection between two nodes
type Edge struct {
	ID           string              `json:"id"`
	Source       valueobjects.NodeID `json:"source"`
	Target       valueobjects.NodeID `json:"target"`
	SourceHandle string              `json:"sourceHandle,omitempty"`
	TargetHandle string              `json:"targetHandle,omitempty"`
	Data         EdgeData            `json:"data"`
}

// EdgeData holds the edge's traversal and presentation attributes
type EdgeData struct {
	Strength     valueobjects.Strength   `json:"strength"`
	Direction    valueobjects.Direction  `json:"direction"`
	Active       bool                    `json:"active"`
	Color        string                  `json:"color,omitempty"`
	Label        string                  `json:"label,omitempty"`
	Waypoints    []valueobjects.Position `json:"waypoints,omitempty"`
	IntraProject bool                    `json:"intraProject"`
}

// DefaultEdgeData returns the attributes a freshly drawn edge carries
func DefaultEdgeData() EdgeData {
	return EdgeData{
		Strength:  valueobjects.StrengthNormal,
		Direction: valueobjects.DirectionDirected,
		Active:    true,
	}
}

// Clone returns a deep copy of the edge
func (e *Edge) Clone() *Edge {
	if e == nil {
		return nil
	}
	c := *e
	c.Data = e.Data.Clone()
	return &c
}

// Clone returns a deep copy of the edge data
func (d EdgeData) Clone() EdgeData {
	c := d
	if d.Waypoints != nil {
		c.Waypoints = make([]valueobjects.Position, len(d.Waypoints))
		copy(c.Waypoints, d.Waypoints)
	}
	return c
}

// PairKey identifies the ordered (source, target) pair. At most one
// edge may exist per pair.
func (e *Edge) PairKey() string {
	return PairKey(e.Source, e.Target)
}

// PairKey builds the ordered-pair key for a source and target
func PairKey(source, target valueobjects.NodeID) string {
	return source.String() + ">" + target.String()
}

// Reverse swaps the edge's endpoints in place, remapping handle
// suffixes so each endpoint keeps its visual anchor. The edge id
// is preserved.
func (e *Edge) Reverse() {
	e.Source, e.Target = e.Target, e.Source
	e.SourceHandle, e.TargetHandle = swapHandleSuffix(e.TargetHandle), swapHandleSuffix(e.SourceHandle)
}

// NormalizeHandles fixes handles whose suffix disagrees with the end
// they are attached to. Legacy snapshots contain these.
func (e *Edge) NormalizeHandles() {
	if strings.HasSuffix(e.SourceHandle, "-target") {
		e.SourceHandle = swapHandleSuffix(e.SourceHandle)
	}
	if strings.HasSuffix(e.TargetHandle, "-source") {
		e.TargetHandle = swapHandleSuffix(e.TargetHandle)
	}
}

func swapHandleSuffix(handle string) string {
	switch {
	case strings.HasSuffix(handle, "-source"):
		return strings.TrimSuffix(handle, "-source") + "-target"
	case strings.HasSuffix(handle, "-target"):
		return strings.TrimSuffix(handle, "-target") + "-source"
	default:
		return handle
	}
}
