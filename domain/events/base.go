package events

import (
	"time"

	"canvas-backend/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// NodeCreated is raised when a node is added to the workspace
type NodeCreated struct {
	BaseEvent
	NodeID valueobjects.NodeID   `json:"node_id"`
	Kind   valueobjects.NodeKind `json:"kind"`
}

// NewNodeCreated creates a NodeCreated event
func NewNodeCreated(workspaceID string, nodeID valueobjects.NodeID, kind valueobjects.NodeKind, timestamp time.Time) NodeCreated {
	return NodeCreated{
		BaseEvent: BaseEvent{
			AggregateID: workspaceID,
			EventType:   "node.created",
			Timestamp:   timestamp,
		},
		NodeID: nodeID,
		Kind:   kind,
	}
}

// NodeRemoved is raised when a node leaves the workspace
type NodeRemoved struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
}

// NewNodeRemoved creates a NodeRemoved event
func NewNodeRemoved(workspaceID string, nodeID valueobjects.NodeID, timestamp time.Time) NodeRemoved {
	return NodeRemoved{
		BaseEvent: BaseEvent{
			AggregateID: workspaceID,
			EventType:   "node.removed",
			Timestamp:   timestamp,
		},
		NodeID: nodeID,
	}
}

// NodeUpdated is raised when a node's payload changes
type NodeUpdated struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
}

// NewNodeUpdated creates a NodeUpdated event
func NewNodeUpdated(workspaceID string, nodeID valueobjects.NodeID, timestamp time.Time) NodeUpdated {
	return NodeUpdated{
		BaseEvent: BaseEvent{
			AggregateID: workspaceID,
			EventType:   "node.updated",
			Timestamp:   timestamp,
		},
		NodeID: nodeID,
	}
}

// EdgeAdded is raised when a new edge is created
type EdgeAdded struct {
	BaseEvent
	EdgeID   string              `json:"edge_id"`
	SourceID valueobjects.NodeID `json:"source_id"`
	TargetID valueobjects.NodeID `json:"target_id"`
}

// NewEdgeAdded creates an EdgeAdded event
func NewEdgeAdded(workspaceID, edgeID string, sourceID, targetID valueobjects.NodeID, timestamp time.Time) EdgeAdded {
	return EdgeAdded{
		BaseEvent: BaseEvent{
			AggregateID: workspaceID,
			EventType:   "edge.added",
			Timestamp:   timestamp,
		},
		EdgeID:   edgeID,
		SourceID: sourceID,
		TargetID: targetID,
	}
}

// EdgeRemoved is raised when an edge is deleted
type EdgeRemoved struct {
	BaseEvent
	EdgeID   string              `json:"edge_id"`
	SourceID valueobjects.NodeID `json:"source_id"`
	TargetID valueobjects.NodeID `json:"target_id"`
}

// NewEdgeRemoved creates an EdgeRemoved event
func NewEdgeRemoved(workspaceID, edgeID string, sourceID, targetID valueobjects.NodeID, timestamp time.Time) EdgeRemoved {
	return EdgeRemoved{
		BaseEvent: BaseEvent{
			AggregateID: workspaceID,
			EventType:   "edge.removed",
			Timestamp:   timestamp,
		},
		EdgeID:   edgeID,
		SourceID: sourceID,
		TargetID: targetID,
	}
}

// EdgeUpdated is raised when an edge's attributes or endpoints change
type EdgeUpdated struct {
	BaseEvent
	EdgeID string `json:"edge_id"`
}

// NewEdgeUpdated creates an EdgeUpdated event
func NewEdgeUpdated(workspaceID, edgeID string, timestamp time.Time) EdgeUpdated {
	return EdgeUpdated{
		BaseEvent: BaseEvent{
			AggregateID: workspaceID,
			EventType:   "edge.updated",
			Timestamp:   timestamp,
		},
		EdgeID: edgeID,
	}
}

// WorkspaceLoaded is raised when a snapshot replaces the workspace state
type WorkspaceLoaded struct {
	BaseEvent
	NodeCount int `json:"node_count"`
	EdgeCount int `json:"edge_count"`
}

// NewWorkspaceLoaded creates a WorkspaceLoaded event
func NewWorkspaceLoaded(workspaceID string, nodeCount, edgeCount int, timestamp time.Time) WorkspaceLoaded {
	return WorkspaceLoaded{
		BaseEvent: BaseEvent{
			AggregateID: workspaceID,
			EventType:   "workspace.loaded",
			Timestamp:   timestamp,
		},
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
	}
}
