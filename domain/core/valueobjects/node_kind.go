package valueobjects

// NodeKind identifies the type of a canvas node and determines
// which fields of its data payload are meaningful
type NodeKind string

const (
	KindConversation NodeKind = "conversation"
	KindNote         NodeKind = "note"
	KindTask         NodeKind = "task"
	KindProject      NodeKind = "project"
	KindArtifact     NodeKind = "artifact"
	KindWorkspace    NodeKind = "workspace"
	KindText         NodeKind = "text"
	KindAction       NodeKind = "action"
	KindOrchestrator NodeKind = "orchestrator"
)

// IsValid reports whether the kind is a recognized node kind
func (k NodeKind) IsValid() bool {
	switch k {
	case KindConversation, KindNote, KindTask, KindProject, KindArtifact,
		KindWorkspace, KindText, KindAction, KindOrchestrator:
		return true
	default:
		return false
	}
}

// contextRanks orders kinds for context assembly: containers and
// orchestrators first, conversations last. Lower ranks sort earlier.
var contextRanks = map[NodeKind]int{
	KindWorkspace:    0,
	KindOrchestrator: 1,
	KindProject:      2,
	KindNote:         3,
	KindTask:         4,
	KindText:         5,
	KindAction:       6,
	KindArtifact:     7,
	KindConversation: 8,
}

// ContextRank returns the kind's position in the context ordering.
// Unknown kinds rank after every known one.
func (k NodeKind) ContextRank() int {
	if rank, ok := contextRanks[k]; ok {
		return rank
	}
	return len(contextRanks)
}
