package services

import (
	"canvas-backend/domain/core/aggregates"
	"canvas-backend/domain/core/valueobjects"
)

// evaluateActivation recomputes every node's enabled flag from its
// activation condition. Neighbors are the nodes reachable over active
// edges in either direction. All conditions are evaluated against a
// snapshot of the flags taken before the pass, so evaluation order
// cannot influence the outcome, and the pass runs exactly once per
// settled mutation.
func evaluateActivation(ws *aggregates.Workspace) {
	nodes := ws.Nodes()

	snapshot := make(map[valueobjects.NodeID]bool, len(nodes))
	for _, n := range nodes {
		snapshot[n.ID] = n.Data.Enabled
	}

	neighbors := make(map[valueobjects.NodeID][]valueobjects.NodeID)
	for _, e := range ws.Edges() {
		if !e.Data.Active {
			continue
		}
		neighbors[e.Source] = append(neighbors[e.Source], e.Target)
		neighbors[e.Target] = append(neighbors[e.Target], e.Source)
	}

	for _, n := range nodes {
		var enabled bool
		switch n.Data.ActivationCondition {
		case valueobjects.ActivateNever:
			enabled = false
		case valueobjects.ActivateAnyNeighbor:
			for _, id := range neighbors[n.ID] {
				if snapshot[id] {
					enabled = true
					break
				}
			}
		case valueobjects.ActivateAllNeighbors:
			enabled = true
			for _, id := range neighbors[n.ID] {
				if !snapshot[id] {
					enabled = false
					break
				}
			}
		default: // always
			enabled = true
		}
		ws.SetEnabled(n.ID, enabled)
	}
}
