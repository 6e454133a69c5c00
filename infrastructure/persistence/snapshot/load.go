package snapshot

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"canvas-backend/domain/config"
	"canvas-backend/domain/core/aggregates"
	"canvas-backend/domain/core/entities"
	"canvas-backend/domain/core/valueobjects"
	pkgerrors "canvas-backend/pkg/errors"
)

var validate = validator.New()

// knownDataKeys are the payload fields the current schema understands.
// Anything else found in a node's data document is a legacy or
// client-specific field and is preserved in the Properties bag.
var knownDataKeys = map[string]bool{
	"title": true, "color": true, "parentId": true, "tags": true,
	"summary": true, "keyEntities": true, "contextRole": true,
	"contextPriority": true, "enabled": true, "activationCondition": true,
	"includeInContext": true, "properties": true, "attachments": true,
	"createdAt": true, "updatedAt": true, "provider": true,
	"messages": true, "content": true, "status": true,
	"taskPriority": true, "dueDate": true, "childIds": true,
	"versions": true, "injectionFormat": true,
}

// Restore validates the snapshot, migrates legacy documents to the
// current schema and rebuilds the workspace aggregate. Nodes with an
// unrecognized kind and edges with missing endpoints are pruned rather
// than failing the load.
func (s *Snapshot) Restore(cfg *config.DomainConfig) (*aggregates.Workspace, error) {
	if err := validate.Struct(s); err != nil {
		return nil, pkgerrors.NewValidationError("invalid snapshot").WithCause(err)
	}

	nodes := make([]*entities.Node, 0, len(s.Nodes))
	for _, doc := range s.Nodes {
		node, err := restoreNode(doc)
		if err != nil {
			return nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}

	edges := make([]*entities.Edge, 0, len(s.Edges))
	for _, doc := range s.Edges {
		edges = append(edges, restoreEdge(doc))
	}

	return aggregates.RestoreWorkspace(s.ID, nodes, edges, s.SavedAt, cfg), nil
}

func restoreNode(doc NodeDoc) (*entities.Node, error) {
	kind := valueobjects.NodeKind(doc.Kind)
	if !kind.IsValid() {
		return nil, nil
	}

	id, err := valueobjects.NewNodeIDFromString(doc.ID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid node id").WithCause(err)
	}

	data, err := restoreNodeData(doc.Data)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid node payload").WithCause(err)
	}

	node := &entities.Node{
		ID:       id,
		Kind:     kind,
		Position: doc.Position.toValue(),
		ZIndex:   doc.ZIndex,
		Data:     data,
	}
	if doc.Size != nil {
		node.Size = valueobjects.NewDimensions(doc.Size.Width, doc.Size.Height)
	}
	return node, nil
}

// restoreNodeData decodes a node payload, applying schema defaults for
// fields older documents lack and sweeping unrecognized fields into
// the Properties bag
func restoreNodeData(raw json.RawMessage) (entities.NodeData, error) {
	var data entities.NodeData
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return entities.NodeData{}, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return entities.NodeData{}, err
	}

	if _, present := fields["enabled"]; !present {
		data.Enabled = true
	}
	if _, present := fields["includeInContext"]; !present {
		data.IncludeInContext = true
	}
	if data.ContextPriority == "" {
		data.ContextPriority = valueobjects.PriorityMedium
	}
	if data.ActivationCondition == "" {
		data.ActivationCondition = valueobjects.ActivateAlways
	}

	for key, value := range fields {
		if knownDataKeys[key] {
			continue
		}
		var v interface{}
		if err := json.Unmarshal(value, &v); err != nil {
			continue
		}
		if data.Properties == nil {
			data.Properties = map[string]interface{}{}
		}
		data.Properties[key] = v
	}

	return data, nil
}

// restoreEdge migrates one edge document. Version 1 snapshots carried
// a numeric weight instead of the strength enum, omitted direction and
// active, and sometimes attached handles to the wrong end.
func restoreEdge(doc EdgeDoc) *entities.Edge {
	source, errSrc := valueobjects.NewNodeIDFromString(doc.Source)
	target, errTgt := valueobjects.NewNodeIDFromString(doc.Target)
	if errSrc != nil || errTgt != nil {
		return nil
	}

	data := entities.EdgeData{
		Strength:     valueobjects.Strength(doc.Data.Strength),
		Direction:    valueobjects.Direction(doc.Data.Direction),
		Active:       true,
		Color:        doc.Data.Color,
		Label:        doc.Data.Label,
		IntraProject: doc.Data.IntraProject,
	}
	if !data.Strength.IsValid() {
		if doc.Data.Weight != nil {
			data.Strength = valueobjects.StrengthFromWeight(*doc.Data.Weight)
		} else {
			data.Strength = valueobjects.StrengthNormal
		}
	}
	if !data.Direction.IsValid() {
		data.Direction = valueobjects.DirectionDirected
	}
	if doc.Data.Active != nil {
		data.Active = *doc.Data.Active
	}
	for _, wp := range doc.Data.Waypoints {
		data.Waypoints = append(data.Waypoints, wp.toValue())
	}

	edge := &entities.Edge{
		ID:           doc.ID,
		Source:       source,
		Target:       target,
		SourceHandle: doc.SourceHandle,
		TargetHandle: doc.TargetHandle,
		Data:         data,
	}
	edge.NormalizeHandles()
	return edge
}
