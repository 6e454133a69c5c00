package handlers

import (
	"github.com/google/uuid"

	"canvas-backend/domain/core/valueobjects"
	pkgerrors "canvas-backend/pkg/errors"
)

func parseNodeID(raw string) (valueobjects.NodeID, error) {
	if _, err := uuid.Parse(raw); err != nil {
		return valueobjects.NodeID{}, pkgerrors.NewValidationError("invalid node id format")
	}
	return valueobjects.NewNodeIDFromString(raw)
}

func parseNodeIDs(raw []string) ([]valueobjects.NodeID, error) {
	ids := make([]valueobjects.NodeID, 0, len(raw))
	for _, r := range raw {
		id, err := parseNodeID(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
