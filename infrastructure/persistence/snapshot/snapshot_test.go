package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-backend/domain/config"
	"canvas-backend/domain/core/aggregates"
	"canvas-backend/domain/core/valueobjects"
	pkgerrors "canvas-backend/pkg/errors"
)

func testCfg() *config.DomainConfig {
	return config.DefaultDomainConfig()
}

func TestExportRestoreRoundTrip(t *testing.T) {
	ws := aggregates.NewWorkspace("ws-roundtrip", testCfg())
	note := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(10, 20))
	note.Data.Title = "A note"
	note.Data.Content = "body"
	note.Data.Tags = []string{"alpha"}
	task := ws.AddNode(valueobjects.KindTask, valueobjects.NewPosition(30, 40))
	task.Data.Title = "A task"

	edge, err := ws.AddEdge(aggregates.Connection{
		Source:       note.ID,
		Target:       task.ID,
		SourceHandle: "right-source",
		TargetHandle: "left-target",
	})
	require.NoError(t, err)
	data := edge.Data.Clone()
	data.Strength = valueobjects.StrengthStrong
	data.Direction = valueobjects.DirectionBidirectional
	data.Label = "feeds"
	data.Waypoints = []valueobjects.Position{valueobjects.NewPosition(15, 25)}
	ws.SetEdgeData(edge.ID, data)

	snap, err := Export(ws, SettingsDoc{MaxDepth: 4, ChunkTokenBudget: 256, ConversationTail: 3})
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, snap.Version)
	assert.Equal(t, "ws-roundtrip", snap.ID)
	assert.Equal(t, 4, snap.Settings.MaxDepth)

	restored, err := snap.Restore(testCfg())
	require.NoError(t, err)

	assert.Equal(t, 2, restored.NodeCount())
	assert.Equal(t, 1, restored.EdgeCount())

	gotNote, ok := restored.Node(note.ID)
	require.True(t, ok)
	assert.Equal(t, "A note", gotNote.Data.Title)
	assert.Equal(t, "body", gotNote.Data.Content)
	assert.Equal(t, []string{"alpha"}, gotNote.Data.Tags)
	assert.Equal(t, valueobjects.NewPosition(10, 20), gotNote.Position)

	gotEdge, ok := restored.Edge(edge.ID)
	require.True(t, ok)
	assert.Equal(t, valueobjects.StrengthStrong, gotEdge.Data.Strength)
	assert.Equal(t, valueobjects.DirectionBidirectional, gotEdge.Data.Direction)
	assert.True(t, gotEdge.Data.Active)
	assert.Equal(t, "feeds", gotEdge.Data.Label)
	require.Len(t, gotEdge.Data.Waypoints, 1)
	assert.Equal(t, valueobjects.NewPosition(15, 25), gotEdge.Data.Waypoints[0])
}

func TestRestoreMigratesLegacyEdgeWeights(t *testing.T) {
	a, b := uuid.NewString(), uuid.NewString()
	weight := func(w float64) *float64 { return &w }

	snap := &Snapshot{
		ID:      "ws-legacy",
		Version: 1,
		Nodes: []NodeDoc{
			{ID: a, Kind: "note"},
			{ID: b, Kind: "note"},
		},
		Edges: []EdgeDoc{
			{ID: "e-strong", Source: a, Target: b, Data: EdgeDataDoc{Weight: weight(2.0)}},
			{ID: "e-light", Source: b, Target: a, Data: EdgeDataDoc{Weight: weight(0.3)}},
			{ID: "e-normal", Source: a, Target: b, Data: EdgeDataDoc{Weight: weight(1.0), Direction: "bidirectional"}},
		},
	}

	ws, err := snap.Restore(testCfg())
	require.NoError(t, err)

	strong, ok := ws.Edge("e-strong")
	require.True(t, ok)
	assert.Equal(t, valueobjects.StrengthStrong, strong.Data.Strength)
	assert.Equal(t, valueobjects.DirectionDirected, strong.Data.Direction)
	assert.True(t, strong.Data.Active)

	light, ok := ws.Edge("e-light")
	require.True(t, ok)
	assert.Equal(t, valueobjects.StrengthLight, light.Data.Strength)

	normal, ok := ws.Edge("e-normal")
	require.True(t, ok)
	assert.Equal(t, valueobjects.StrengthNormal, normal.Data.Strength)
	assert.Equal(t, valueobjects.DirectionBidirectional, normal.Data.Direction)
}

func TestRestoreNormalizesSwappedHandles(t *testing.T) {
	a, b := uuid.NewString(), uuid.NewString()
	snap := &Snapshot{
		ID:      "ws-handles",
		Version: 1,
		Nodes:   []NodeDoc{{ID: a, Kind: "note"}, {ID: b, Kind: "note"}},
		Edges: []EdgeDoc{{
			ID: "e-1", Source: a, Target: b,
			SourceHandle: "right-target",
			TargetHandle: "left-source",
			Data:         EdgeDataDoc{Strength: "normal", Direction: "directed"},
		}},
	}

	ws, err := snap.Restore(testCfg())
	require.NoError(t, err)

	edge, ok := ws.Edge("e-1")
	require.True(t, ok)
	assert.Equal(t, "right-source", edge.SourceHandle)
	assert.Equal(t, "left-target", edge.TargetHandle)
}

func TestRestoreAppliesNodeDataDefaults(t *testing.T) {
	id := uuid.NewString()
	snap := &Snapshot{
		ID:      "ws-defaults",
		Version: 1,
		Nodes: []NodeDoc{{
			ID:   id,
			Kind: "note",
			Data: json.RawMessage(`{"title":"Legacy","customField":42,"pinned":true}`),
		}},
	}

	ws, err := snap.Restore(testCfg())
	require.NoError(t, err)

	nodeID, err := valueobjects.NewNodeIDFromString(id)
	require.NoError(t, err)
	node, ok := ws.Node(nodeID)
	require.True(t, ok)

	assert.True(t, node.Data.Enabled)
	assert.True(t, node.Data.IncludeInContext)
	assert.Equal(t, valueobjects.PriorityMedium, node.Data.ContextPriority)
	assert.Equal(t, valueobjects.ActivateAlways, node.Data.ActivationCondition)
	assert.Equal(t, float64(42), node.Data.Properties["customField"])
	assert.Equal(t, true, node.Data.Properties["pinned"])
}

func TestRestoreKeepsExplicitFlags(t *testing.T) {
	id := uuid.NewString()
	snap := &Snapshot{
		ID:      "ws-flags",
		Version: 2,
		Nodes: []NodeDoc{{
			ID:   id,
			Kind: "note",
			Data: json.RawMessage(`{"title":"Off","enabled":false,"includeInContext":false}`),
		}},
	}

	ws, err := snap.Restore(testCfg())
	require.NoError(t, err)

	nodeID, err := valueobjects.NewNodeIDFromString(id)
	require.NoError(t, err)
	node, ok := ws.Node(nodeID)
	require.True(t, ok)
	assert.False(t, node.Data.Enabled)
	assert.False(t, node.Data.IncludeInContext)
}

func TestRestorePrunesUnknownKindsAndDanglingEdges(t *testing.T) {
	a, b, gone := uuid.NewString(), uuid.NewString(), uuid.NewString()
	snap := &Snapshot{
		ID:      "ws-prune",
		Version: 2,
		Nodes: []NodeDoc{
			{ID: a, Kind: "note"},
			{ID: b, Kind: "note"},
			{ID: gone, Kind: "hologram"},
		},
		Edges: []EdgeDoc{
			{ID: "e-keep", Source: a, Target: b, Data: EdgeDataDoc{Strength: "normal", Direction: "directed"}},
			{ID: "e-drop", Source: a, Target: gone, Data: EdgeDataDoc{Strength: "normal", Direction: "directed"}},
		},
	}

	ws, err := snap.Restore(testCfg())
	require.NoError(t, err)

	assert.Equal(t, 2, ws.NodeCount())
	assert.Equal(t, 1, ws.EdgeCount())
	_, ok := ws.Edge("e-keep")
	assert.True(t, ok)
	_, ok = ws.Edge("e-drop")
	assert.False(t, ok)
}

func TestRestoreRejectsInvalidDocuments(t *testing.T) {
	missingID := &Snapshot{Version: 2}
	_, err := missingID.Restore(testCfg())
	assert.True(t, pkgerrors.IsValidation(err))

	badNodeID := &Snapshot{
		ID:      "ws-bad",
		Version: 2,
		Nodes:   []NodeDoc{{ID: "not-a-uuid", Kind: "note"}},
	}
	_, err = badNodeID.Restore(testCfg())
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)

	ws := aggregates.NewWorkspace("ws-store", testCfg())
	ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(1, 2))
	snap, err := Export(ws, SettingsDoc{MaxDepth: 3})
	require.NoError(t, err)

	require.NoError(t, store.Save(snap))

	loaded, err := store.Load("ws-store")
	require.NoError(t, err)
	assert.Equal(t, snap.ID, loaded.ID)
	assert.Len(t, loaded.Nodes, 1)
	assert.Equal(t, 3, loaded.Settings.MaxDepth)

	ids, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"ws-store"}, ids)

	require.NoError(t, store.Delete("ws-store"))
	_, err = store.Load("ws-store")
	assert.True(t, pkgerrors.IsNotFound(err))

	// Deleting twice stays quiet
	assert.NoError(t, store.Delete("ws-store"))
}

func TestFileStoreSanitizesIDs(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, nil)
	require.NoError(t, err)

	ws := aggregates.NewWorkspace("../escape/attempt", testCfg())
	snap, err := Export(ws, SettingsDoc{})
	require.NoError(t, err)

	require.NoError(t, store.Save(snap))

	ids, err := store.List()
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.NotContains(t, ids[0], "..")
	assert.NotContains(t, ids[0], "/")
}
