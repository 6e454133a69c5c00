package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-backend/application/contextassembly"
	"canvas-backend/domain/config"
	"canvas-backend/domain/core/aggregates"
	"canvas-backend/domain/core/entities"
	"canvas-backend/domain/core/valueobjects"
	pkgerrors "canvas-backend/pkg/errors"
)

func newService(t *testing.T) *WorkspaceService {
	t.Helper()
	return NewWorkspaceService("ws-test", config.DefaultDomainConfig(), nil, nil)
}

func mustCreate(t *testing.T, s *WorkspaceService, kind valueobjects.NodeKind, x, y float64) *entities.Node {
	t.Helper()
	node, err := s.CreateNode(kind, valueobjects.NewPosition(x, y))
	require.NoError(t, err)
	return node
}

func strptr(v string) *string { return &v }

func TestCreateNodeUndoRedo(t *testing.T) {
	s := newService(t)
	node := mustCreate(t, s, valueobjects.KindNote, 10, 20)

	require.Len(t, s.Nodes(), 1)
	status := s.History()
	assert.True(t, status.CanUndo)
	assert.Equal(t, 1, status.Length)

	require.True(t, s.Undo())
	assert.Empty(t, s.Nodes())

	require.True(t, s.Redo())
	nodes := s.Nodes()
	require.Len(t, nodes, 1)
	assert.True(t, nodes[0].ID.Equals(node.ID))
	assert.Equal(t, valueobjects.NewPosition(10, 20), nodes[0].Position)
}

func TestCreateNodeRejectsUnknownKind(t *testing.T) {
	s := newService(t)

	_, err := s.CreateNode("hologram", valueobjects.NewPosition(0, 0))

	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, 0, s.History().Length)
}

func TestUpdateNodeMissingIsNoOp(t *testing.T) {
	s := newService(t)

	err := s.UpdateNode(valueobjects.NewNodeID(), entities.NodePatch{Title: strptr("ghost")})

	assert.NoError(t, err)
	assert.Equal(t, 0, s.History().Length)
}

func TestDeleteNodesBatchUndoRestoresEdges(t *testing.T) {
	s := newService(t)
	a := mustCreate(t, s, valueobjects.KindNote, 0, 0)
	b := mustCreate(t, s, valueobjects.KindNote, 1, 1)
	c := mustCreate(t, s, valueobjects.KindNote, 2, 2)

	ab, err := s.AddEdge(aggregates.Connection{Source: a.ID, Target: b.ID})
	require.NoError(t, err)
	bc, err := s.AddEdge(aggregates.Connection{Source: b.ID, Target: c.ID})
	require.NoError(t, err)

	lengthBefore := s.History().Length
	s.DeleteNodes([]valueobjects.NodeID{a.ID, b.ID})

	assert.Len(t, s.Nodes(), 1)
	assert.Empty(t, s.Edges())
	assert.Equal(t, lengthBefore+1, s.History().Length)

	require.True(t, s.Undo())
	assert.Len(t, s.Nodes(), 3)
	edges := s.Edges()
	require.Len(t, edges, 2)
	ids := []string{edges[0].ID, edges[1].ID}
	assert.Contains(t, ids, ab.ID)
	assert.Contains(t, ids, bc.ID)
}

func TestAddEdgeDuplicatePairReturnsNil(t *testing.T) {
	s := newService(t)
	a := mustCreate(t, s, valueobjects.KindNote, 0, 0)
	b := mustCreate(t, s, valueobjects.KindNote, 1, 1)

	first, err := s.AddEdge(aggregates.Connection{Source: a.ID, Target: b.ID})
	require.NoError(t, err)
	require.NotNil(t, first)

	lengthBefore := s.History().Length
	dup, err := s.AddEdge(aggregates.Connection{Source: a.ID, Target: b.ID})
	assert.NoError(t, err)
	assert.Nil(t, dup)
	assert.Equal(t, lengthBefore, s.History().Length)
}

func TestDragGestureRecordsOneEntry(t *testing.T) {
	s := newService(t)
	a := mustCreate(t, s, valueobjects.KindNote, 0, 0)
	lengthBefore := s.History().Length

	s.StartNodeDrag([]valueobjects.NodeID{a.ID})
	for i := 1; i <= 5; i++ {
		s.DragNodes(map[valueobjects.NodeID]valueobjects.Position{
			a.ID: valueobjects.NewPosition(float64(i*10), 0),
		})
	}
	s.CommitNodeDrag()

	assert.Equal(t, lengthBefore+1, s.History().Length)
	nodes := s.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, valueobjects.NewPosition(50, 0), nodes[0].Position)

	require.True(t, s.Undo())
	nodes = s.Nodes()
	assert.Equal(t, valueobjects.NewPosition(0, 0), nodes[0].Position)
}

func TestResizeGestureWithoutChangeRecordsNothing(t *testing.T) {
	s := newService(t)
	a := mustCreate(t, s, valueobjects.KindNote, 0, 0)
	lengthBefore := s.History().Length

	s.StartNodeResize([]valueobjects.NodeID{a.ID})
	s.CommitNodeResize()

	assert.Equal(t, lengthBefore, s.History().Length)
}

func TestSoftDeleteBypassesHistory(t *testing.T) {
	s := newService(t)
	a := mustCreate(t, s, valueobjects.KindNote, 0, 0)
	lengthBefore := s.History().Length

	items := s.SoftDeleteNodes([]valueobjects.NodeID{a.ID})
	require.Len(t, items, 1)
	assert.Empty(t, s.Nodes())
	assert.Equal(t, lengthBefore, s.History().Length)
	assert.Len(t, s.Trash(), 1)

	restored, err := s.RestoreFromTrash(a.ID)
	require.NoError(t, err)
	assert.True(t, restored.ID.Equals(a.ID))
	assert.Len(t, s.Nodes(), 1)
	assert.Empty(t, s.Trash())
	assert.Equal(t, lengthBefore, s.History().Length)
}

func TestGetContextReflectsMutationsAndUndo(t *testing.T) {
	s := newService(t)
	target := mustCreate(t, s, valueobjects.KindConversation, 0, 0)
	note := mustCreate(t, s, valueobjects.KindNote, 1, 1)
	require.NoError(t, s.UpdateNode(note.ID, entities.NodePatch{Title: strptr("First Title")}))
	_, err := s.AddEdge(aggregates.Connection{Source: note.ID, Target: target.ID})
	require.NoError(t, err)

	first, err := s.GetContextForNode(target.ID)
	require.NoError(t, err)
	assert.Contains(t, first, "First Title")

	// A repeated query with an unchanged graph serves the same value
	again, err := s.GetContextForNode(target.ID)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	require.NoError(t, s.UpdateNode(note.ID, entities.NodePatch{Title: strptr("Second Title")}))
	updated, err := s.GetContextForNode(target.ID)
	require.NoError(t, err)
	assert.Contains(t, updated, "Second Title")

	require.True(t, s.Undo())
	reverted, err := s.GetContextForNode(target.ID)
	require.NoError(t, err)
	assert.Contains(t, reverted, "First Title")
}

func TestAcceptSuggestionIsAtomic(t *testing.T) {
	s := newService(t)
	anchor := mustCreate(t, s, valueobjects.KindConversation, 0, 0)
	lengthBefore := s.History().Length

	node, err := s.AcceptSuggestion(Suggestion{
		AnchorID: anchor.ID,
		Kind:     valueobjects.KindNote,
		Title:    "Suggested",
		Position: valueobjects.NewPosition(5, 5),
	})
	require.NoError(t, err)
	assert.Equal(t, "Suggested", node.Data.Title)
	assert.Len(t, s.Nodes(), 2)
	require.Len(t, s.Edges(), 1)
	assert.True(t, s.Edges()[0].Source.Equals(node.ID))
	assert.True(t, s.Edges()[0].Target.Equals(anchor.ID))
	assert.Equal(t, lengthBefore+1, s.History().Length)
	assert.Contains(t, s.SpawnFlags(), node.ID)

	// One undo removes both the node and its edge
	require.True(t, s.Undo())
	assert.Len(t, s.Nodes(), 1)
	assert.Empty(t, s.Edges())
}

func TestAcceptSuggestionMissingAnchorAborts(t *testing.T) {
	s := newService(t)
	lengthBefore := s.History().Length

	_, err := s.AcceptSuggestion(Suggestion{
		AnchorID: valueobjects.NewNodeID(),
		Kind:     valueobjects.KindNote,
	})

	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Empty(t, s.Nodes())
	assert.Empty(t, s.Edges())
	assert.Equal(t, lengthBefore, s.History().Length)
}

func TestActivationSettlesAfterMutations(t *testing.T) {
	s := newService(t)
	source := mustCreate(t, s, valueobjects.KindNote, 0, 0)
	dependent := mustCreate(t, s, valueobjects.KindNote, 1, 1)

	condition := valueobjects.ActivateAnyNeighbor
	require.NoError(t, s.UpdateNode(dependent.ID, entities.NodePatch{ActivationCondition: &condition}))

	// No neighbors yet, so any-active-neighbor settles to disabled
	nodes := s.Nodes()
	for _, n := range nodes {
		if n.ID.Equals(dependent.ID) {
			assert.False(t, n.Data.Enabled)
		}
	}

	edge, err := s.AddEdge(aggregates.Connection{Source: source.ID, Target: dependent.ID})
	require.NoError(t, err)
	for _, n := range s.Nodes() {
		if n.ID.Equals(dependent.ID) {
			assert.True(t, n.Data.Enabled)
		}
	}

	data := edge.Data.Clone()
	data.Active = false
	require.NoError(t, s.UpdateEdge(edge.ID, data))
	for _, n := range s.Nodes() {
		if n.ID.Equals(dependent.ID) {
			assert.False(t, n.Data.Enabled)
		}
	}
}

func TestAllNeighborsConditionIsVacuouslyTrue(t *testing.T) {
	s := newService(t)
	lone := mustCreate(t, s, valueobjects.KindNote, 0, 0)

	condition := valueobjects.ActivateAllNeighbors
	require.NoError(t, s.UpdateNode(lone.ID, entities.NodePatch{ActivationCondition: &condition}))

	nodes := s.Nodes()
	require.Len(t, nodes, 1)
	assert.True(t, nodes[0].Data.Enabled)
}

func TestUpdateSettingsBackfillsZeroFields(t *testing.T) {
	s := newService(t)
	cfg := config.DefaultDomainConfig()

	s.UpdateSettings(contextassembly.Settings{MaxDepth: 7})

	got := s.Settings()
	assert.Equal(t, 7, got.MaxDepth)
	assert.Equal(t, cfg.ChunkTokenBudget, got.ChunkTokenBudget)
	assert.Equal(t, cfg.ConversationTail, got.ConversationTail)
}

func TestReplaceWorkspaceResetsHistoryAndSessions(t *testing.T) {
	s := newService(t)
	mustCreate(t, s, valueobjects.KindNote, 0, 0)
	require.True(t, s.History().CanUndo)

	next := aggregates.NewWorkspace("ws-test", config.DefaultDomainConfig())
	next.AddNode(valueobjects.KindTask, valueobjects.NewPosition(9, 9))
	s.ReplaceWorkspace(next, contextassembly.Settings{MaxDepth: 2, ChunkTokenBudget: 128, ConversationTail: 4})

	status := s.History()
	assert.False(t, status.CanUndo)
	assert.False(t, status.CanRedo)
	assert.Equal(t, 0, status.Length)

	nodes := s.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, valueobjects.KindTask, nodes[0].Kind)
	assert.Equal(t, 2, s.Settings().MaxDepth)
	assert.Empty(t, s.SpawnFlags())
}

func TestUndoRedoBoundaries(t *testing.T) {
	s := newService(t)

	assert.False(t, s.Undo())
	assert.False(t, s.Redo())

	mustCreate(t, s, valueobjects.KindNote, 0, 0)
	require.True(t, s.Undo())
	assert.False(t, s.Undo())
	require.True(t, s.Redo())
	assert.False(t, s.Redo())
}

func TestUpdateNodesRecordsOneEntryAndSkipsMissing(t *testing.T) {
	s := newService(t)
	a := mustCreate(t, s, valueobjects.KindNote, 0, 0)
	b := mustCreate(t, s, valueobjects.KindNote, 1, 1)
	lengthBefore := s.History().Length

	patches := map[valueobjects.NodeID]entities.NodePatch{
		a.ID: {Title: strptr("Bulk A")},
		b.ID: {Title: strptr("Bulk B")},
	}
	patches[valueobjects.NewNodeID()] = entities.NodePatch{Title: strptr("ghost")}
	err := s.UpdateNodes(patches)
	require.NoError(t, err)
	assert.Equal(t, lengthBefore+1, s.History().Length)

	titles := map[string]bool{}
	for _, n := range s.Nodes() {
		titles[n.Data.Title] = true
	}
	assert.True(t, titles["Bulk A"])
	assert.True(t, titles["Bulk B"])

	require.True(t, s.Undo())
	for _, n := range s.Nodes() {
		assert.Empty(t, n.Data.Title)
	}
}

func TestUpdateNodesRollsBackOnInvalidPatch(t *testing.T) {
	s := newService(t)
	a := mustCreate(t, s, valueobjects.KindNote, 0, 0)
	b := mustCreate(t, s, valueobjects.KindNote, 1, 1)
	lengthBefore := s.History().Length

	ghost := valueobjects.NewNodeID()
	err := s.UpdateNodes(map[valueobjects.NodeID]entities.NodePatch{
		a.ID: {Title: strptr("Renamed")},
		b.ID: {ParentID: &ghost},
	})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, lengthBefore, s.History().Length)
	for _, n := range s.Nodes() {
		assert.Empty(t, n.Data.Title)
		assert.True(t, n.Data.ParentID.IsZero())
	}
}

func TestDeleteProjectUndoReattachesChildren(t *testing.T) {
	s := newService(t)
	project := mustCreate(t, s, valueobjects.KindProject, 0, 0)
	childA := mustCreate(t, s, valueobjects.KindNote, 1, 1)
	childB := mustCreate(t, s, valueobjects.KindNote, 2, 2)
	require.NoError(t, s.UpdateNode(childA.ID, entities.NodePatch{ParentID: &project.ID}))
	require.NoError(t, s.UpdateNode(childB.ID, entities.NodePatch{ParentID: &project.ID}))

	edge, err := s.AddEdge(aggregates.Connection{Source: childA.ID, Target: childB.ID})
	require.NoError(t, err)
	require.True(t, edge.Data.IntraProject)

	lengthBefore := s.History().Length
	s.DeleteNodes([]valueobjects.NodeID{project.ID})
	assert.Equal(t, lengthBefore+1, s.History().Length)

	// Surviving children are detached, not left pointing at a ghost
	require.Len(t, s.Nodes(), 2)
	for _, n := range s.Nodes() {
		assert.True(t, n.Data.ParentID.IsZero())
	}
	edges := s.Edges()
	require.Len(t, edges, 1)
	assert.False(t, edges[0].Data.IntraProject)

	// One undo restores the project, the parent links and the flag
	require.True(t, s.Undo())
	require.Len(t, s.Nodes(), 3)
	for _, n := range s.Nodes() {
		switch {
		case n.ID.Equals(project.ID):
			assert.Len(t, n.Data.ChildIDs, 2)
		default:
			assert.True(t, n.Data.ParentID.Equals(project.ID))
		}
	}
	edges = s.Edges()
	require.Len(t, edges, 1)
	assert.True(t, edges[0].Data.IntraProject)
}

func TestReverseEdgeUndoRestoresEndpointsAndHandles(t *testing.T) {
	s := newService(t)
	a := mustCreate(t, s, valueobjects.KindNote, 0, 0)
	b := mustCreate(t, s, valueobjects.KindNote, 1, 1)

	edge, err := s.AddEdge(aggregates.Connection{
		Source:       a.ID,
		Target:       b.ID,
		SourceHandle: "right-source",
		TargetHandle: "left-target",
	})
	require.NoError(t, err)

	require.NoError(t, s.ReverseEdge(edge.ID))
	reversed := s.Edges()
	require.Len(t, reversed, 1)
	assert.True(t, reversed[0].Source.Equals(b.ID))
	assert.True(t, reversed[0].Target.Equals(a.ID))
	assert.Equal(t, "left-source", reversed[0].SourceHandle)
	assert.Equal(t, "right-target", reversed[0].TargetHandle)

	require.True(t, s.Undo())
	restored := s.Edges()
	require.Len(t, restored, 1)
	assert.Equal(t, edge.ID, restored[0].ID)
	assert.True(t, restored[0].Source.Equals(a.ID))
	assert.True(t, restored[0].Target.Equals(b.ID))
	assert.Equal(t, "right-source", restored[0].SourceHandle)
	assert.Equal(t, "left-target", restored[0].TargetHandle)
}

func TestApplyLimitsTakesEffectOnLiveService(t *testing.T) {
	s := newService(t)
	for i := 0; i < 6; i++ {
		mustCreate(t, s, valueobjects.KindNote, float64(i), 0)
	}
	require.Equal(t, 6, s.History().Length)

	next := *config.DefaultDomainConfig()
	next.HistoryLimit = 3
	s.ApplyLimits(next)

	status := s.History()
	assert.Equal(t, 3, status.Length)
	assert.Equal(t, 2, status.Cursor)

	undone := 0
	for s.Undo() {
		undone++
	}
	assert.Equal(t, 3, undone)
	assert.Len(t, s.Nodes(), 3)
}

func TestRegistryApplyLimitsReachesAllWorkspaces(t *testing.T) {
	reg := NewRegistry(config.DefaultDomainConfig(), nil, nil)

	existing := reg.GetOrCreate("ws-a")
	for i := 0; i < 5; i++ {
		_, err := existing.CreateNode(valueobjects.KindNote, valueobjects.NewPosition(float64(i), 0))
		require.NoError(t, err)
	}

	next := *config.DefaultDomainConfig()
	next.HistoryLimit = 2
	reg.ApplyLimits(next)

	assert.Equal(t, 2, existing.History().Length)

	// Workspaces created after the reload inherit the new limits
	created := reg.GetOrCreate("ws-b")
	for i := 0; i < 5; i++ {
		_, err := created.CreateNode(valueobjects.KindNote, valueobjects.NewPosition(float64(i), 0))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, created.History().Length)
}

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry(config.DefaultDomainConfig(), nil, nil)

	_, err := reg.Get("ws-a")
	assert.True(t, pkgerrors.IsNotFound(err))

	a := reg.GetOrCreate("ws-a")
	assert.Same(t, a, reg.GetOrCreate("ws-a"))

	reg.GetOrCreate("ws-b")
	assert.Equal(t, []string{"ws-a", "ws-b"}, reg.IDs())
	assert.Equal(t, 2, reg.Len())

	assert.True(t, reg.Remove("ws-a"))
	assert.False(t, reg.Remove("ws-a"))
	assert.Equal(t, 1, reg.Len())
}
