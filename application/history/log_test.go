package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-backend/domain/config"
	"canvas-backend/domain/core/aggregates"
	"canvas-backend/domain/core/valueobjects"
)

func newWorkspace() *aggregates.Workspace {
	return aggregates.NewWorkspace("ws-history", config.DefaultDomainConfig())
}

func TestUndoRedoRoundTrip(t *testing.T) {
	ws := newWorkspace()
	log := NewLog(100, nil)

	node := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(10, 20))
	log.Record(NewAddNode(node))

	require.True(t, log.Undo(ws))
	_, ok := ws.Node(node.ID)
	assert.False(t, ok)

	require.True(t, log.Redo(ws))
	restored, ok := ws.Node(node.ID)
	require.True(t, ok)
	assert.Equal(t, valueobjects.NewPosition(10, 20), restored.Position)
}

func TestUndoRedoBoundariesAreNoOps(t *testing.T) {
	ws := newWorkspace()
	log := NewLog(100, nil)

	assert.False(t, log.Undo(ws))
	assert.False(t, log.Redo(ws))

	node := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(0, 0))
	log.Record(NewAddNode(node))

	require.True(t, log.Undo(ws))
	assert.False(t, log.Undo(ws))
	require.True(t, log.Redo(ws))
	assert.False(t, log.Redo(ws))
}

func TestRecordTruncatesRedoBranch(t *testing.T) {
	ws := newWorkspace()
	log := NewLog(100, nil)

	first := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(0, 0))
	log.Record(NewAddNode(first))
	second := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(1, 1))
	log.Record(NewAddNode(second))

	require.True(t, log.Undo(ws))
	assert.True(t, log.CanRedo())

	third := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(2, 2))
	log.Record(NewAddNode(third))

	assert.False(t, log.CanRedo())
	assert.Equal(t, 2, log.Len())
}

func TestLogCapDropsOldestAndClampsCursor(t *testing.T) {
	ws := newWorkspace()
	log := NewLog(5, nil)

	for i := 0; i < 8; i++ {
		node := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(float64(i), 0))
		log.Record(NewAddNode(node))
	}

	assert.Equal(t, 5, log.Len())
	assert.Equal(t, 4, log.Cursor())

	// Only the five retained entries can be undone
	undone := 0
	for log.Undo(ws) {
		undone++
	}
	assert.Equal(t, 5, undone)
	assert.Equal(t, 3, ws.NodeCount())
}

func TestSetLimitShrinksAndClampsCursor(t *testing.T) {
	ws := newWorkspace()
	log := NewLog(10, nil)

	for i := 0; i < 6; i++ {
		node := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(float64(i), 0))
		log.Record(NewAddNode(node))
	}

	log.SetLimit(3)
	assert.Equal(t, 3, log.Len())
	assert.Equal(t, 2, log.Cursor())

	undone := 0
	for log.Undo(ws) {
		undone++
	}
	assert.Equal(t, 3, undone)
	assert.Equal(t, 3, ws.NodeCount())

	// Growing the cap never drops entries
	log.SetLimit(10)
	assert.Equal(t, 3, log.Len())
}

func TestBatchRevertsInReverseOrder(t *testing.T) {
	ws := newWorkspace()

	var order []string
	batch := &Batch{Actions: []Action{
		recording{"a", &order},
		recording{"b", &order},
		recording{"c", &order},
	}}

	batch.Apply(ws)
	assert.Equal(t, []string{"apply-a", "apply-b", "apply-c"}, order)

	order = order[:0]
	batch.Revert(ws)
	assert.Equal(t, []string{"revert-c", "revert-b", "revert-a"}, order)
}

// recording is a stub action that traces its calls
type recording struct {
	name  string
	trace *[]string
}

func (r recording) Kind() Kind { return KindBatch }
func (r recording) Apply(*aggregates.Workspace) {
	*r.trace = append(*r.trace, fmt.Sprintf("apply-%s", r.name))
}
func (r recording) Revert(*aggregates.Workspace) {
	*r.trace = append(*r.trace, fmt.Sprintf("revert-%s", r.name))
}

func TestNewBatchCollapses(t *testing.T) {
	assert.Nil(t, NewBatch())
	assert.Nil(t, NewBatch(nil, nil))

	single := &MoveNode{}
	assert.Equal(t, Action(single), NewBatch(single))

	combined := NewBatch(single, &MoveNode{})
	_, ok := combined.(*Batch)
	assert.True(t, ok)
}

func TestDragSessionCoalescesToSingleEntry(t *testing.T) {
	ws := newWorkspace()
	log := NewLog(100, nil)

	a := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(0, 0))
	b := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(5, 5))

	session := BeginDrag(ws, []valueobjects.NodeID{a.ID, b.ID})
	for i := 1; i <= 10; i++ {
		ws.MoveNode(a.ID, valueobjects.NewPosition(float64(i), 0))
		ws.MoveNode(b.ID, valueobjects.NewPosition(5, float64(5+i)))
	}
	action := session.Commit(ws)
	require.NotNil(t, action)
	log.Record(action)

	assert.Equal(t, 1, log.Len())

	require.True(t, log.Undo(ws))
	movedA, _ := ws.Node(a.ID)
	movedB, _ := ws.Node(b.ID)
	assert.Equal(t, valueobjects.NewPosition(0, 0), movedA.Position)
	assert.Equal(t, valueobjects.NewPosition(5, 5), movedB.Position)

	require.True(t, log.Redo(ws))
	movedA, _ = ws.Node(a.ID)
	assert.Equal(t, valueobjects.NewPosition(10, 0), movedA.Position)
}

func TestDragSessionWithoutMovementRecordsNothing(t *testing.T) {
	ws := newWorkspace()
	a := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(3, 3))

	session := BeginDrag(ws, []valueobjects.NodeID{a.ID})
	assert.Nil(t, session.Commit(ws))
}

func TestResizeSessionCoalesces(t *testing.T) {
	ws := newWorkspace()
	a := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(0, 0))
	originalSize := a.Size

	session := BeginResize(ws, []valueobjects.NodeID{a.ID})
	ws.ResizeNode(a.ID, valueobjects.NewPosition(-10, -10), valueobjects.NewDimensions(300, 200))
	action := session.Commit(ws)
	require.NotNil(t, action)

	action.Revert(ws)
	node, _ := ws.Node(a.ID)
	assert.Equal(t, originalSize, node.Size)
	assert.Equal(t, valueobjects.NewPosition(0, 0), node.Position)
}

func TestDeleteNodeUndoRestoresEdges(t *testing.T) {
	ws := newWorkspace()
	log := NewLog(100, nil)

	a := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(0, 0))
	b := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(1, 1))
	edge, err := ws.AddEdge(aggregates.Connection{Source: a.ID, Target: b.ID})
	require.NoError(t, err)

	nodes, edges, _ := ws.RemoveNodes([]valueobjects.NodeID{a.ID})
	require.Len(t, nodes, 1)
	log.Record(NewDeleteNode(nodes[0], edges))

	require.True(t, log.Undo(ws))
	_, ok := ws.Node(a.ID)
	assert.True(t, ok)
	restored, ok := ws.Edge(edge.ID)
	require.True(t, ok)
	assert.True(t, restored.Source.Equals(a.ID))
}
