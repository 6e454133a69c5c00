package contextassembly

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-backend/domain/config"
	"canvas-backend/domain/core/aggregates"
	"canvas-backend/domain/core/entities"
	"canvas-backend/domain/core/valueobjects"
	pkgerrors "canvas-backend/pkg/errors"
)

func newGraph() *aggregates.Workspace {
	return aggregates.NewWorkspace("ws-context", config.DefaultDomainConfig())
}

func addKind(ws *aggregates.Workspace, kind valueobjects.NodeKind, title string) *entities.Node {
	node := ws.AddNode(kind, valueobjects.NewPosition(0, 0))
	node.Data.Title = title
	return node
}

func link(t *testing.T, ws *aggregates.Workspace, source, target valueobjects.NodeID) *entities.Edge {
	t.Helper()
	edge, err := ws.AddEdge(aggregates.Connection{Source: source, Target: target})
	require.NoError(t, err)
	require.NotNil(t, edge)
	return edge
}

func testSettings() Settings {
	return Settings{MaxDepth: 3, ChunkTokenBudget: 512, ConversationTail: 5}
}

func TestAssembleMissingNode(t *testing.T) {
	ws := newGraph()
	assembler := NewAssembler(nil)

	_, err := assembler.Assemble(ws, valueobjects.NewNodeID(), testSettings())

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestAssembleFollowsInboundAndBidirectional(t *testing.T) {
	ws := newGraph()
	target := addKind(ws, valueobjects.KindConversation, "Chat")
	inbound := addKind(ws, valueobjects.KindNote, "Inbound Note")
	outbound := addKind(ws, valueobjects.KindNote, "Outbound Note")
	sibling := addKind(ws, valueobjects.KindNote, "Sibling Note")

	link(t, ws, inbound.ID, target.ID)
	link(t, ws, target.ID, outbound.ID)
	both := link(t, ws, target.ID, sibling.ID)
	data := both.Data.Clone()
	data.Direction = valueobjects.DirectionBidirectional
	ws.SetEdgeData(both.ID, data)

	result, err := NewAssembler(nil).Assemble(ws, target.ID, testSettings())
	require.NoError(t, err)

	assert.Contains(t, result, "Inbound Note")
	assert.Contains(t, result, "Sibling Note")
	assert.NotContains(t, result, "Outbound Note")
}

func TestAssembleSkipsInactiveEdges(t *testing.T) {
	ws := newGraph()
	target := addKind(ws, valueobjects.KindConversation, "Chat")
	muted := addKind(ws, valueobjects.KindNote, "Muted Note")

	edge := link(t, ws, muted.ID, target.ID)
	data := edge.Data.Clone()
	data.Active = false
	ws.SetEdgeData(edge.ID, data)

	result, err := NewAssembler(nil).Assemble(ws, target.ID, testSettings())
	require.NoError(t, err)

	assert.Empty(t, result)
}

func TestAssembleExcludedNodeBlocksItsBranch(t *testing.T) {
	ws := newGraph()
	target := addKind(ws, valueobjects.KindConversation, "Chat")
	excluded := addKind(ws, valueobjects.KindNote, "Excluded Note")
	upstream := addKind(ws, valueobjects.KindNote, "Upstream Note")
	excluded.Data.IncludeInContext = false

	link(t, ws, excluded.ID, target.ID)
	link(t, ws, upstream.ID, excluded.ID)

	result, err := NewAssembler(nil).Assemble(ws, target.ID, testSettings())
	require.NoError(t, err)

	assert.NotContains(t, result, "Excluded Note")
	assert.NotContains(t, result, "Upstream Note")
}

func TestAssembleHonorsDepthBound(t *testing.T) {
	ws := newGraph()
	target := addKind(ws, valueobjects.KindConversation, "Chat")
	near := addKind(ws, valueobjects.KindNote, "Near Note")
	mid := addKind(ws, valueobjects.KindNote, "Mid Note")
	far := addKind(ws, valueobjects.KindNote, "Far Note")

	link(t, ws, near.ID, target.ID)
	link(t, ws, mid.ID, near.ID)
	link(t, ws, far.ID, mid.ID)

	settings := testSettings()
	settings.MaxDepth = 2
	result, err := NewAssembler(nil).Assemble(ws, target.ID, settings)
	require.NoError(t, err)

	assert.Contains(t, result, "Near Note")
	assert.Contains(t, result, "Mid Note")
	assert.NotContains(t, result, "Far Note")
}

func TestAssembleTerminatesOnCycles(t *testing.T) {
	ws := newGraph()
	target := addKind(ws, valueobjects.KindConversation, "Chat")
	a := addKind(ws, valueobjects.KindNote, "Cycle A")
	b := addKind(ws, valueobjects.KindNote, "Cycle B")

	link(t, ws, a.ID, target.ID)
	link(t, ws, b.ID, a.ID)
	link(t, ws, a.ID, b.ID)

	result, err := NewAssembler(nil).Assemble(ws, target.ID, testSettings())
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(result, "Cycle A"))
	assert.Equal(t, 1, strings.Count(result, "Cycle B"))
}

func TestAssembleOrdering(t *testing.T) {
	ws := newGraph()
	target := addKind(ws, valueobjects.KindConversation, "Chat")

	lightNote := addKind(ws, valueobjects.KindNote, "Light Note")
	strongTask := addKind(ws, valueobjects.KindTask, "Strong Task")
	normalNote := addKind(ws, valueobjects.KindNote, "Normal Note")
	normalTask := addKind(ws, valueobjects.KindTask, "Normal Task")
	deepNote := addKind(ws, valueobjects.KindNote, "Deep Note")

	setStrength := func(e *entities.Edge, s valueobjects.Strength) {
		data := e.Data.Clone()
		data.Strength = s
		ws.SetEdgeData(e.ID, data)
	}

	setStrength(link(t, ws, lightNote.ID, target.ID), valueobjects.StrengthLight)
	setStrength(link(t, ws, strongTask.ID, target.ID), valueobjects.StrengthStrong)
	setStrength(link(t, ws, normalNote.ID, target.ID), valueobjects.StrengthNormal)
	setStrength(link(t, ws, normalTask.ID, target.ID), valueobjects.StrengthNormal)
	link(t, ws, deepNote.ID, strongTask.ID)

	result, err := NewAssembler(nil).Assemble(ws, target.ID, testSettings())
	require.NoError(t, err)

	// Depth first, then strength, then kind rank; depth 2 always last
	positions := map[string]int{}
	for _, title := range []string{"Strong Task", "Normal Note", "Normal Task", "Light Note", "Deep Note"} {
		idx := strings.Index(result, title)
		require.GreaterOrEqual(t, idx, 0, title)
		positions[title] = idx
	}
	assert.Less(t, positions["Strong Task"], positions["Normal Note"])
	assert.Less(t, positions["Normal Note"], positions["Normal Task"])
	assert.Less(t, positions["Normal Task"], positions["Light Note"])
	assert.Less(t, positions["Light Note"], positions["Deep Note"])
}

func TestAssembleContextPriorityTiebreak(t *testing.T) {
	ws := newGraph()
	target := addKind(ws, valueobjects.KindConversation, "Chat")
	low := addKind(ws, valueobjects.KindNote, "Low Priority Note")
	high := addKind(ws, valueobjects.KindNote, "High Priority Note")
	low.Data.ContextPriority = valueobjects.PriorityLow
	high.Data.ContextPriority = valueobjects.PriorityHigh

	link(t, ws, low.ID, target.ID)
	link(t, ws, high.ID, target.ID)

	result, err := NewAssembler(nil).Assemble(ws, target.ID, testSettings())
	require.NoError(t, err)

	assert.Less(t, strings.Index(result, "High Priority Note"), strings.Index(result, "Low Priority Note"))
}

func TestRenderConversationTail(t *testing.T) {
	ws := newGraph()
	target := addKind(ws, valueobjects.KindNote, "Anchor")
	conv := addKind(ws, valueobjects.KindConversation, "Long Chat")
	for _, content := range []string{"one", "two", "three", "four", "five", "six", "seven"} {
		conv.Data.Messages = append(conv.Data.Messages, entities.Message{
			ID: valueobjects.NewMessageID(), Role: "user", Content: content,
		})
	}
	link(t, ws, conv.ID, target.ID)

	result, err := NewAssembler(nil).Assemble(ws, target.ID, testSettings())
	require.NoError(t, err)

	assert.NotContains(t, result, "user: one")
	assert.NotContains(t, result, "user: two")
	assert.Contains(t, result, "user: three")
	assert.Contains(t, result, "user: seven")
}

func TestRenderArtifactFormats(t *testing.T) {
	ws := newGraph()
	target := addKind(ws, valueobjects.KindNote, "Anchor")

	summary := addKind(ws, valueobjects.KindArtifact, "Summarized")
	summary.Data.InjectionFormat = valueobjects.InjectSummary
	summary.Data.Summary = "short summary"
	summary.Data.Content = "full body text"

	reference := addKind(ws, valueobjects.KindArtifact, "Referenced")
	reference.Data.InjectionFormat = valueobjects.InjectReferenceOnly
	reference.Data.Content = "hidden body"
	reference.Data.Versions = []entities.ArtifactVersion{{Version: 1, Content: "v1"}, {Version: 2, Content: "v2"}}

	chunked := addKind(ws, valueobjects.KindArtifact, "Chunked")
	chunked.Data.InjectionFormat = valueobjects.InjectChunked
	chunked.Data.Content = strings.Repeat("lorem ipsum ", 2000)

	link(t, ws, summary.ID, target.ID)
	link(t, ws, reference.ID, target.ID)
	link(t, ws, chunked.ID, target.ID)

	settings := testSettings()
	settings.ChunkTokenBudget = 16
	result, err := NewAssembler(nil).Assemble(ws, target.ID, settings)
	require.NoError(t, err)

	assert.Contains(t, result, "short summary")
	assert.NotContains(t, result, "full body text")
	assert.Contains(t, result, `See artifact "Referenced" (v2)`)
	assert.NotContains(t, result, "hidden body")
	assert.Contains(t, result, "[truncated: token budget reached]")
}

func TestRenderMetadataAndAttachments(t *testing.T) {
	ws := newGraph()
	target := addKind(ws, valueobjects.KindNote, "Anchor")
	note := addKind(ws, valueobjects.KindNote, "Tagged Note")
	note.Data.Tags = []string{"alpha", "beta"}
	note.Data.KeyEntities = []string{"ACME Corp"}
	note.Data.ContextRole = "Research"
	note.Data.Attachments = []entities.Attachment{{Name: "report.pdf", MimeType: "application/pdf", Size: 2048}}

	edge := link(t, ws, note.ID, target.ID)
	data := edge.Data.Clone()
	data.Label = "supports"
	ws.SetEdgeData(edge.ID, data)

	result, err := NewAssembler(nil).Assemble(ws, target.ID, testSettings())
	require.NoError(t, err)

	assert.Contains(t, result, "[Research: Tagged Note]")
	assert.Contains(t, result, "Tags: alpha, beta")
	assert.Contains(t, result, "Key entities: ACME Corp")
	assert.Contains(t, result, "Relationship: supports")
	assert.Contains(t, result, "[Attachments: Tagged Note]")
	assert.Contains(t, result, "- report.pdf (application/pdf, 2048 bytes)")
}
