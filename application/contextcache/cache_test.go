package contextcache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-backend/application/contextassembly"
	"canvas-backend/domain/config"
	"canvas-backend/domain/core/aggregates"
	"canvas-backend/domain/core/valueobjects"
)

func newWorkspace() *aggregates.Workspace {
	return aggregates.NewWorkspace("ws-cache", config.DefaultDomainConfig())
}

func settings() contextassembly.Settings {
	return contextassembly.Settings{MaxDepth: 3, ChunkTokenBudget: 512, ConversationTail: 5}
}

func TestCacheHitRequiresMatchingFingerprint(t *testing.T) {
	ws := newWorkspace()
	node := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(0, 0))
	cache := NewCache(20)

	fp := cache.Fingerprint(ws, settings(), 0)
	_, ok := cache.Get(node.ID, fp)
	assert.False(t, ok)

	cache.Put(node.ID, fp, "assembled context")

	got, ok := cache.Get(node.ID, fp)
	require.True(t, ok)
	assert.Equal(t, "assembled context", got)

	_, ok = cache.Get(node.ID, fp+"x")
	assert.False(t, ok)
}

func TestFingerprintChangesOnTitleEdit(t *testing.T) {
	ws := newWorkspace()
	node := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(0, 0))
	node.Data.Title = "before"
	cache := NewCache(20)

	first := cache.Fingerprint(ws, settings(), 0)
	node.Data.Title = "after"
	second := cache.Fingerprint(ws, settings(), 0)

	assert.NotEqual(t, first, second)
}

func TestFingerprintIgnoresTitleBeyondPrefix(t *testing.T) {
	ws := newWorkspace()
	node := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(0, 0))
	cache := NewCache(8)

	node.Data.Title = "prefixed tail one"
	first := cache.Fingerprint(ws, settings(), 0)
	node.Data.Title = "prefixed tail two"
	second := cache.Fingerprint(ws, settings(), 0)

	assert.Equal(t, first, second)
}

func TestFingerprintChangesOnContentLength(t *testing.T) {
	ws := newWorkspace()
	node := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(0, 0))
	cache := NewCache(20)

	first := cache.Fingerprint(ws, settings(), 0)
	node.Data.Content = strings.Repeat("x", 40)
	second := cache.Fingerprint(ws, settings(), 0)

	assert.NotEqual(t, first, second)
}

func TestFingerprintChangesOnEdgeFlags(t *testing.T) {
	ws := newWorkspace()
	a := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(0, 0))
	b := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(1, 1))
	edge, err := ws.AddEdge(aggregates.Connection{Source: a.ID, Target: b.ID})
	require.NoError(t, err)
	cache := NewCache(20)

	first := cache.Fingerprint(ws, settings(), 0)

	data := edge.Data.Clone()
	data.Active = false
	ws.SetEdgeData(edge.ID, data)
	second := cache.Fingerprint(ws, settings(), 0)
	assert.NotEqual(t, first, second)

	data = edge.Data.Clone()
	data.Active = true
	data.Strength = valueobjects.StrengthStrong
	ws.SetEdgeData(edge.ID, data)
	third := cache.Fingerprint(ws, settings(), 0)
	assert.NotEqual(t, first, third)
	assert.NotEqual(t, second, third)
}

func TestFingerprintIncludesHistoryCursor(t *testing.T) {
	ws := newWorkspace()
	cache := NewCache(20)

	assert.NotEqual(t,
		cache.Fingerprint(ws, settings(), 0),
		cache.Fingerprint(ws, settings(), 1),
	)
}

func TestFingerprintIncludesDepthSetting(t *testing.T) {
	ws := newWorkspace()
	cache := NewCache(20)

	shallow := settings()
	shallow.MaxDepth = 1
	assert.NotEqual(t,
		cache.Fingerprint(ws, settings(), 0),
		cache.Fingerprint(ws, shallow, 0),
	)
}

func TestEntriesArePerNode(t *testing.T) {
	ws := newWorkspace()
	a := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(0, 0))
	b := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(1, 1))
	cache := NewCache(20)

	fp := cache.Fingerprint(ws, settings(), 0)
	cache.Put(a.ID, fp, "context for a")
	cache.Put(b.ID, fp, "context for b")

	gotA, okA := cache.Get(a.ID, fp)
	gotB, okB := cache.Get(b.ID, fp)
	require.True(t, okA)
	require.True(t, okB)
	assert.Equal(t, "context for a", gotA)
	assert.Equal(t, "context for b", gotB)
	assert.Equal(t, 2, cache.Len())
}

func TestClearDropsEverything(t *testing.T) {
	ws := newWorkspace()
	a := ws.AddNode(valueobjects.KindNote, valueobjects.NewPosition(0, 0))
	cache := NewCache(20)

	fp := cache.Fingerprint(ws, settings(), 0)
	cache.Put(a.ID, fp, "context")
	require.Equal(t, 1, cache.Len())

	cache.Clear()

	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Get(a.ID, fp)
	assert.False(t, ok)
}
