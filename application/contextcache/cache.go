package contextcache

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"canvas-backend/application/contextassembly"
	"canvas-backend/domain/core/aggregates"
	"canvas-backend/domain/core/valueobjects"
)

// Cache memoizes assembled context strings behind a composite
// fingerprint of graph shape and settings. It holds one entry per
// queried node id, so different nodes' contexts don't evict each
// other. The cache is a pure memo: a wrong or missing answer is
// recomputed on the next fingerprint miss, and the whole thing is
// discardable at any time.
type Cache struct {
	mu      sync.RWMutex
	entries map[valueobjects.NodeID]cacheEntry

	titleLen int
}

type cacheEntry struct {
	fingerprint string
	value       string
}

// NewCache creates an empty context cache. titleLen is how many
// leading title characters participate in each node's fingerprint.
func NewCache(titleLen int) *Cache {
	if titleLen <= 0 {
		titleLen = 20
	}
	return &Cache{
		entries:  make(map[valueobjects.NodeID]cacheEntry),
		titleLen: titleLen,
	}
}

// Get returns the cached context for the node if its fingerprint
// still matches
func (c *Cache) Get(nodeID valueobjects.NodeID, fingerprint string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[nodeID]
	if !ok || entry.fingerprint != fingerprint {
		return "", false
	}
	return entry.value, true
}

// Put stores a freshly computed context under the node's fingerprint
func (c *Cache) Put(nodeID valueobjects.NodeID, fingerprint, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[nodeID] = cacheEntry{fingerprint: fingerprint, value: value}
}

// Clear drops every entry. Called on workspace load: a new graph
// renders all prior keys meaningless.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[valueobjects.NodeID]cacheEntry)
}

// Len returns the number of cached contexts
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Fingerprint builds the composite cache key for the workspace's
// current shape. Two graphs differing in any node's title prefix or
// content length, or any edge's structural flags, produce different
// keys. The history cursor keeps contexts computed before an undo
// from being served after it.
func (c *Cache) Fingerprint(ws *aggregates.Workspace, settings contextassembly.Settings, historyCursor int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d:%d:%d:%s:%d:%t:%d",
		ws.NodeCount(),
		ws.EdgeCount(),
		ws.LastSavedAt().UnixMilli(),
		ws.ID(),
		historyCursor,
		ws.Dirty(),
		settings.MaxDepth,
	)

	b.WriteByte('|')
	for i, n := range ws.Nodes() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(n.ID.String())
		b.WriteByte(':')
		b.WriteString(titlePrefix(n.Data.Title, c.titleLen))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(n.Data.ContentLength()))
	}

	b.WriteByte('|')
	for i, e := range ws.Edges() {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s>%s:%t:%s:%s",
			e.Source.String(),
			e.Target.String(),
			e.Data.Active,
			e.Data.Direction,
			e.Data.Strength,
		)
	}

	return b.String()
}

func titlePrefix(title string, limit int) string {
	runes := []rune(title)
	if len(runes) <= limit {
		return title
	}
	return string(runes[:limit])
}
