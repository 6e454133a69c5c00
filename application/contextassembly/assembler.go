package contextassembly

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"canvas-backend/domain/config"
	"canvas-backend/domain/core/aggregates"
	"canvas-backend/domain/core/entities"
	"canvas-backend/domain/core/valueobjects"
	pkgerrors "canvas-backend/pkg/errors"
)

// Settings bound the traversal and rendering of one assembly pass
type Settings struct {
	MaxDepth         int `json:"maxDepth"`
	ChunkTokenBudget int `json:"chunkTokenBudget"`
	ConversationTail int `json:"conversationTail"`
}

// DefaultSettings derives assembly settings from the domain configuration
func DefaultSettings(cfg *config.DomainConfig) Settings {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return Settings{
		MaxDepth:         cfg.MaxContextDepth,
		ChunkTokenBudget: cfg.ChunkTokenBudget,
		ConversationTail: cfg.ConversationTail,
	}
}

// BlockSeparator joins the per-node context blocks
const BlockSeparator = "\n\n---\n\n"

// Assembler turns a node's graph neighborhood into the prioritized
// text block handed to an AI request
type Assembler struct {
	tokenizer *Tokenizer
	logger    *zap.Logger
}

// NewAssembler creates a context assembler
func NewAssembler(logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{tokenizer: NewTokenizer(), logger: logger}
}

// entry is one reachable neighbor with its traversal attributes
type entry struct {
	node     *entities.Node
	depth    int
	strength int
	label    string
	order    int
}

// Assemble runs a prioritized breadth-first traversal from the given
// node's inbound and bidirectional edges and renders the result.
//
// An edge with active == false never participates. A node with
// includeInContext == false is skipped entirely, even if otherwise
// reachable. Cycles are broken per branch by the visited path, and
// globally by a visited set.
func (a *Assembler) Assemble(ws *aggregates.Workspace, nodeID valueobjects.NodeID, settings Settings) (string, error) {
	if _, ok := ws.Node(nodeID); !ok {
		return "", pkgerrors.NewNotFoundError("node")
	}
	if settings.MaxDepth <= 0 {
		settings.MaxDepth = 1
	}

	type queued struct {
		id       valueobjects.NodeID
		depth    int
		strength int
		label    string
		path     []valueobjects.NodeID
	}

	visited := map[valueobjects.NodeID]bool{nodeID: true}
	var queue []queued
	var results []entry

	enqueue := func(from valueobjects.NodeID, depth int, path []valueobjects.NodeID) {
		for _, e := range ws.Edges() {
			if !e.Data.Active {
				continue
			}
			neighbor, ok := qualifyingNeighbor(e, from)
			if !ok {
				continue
			}
			onPath := false
			for _, p := range path {
				if p.Equals(neighbor) {
					onPath = true
					break
				}
			}
			if onPath {
				continue
			}
			queue = append(queue, queued{
				id:       neighbor,
				depth:    depth,
				strength: e.Data.Strength.Priority(),
				label:    e.Data.Label,
				path:     append(append([]valueobjects.NodeID(nil), path...), neighbor),
			})
		}
	}

	enqueue(nodeID, 1, []valueobjects.NodeID{nodeID})

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if item.depth > settings.MaxDepth || visited[item.id] {
			continue
		}
		visited[item.id] = true

		node, ok := ws.Node(item.id)
		if !ok {
			continue
		}
		if !node.Data.IncludeInContext {
			continue
		}

		results = append(results, entry{
			node:     node,
			depth:    item.depth,
			strength: item.strength,
			label:    item.label,
			order:    len(results),
		})
		enqueue(item.id, item.depth+1, item.path)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].depth != results[j].depth {
			return results[i].depth < results[j].depth
		}
		if results[i].strength != results[j].strength {
			return results[i].strength > results[j].strength
		}
		ri, rj := results[i].node.Kind.ContextRank(), results[j].node.Kind.ContextRank()
		if ri != rj {
			return ri < rj
		}
		pi, pj := results[i].node.Data.ContextPriority.Rank(), results[j].node.Data.ContextPriority.Rank()
		if pi != pj {
			return pi > pj
		}
		return results[i].order < results[j].order
	})

	blocks := make([]string, 0, len(results))
	for _, r := range results {
		block := a.renderNode(r, settings)
		if block != "" {
			blocks = append(blocks, block)
		}
		if attachments := renderAttachments(r.node); attachments != "" {
			blocks = append(blocks, attachments)
		}
	}

	a.logger.Debug("assembled context",
		zap.String("node", nodeID.String()),
		zap.Int("neighbors", len(results)),
		zap.Int("maxDepth", settings.MaxDepth),
	)

	return strings.Join(blocks, BlockSeparator), nil
}

// qualifyingNeighbor returns the node reached by following the edge
// toward the given node: inbound edges (target == from), plus
// bidirectional edges where from is the source
func qualifyingNeighbor(e *entities.Edge, from valueobjects.NodeID) (valueobjects.NodeID, bool) {
	if e.Target.Equals(from) {
		return e.Source, true
	}
	if e.Data.Direction == valueobjects.DirectionBidirectional && e.Source.Equals(from) {
		return e.Target, true
	}
	return valueobjects.NodeID{}, false
}
