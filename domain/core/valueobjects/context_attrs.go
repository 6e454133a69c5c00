package valueobjects

// ContextPriority is a node's own weighting in context assembly,
// used as the final ordering tiebreak
type ContextPriority string

const (
	PriorityHigh   ContextPriority = "high"
	PriorityMedium ContextPriority = "medium"
	PriorityLow    ContextPriority = "low"
)

// Rank returns the numeric rank: high=3, medium=2, low=1
func (p ContextPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// InjectionFormat controls how an artifact's content is rendered
// into an assembled context block
type InjectionFormat string

const (
	InjectFull          InjectionFormat = "full"
	InjectSummary       InjectionFormat = "summary"
	InjectChunked       InjectionFormat = "chunked"
	InjectReferenceOnly InjectionFormat = "reference-only"
)

// ActivationCondition decides whether a node is enabled based on
// its connected neighbors, re-evaluated in the settle pass after
// each mutation commits
type ActivationCondition string

const (
	ActivateAlways       ActivationCondition = "always"
	ActivateAnyNeighbor  ActivationCondition = "any-active-neighbor"
	ActivateAllNeighbors ActivationCondition = "all-neighbors-active"
	ActivateNever        ActivationCondition = "never"
)
