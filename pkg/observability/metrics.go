package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the collectors the state engine reports. All methods
// are nil-safe so components can run without a registry in tests.
type Metrics struct {
	mutations        *prometheus.CounterVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	historyDepth     *prometheus.GaugeVec
	assemblySeconds  prometheus.Histogram
	trashedItems     *prometheus.GaugeVec
	activeWorkspaces prometheus.Gauge
}

// NewMetrics registers the engine's collectors on the given registerer
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "canvas",
			Name:      "mutations_total",
			Help:      "Graph mutations recorded in history, by action kind.",
		}, []string{"kind"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "canvas",
			Name:      "context_cache_hits_total",
			Help:      "Context requests served from the fingerprint cache.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "canvas",
			Name:      "context_cache_misses_total",
			Help:      "Context requests that required a traversal.",
		}),
		historyDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "canvas",
			Name:      "history_depth",
			Help:      "Number of entries in the undo log.",
		}, []string{"workspace"}),
		assemblySeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "canvas",
			Name:      "context_assembly_seconds",
			Help:      "Duration of context assembly traversals.",
			Buckets:   prometheus.DefBuckets,
		}),
		trashedItems: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "canvas",
			Name:      "trash_items",
			Help:      "Number of soft-deleted nodes held in the trash.",
		}, []string{"workspace"}),
		activeWorkspaces: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "canvas",
			Name:      "workspaces_active",
			Help:      "Workspaces currently loaded in the registry.",
		}),
	}
}

// RecordMutation counts one recorded history action
func (m *Metrics) RecordMutation(kind string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(kind).Inc()
}

// RecordCacheHit counts a context cache hit
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// RecordCacheMiss counts a context cache miss
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// SetHistoryDepth reports the undo log length for a workspace
func (m *Metrics) SetHistoryDepth(workspaceID string, depth int) {
	if m == nil {
		return
	}
	m.historyDepth.WithLabelValues(workspaceID).Set(float64(depth))
}

// ObserveAssembly reports one traversal duration in seconds
func (m *Metrics) ObserveAssembly(seconds float64) {
	if m == nil {
		return
	}
	m.assemblySeconds.Observe(seconds)
}

// SetTrashSize reports the trash occupancy for a workspace
func (m *Metrics) SetTrashSize(workspaceID string, size int) {
	if m == nil {
		return
	}
	m.trashedItems.WithLabelValues(workspaceID).Set(float64(size))
}

// SetActiveWorkspaces reports how many workspaces are loaded
func (m *Metrics) SetActiveWorkspaces(count int) {
	if m == nil {
		return
	}
	m.activeWorkspaces.Set(float64(count))
}
