package services

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"canvas-backend/domain/config"
	"canvas-backend/pkg/errors"
	"canvas-backend/pkg/observability"
)

// Registry holds the loaded workspaces. Each workspace is its own
// single-writer island; the registry only guards the map.
type Registry struct {
	mu       sync.RWMutex
	services map[string]*WorkspaceService

	cfg     *config.DomainConfig
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewRegistry creates an empty workspace registry
func NewRegistry(cfg *config.DomainConfig, logger *zap.Logger, metrics *observability.Metrics) *Registry {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	own := *cfg
	return &Registry{
		services: make(map[string]*WorkspaceService),
		cfg:      &own,
		logger:   logger,
		metrics:  metrics,
	}
}

// Get returns the workspace with the given id
func (r *Registry) Get(id string) (*WorkspaceService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[id]
	if !ok {
		return nil, errors.NewNotFoundError("workspace")
	}
	return svc, nil
}

// GetOrCreate returns the workspace with the given id, creating an
// empty one on first access
func (r *Registry) GetOrCreate(id string) *WorkspaceService {
	r.mu.Lock()
	defer r.mu.Unlock()

	if svc, ok := r.services[id]; ok {
		return svc
	}
	svc := NewWorkspaceService(id, r.cfg, r.logger.With(zap.String("workspace", id)), r.metrics)
	r.services[id] = svc
	r.metrics.SetActiveWorkspaces(len(r.services))
	r.logger.Info("workspace created", zap.String("workspace", id))
	return svc
}

// Put registers a service under its workspace id, replacing any
// previous instance
func (r *Registry) Put(svc *WorkspaceService) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.services[svc.ID()] = svc
	r.metrics.SetActiveWorkspaces(len(r.services))
}

// Remove unloads a workspace from the registry
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[id]; !ok {
		return false
	}
	delete(r.services, id)
	r.metrics.SetActiveWorkspaces(len(r.services))
	r.logger.Info("workspace unloaded", zap.String("workspace", id))
	return true
}

// ApplyLimits pushes reloaded engine limits to every loaded workspace
// and to workspaces created afterwards
func (r *Registry) ApplyLimits(next config.DomainConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	*r.cfg = next
	for _, svc := range r.services {
		svc.ApplyLimits(next)
	}
	r.logger.Info("engine limits applied",
		zap.Int("historyLimit", next.HistoryLimit),
		zap.Int("workspaces", len(r.services)),
	)
}

// IDs returns the loaded workspace ids in sorted order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.services))
	for id := range r.services {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of loaded workspaces
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.services)
}
