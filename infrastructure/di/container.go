package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"canvas-backend/application/services"
	"canvas-backend/infrastructure/config"
	"canvas-backend/infrastructure/persistence/snapshot"
	"canvas-backend/pkg/observability"
)

// Container wires the application's components together
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Registry *services.Registry
	Store    *snapshot.FileStore

	PrometheusRegistry *prometheus.Registry
}

// NewContainer builds the full dependency graph
func NewContainer(cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}

	promRegistry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(promRegistry)

	store, err := snapshot.NewFileStore(cfg.SnapshotDir, logger)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:             cfg,
		Logger:             logger,
		Metrics:            metrics,
		Registry:           services.NewRegistry(&cfg.Limits, logger, metrics),
		Store:              store,
		PrometheusRegistry: promRegistry,
	}, nil
}

// Close flushes and releases the container's resources
func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Sync() //nolint:errcheck
	}
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if level, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = level
	}

	return zapCfg.Build()
}
