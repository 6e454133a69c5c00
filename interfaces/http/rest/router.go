package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"canvas-backend/application/services"
	"canvas-backend/infrastructure/config"
	"canvas-backend/infrastructure/persistence/snapshot"
	"canvas-backend/interfaces/http/rest/handlers"
	"canvas-backend/interfaces/http/rest/middleware"
	"canvas-backend/pkg/auth"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg          *config.Config
	registry     *services.Registry
	store        *snapshot.FileStore
	promRegistry *prometheus.Registry
	logger       *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	registry *services.Registry,
	store *snapshot.FileStore,
	promRegistry *prometheus.Registry,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:          cfg,
		registry:     registry,
		store:        store,
		promRegistry: promRegistry,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health and metrics
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rt.promRegistry, promhttp.HandlerOpts{}))

	workspaceHandler := handlers.NewWorkspaceHandler(rt.registry, rt.store, rt.logger)
	nodeHandler := handlers.NewNodeHandler(rt.registry, rt.logger)
	edgeHandler := handlers.NewEdgeHandler(rt.registry, rt.logger)
	historyHandler := handlers.NewHistoryHandler(rt.registry, rt.logger)
	contextHandler := handlers.NewContextHandler(rt.registry, rt.logger)
	trashHandler := handlers.NewTrashHandler(rt.registry, rt.logger)
	suggestionHandler := handlers.NewSuggestionHandler(rt.registry, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		if rt.cfg.EnableAuth {
			validator := auth.NewValidator(rt.cfg.JWTSecret, rt.cfg.JWTIssuer)
			r.Use(middleware.Authenticate(validator, rt.logger))
		}

		r.Route("/workspaces", func(r chi.Router) {
			r.Get("/", workspaceHandler.ListWorkspaces)
			r.Post("/", workspaceHandler.CreateWorkspace)

			r.Route("/{workspaceID}", func(r chi.Router) {
				r.Get("/", workspaceHandler.GetWorkspace)
				r.Delete("/", workspaceHandler.DeleteWorkspace)
				r.Post("/save", workspaceHandler.SaveWorkspace)
				r.Post("/load", workspaceHandler.LoadWorkspace)
				r.Get("/snapshot", workspaceHandler.ExportSnapshot)
				r.Post("/snapshot", workspaceHandler.ImportSnapshot)
				r.Put("/settings", workspaceHandler.UpdateSettings)

				r.Route("/nodes", func(r chi.Router) {
					r.Post("/", nodeHandler.CreateNode)
					r.Post("/bulk-delete", nodeHandler.BulkDeleteNodes)
					r.Post("/bulk-update", nodeHandler.BulkUpdateNodes)
					r.Post("/reorder", nodeHandler.ReorderLayers)
					r.Post("/drag/start", nodeHandler.StartDrag)
					r.Post("/drag", nodeHandler.Drag)
					r.Post("/drag/commit", nodeHandler.CommitDrag)
					r.Post("/resize/start", nodeHandler.StartResize)
					r.Post("/resize", nodeHandler.Resize)
					r.Post("/resize/commit", nodeHandler.CommitResize)

					r.Route("/{nodeID}", func(r chi.Router) {
						r.Patch("/", nodeHandler.UpdateNode)
						r.Delete("/", nodeHandler.DeleteNode)
						r.Get("/context", contextHandler.GetContext)
						r.Post("/messages", nodeHandler.AddMessage)
						r.Delete("/messages/{messageID}", nodeHandler.DeleteMessage)
					})
				})

				r.Route("/edges", func(r chi.Router) {
					r.Post("/", edgeHandler.CreateEdge)
					r.Put("/{edgeID}", edgeHandler.UpdateEdge)
					r.Delete("/{edgeID}", edgeHandler.DeleteEdge)
					r.Post("/{edgeID}/reverse", edgeHandler.ReverseEdge)
					r.Post("/{edgeID}/reconnect", edgeHandler.ReconnectEdge)
				})

				r.Route("/history", func(r chi.Router) {
					r.Get("/", historyHandler.GetHistory)
					r.Post("/undo", historyHandler.Undo)
					r.Post("/redo", historyHandler.Redo)
				})

				r.Route("/trash", func(r chi.Router) {
					r.Get("/", trashHandler.ListTrash)
					r.Post("/", trashHandler.SoftDelete)
					r.Post("/{nodeID}/restore", trashHandler.Restore)
				})

				r.Post("/suggestions/accept", suggestionHandler.Accept)
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`)) //nolint:errcheck
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`)) //nolint:errcheck
}
