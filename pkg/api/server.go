package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ternhq/tern/pkg/adapters"
	"github.com/ternhq/tern/pkg/compatibility"
	"github.com/ternhq/tern/pkg/observability"
	"github.com/ternhq/tern/pkg/schema"
	"github.com/ternhq/tern/pkg/storage"
)

// modelCacheSize bounds the parsed-model cache. Stored histories are walked
// on every candidate check, so hot contracts stay parsed.
const modelCacheSize = 512

// Server represents our API server
type Server struct {
	store    storage.Store
	registry *schema.AdapterRegistry
	engine   *compatibility.Engine
	router   *mux.Router
	logger   *observability.Logger
	metrics  *observability.Metrics
	health   *observability.HealthChecker
	models   *lru.Cache[uint64, *schema.Model]
}

// NewServer creates a new API server
func NewServer(store storage.Store, logger *observability.Logger, promRegistry *prometheus.Registry, version string) *Server {
	models, _ := lru.New[uint64, *schema.Model](modelCacheSize)
	s := &Server{
		store:    store,
		registry: adapters.DefaultRegistry(nil),
		engine:   compatibility.NewEngine(),
		router:   mux.NewRouter(),
		logger:   logger,
		health:   observability.NewHealthChecker(version),
		models:   models,
	}
	if store != nil {
		s.health.AddDependency("storage", store)
	}
	if promRegistry != nil {
		s.metrics = observability.NewMetrics(promRegistry)
		s.router.Use(mux.MiddlewareFunc(observability.HTTPMetricsMiddleware(s.metrics)))
		s.router.Handle("/metrics", observability.MetricsHandler(promRegistry)).Methods("GET")
	}
	s.router.Use(s.requestContextMiddleware)

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	// Ad-hoc comparison of two raw contract bodies
	s.router.HandleFunc("/api/v1/compare", s.compare).Methods("POST")

	// Contract registry routes
	s.router.HandleFunc("/api/v1/contracts", s.listContracts).Methods("GET")
	s.router.HandleFunc("/api/v1/contracts/{name}/versions", s.pushVersion).Methods("POST")
	s.router.HandleFunc("/api/v1/contracts/{name}/versions", s.listVersions).Methods("GET")
	s.router.HandleFunc("/api/v1/contracts/{name}/versions/{version}", s.getVersion).Methods("GET")

	// Compatibility of stored versions and of candidates against history
	s.router.HandleFunc("/api/v1/contracts/{name}/compatibility", s.checkCompatibility).Methods("POST")
	s.router.HandleFunc("/api/v1/contracts/{name}/check", s.checkCandidate).Methods("POST")

	// Health probes
	s.router.HandleFunc("/healthz", s.health.Readiness).Methods("GET")
	s.router.HandleFunc("/health/live", s.health.Liveness).Methods("GET")
	s.router.HandleFunc("/health/ready", s.health.Readiness).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestContextMiddleware tags every request with an ID and logs completion.
func (s *Server) requestContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := observability.WithRequestID(r.Context(), requestID)
		ctx = observability.WithLogger(ctx, s.logger)
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))

		observability.FromContext(ctx).
			WithField("method", r.Method).
			WithField("path", r.URL.Path).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			Debug("request handled")
	})
}
