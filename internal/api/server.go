// Package api provides the HTTP API server and handlers for the EleWand application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/elewand/elewand-server/internal/auth"
	"github.com/elewand/elewand-server/internal/metrics"
	"github.com/elewand/elewand-server/internal/ratelimit"
	"github.com/elewand/elewand-server/internal/store"
)

// Options tunes the HTTP surface.
type Options struct {
	CORSOrigins []string
	// AuthRequestsPerMinute limits register, login and Google sign-in per client IP. 0 disables the limit.
	AuthRequestsPerMinute int
	// CatalogRequestsPerMinute limits catalog search and recommendations per user. 0 disables the limit.
	CatalogRequestsPerMinute int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store          *store.Store
	services       *Services
	tokens         *auth.TokenService
	metrics        *metrics.Metrics
	catalogLimiter *ratelimit.KeyedRateLimiter
	opts           Options
	router         *chi.Mux
	api            huma.API
	logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, services *Services, tokens *auth.TokenService, m *metrics.Metrics, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		store:    st,
		services: services,
		tokens:   tokens,
		metrics:  m,
		opts:     opts,
		router:   chi.NewRouter(),
		logger:   logger,
	}
	if opts.CatalogRequestsPerMinute > 0 {
		s.catalogLimiter = ratelimit.New(float64(opts.CatalogRequestsPerMinute)/60, opts.CatalogRequestsPerMinute, 10*time.Minute)
	}

	// Middleware must be in place before huma registers its first route.
	s.setupMiddleware()

	s.api = humachi.New(s.router, humaConfig())
	RegisterErrorHandler(logger)

	s.setupRoutes()

	return s
}

func humaConfig() huma.Config {
	config := huma.DefaultConfig("EleWand API", "1.0.0")
	config.Info.Description = "Personal book tracking, shelves, ratings and recommendations."
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	config.Transformers = append(config.Transformers, EnvelopeTransformer)
	return config
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.catalogLimiter != nil {
		s.catalogLimiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.observe)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(authMiddleware(s.tokens))
	if s.opts.AuthRequestsPerMinute > 0 {
		s.router.Use(onlyPaths(s.authRateLimit(), http.MethodPost,
			"/api/auth/register",
			"/api/auth/login",
			"/api/auth/google",
		))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/ping", handlePing)
	s.router.Handle("/metrics", s.metrics.Handler())

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerBrowseRoutes()
	s.registerLibraryRoutes()
	s.registerShelfRoutes()
	s.registerRatingRoutes()
	s.registerProfileRoutes()
	s.registerActivityRoutes()
	s.registerAdminRoutes()
}

func handlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("pong"))
}
