package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/nseweekly/engine/internal/cache"
	"github.com/nseweekly/engine/internal/domain/regime"
	"github.com/nseweekly/engine/internal/interfaces/http/handlers"
	"github.com/nseweekly/engine/internal/persistence"
)

// Server is the read-only HTTP surface over the weekly pipeline's
// persisted output: recommendation cards, setups, portfolio, and the
// regime call, plus health and Prometheus metrics.
type Server struct {
	router   *mux.Router
	server   *http.Server
	handlers *handlers.Handlers
	health   *HealthHandler
	metrics  *MetricsRegistry
	config   ServerConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	port := 8080
	if portStr := os.Getenv("HTTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	return ServerConfig{
		Host:         "127.0.0.1", // Local-only by default
		Port:         port,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Deps bundles the dependencies the server's handlers read from.
type Deps struct {
	Repo          *persistence.Repository
	RepoHealth    persistence.RepositoryHealth
	Cache         cache.Cache
	Metrics       *MetricsRegistry
	LatestRegime  func() *regime.Detection
	Version       string
	BuildStamp    string
}

// NewServer creates a new HTTP server instance
func NewServer(config ServerConfig, deps Deps) (*Server, error) {
	// Check if port is available
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("port %d is busy or unavailable: %w", config.Port, err)
	}
	listener.Close()

	if deps.Metrics == nil {
		deps.Metrics = NewMetricsRegistry()
	}
	if deps.LatestRegime == nil {
		deps.LatestRegime = func() *regime.Detection { return nil }
	}

	router := mux.NewRouter()

	server := &Server{
		router:   router,
		handlers: handlers.NewHandlers(deps.Repo),
		health:   NewHealthHandler(deps.RepoHealth, deps.Cache, deps.Repo, deps.Version, deps.BuildStamp),
		metrics:  deps.Metrics,
		config:   config,
	}

	server.setupRoutes(deps.LatestRegime)

	server.server = &http.Server{
		Addr:         addr,
		Handler:      server.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(latestRegime func() *regime.Detection) {
	s.router.Use(s.requestLoggingMiddleware)
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.timeoutMiddleware)
	s.router.Use(s.corsMiddleware)

	// Health and metrics bypass the JSON content-type middleware: health
	// sets its own headers, and /metrics serves the Prometheus text format.
	s.router.Handle("/health", s.health).Methods("GET")
	s.router.Handle("/metrics", s.metrics.MetricsHandler()).Methods("GET")
	s.router.HandleFunc("/metrics/regime", s.metrics.RegimeStatusHandler(latestRegime)).Methods("GET")

	api := s.router.PathPrefix("/").Subrouter()
	api.Use(s.jsonContentTypeMiddleware)

	api.HandleFunc("/recommendations", s.handlers.Recommendations).Methods("GET")
	api.HandleFunc("/recommendations/recent", s.handlers.RecentRecommendations).Methods("GET")
	api.HandleFunc("/explain/{symbol}", s.handlers.Explain).Methods("GET")
	api.HandleFunc("/setups", s.handlers.Setups).Methods("GET")
	api.HandleFunc("/portfolio", s.handlers.Portfolio).Methods("GET")
	api.HandleFunc("/regime", s.handlers.Regime).Methods("GET")

	s.router.NotFoundHandler = http.HandlerFunc(s.handlers.NotFound)
}

// requestIDMiddleware adds unique request ID to each request
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type requestIDKey struct{}

// requestLoggingMiddleware logs all requests with structured format
func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID, _ := r.Context().Value(requestIDKey{}).(string)

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}
		next.ServeHTTP(wrapper, r)

		log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("request handled")
	})
}

// timeoutMiddleware enforces request timeouts
func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// corsMiddleware adds CORS headers for local development
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1") {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// jsonContentTypeMiddleware sets JSON content type for API responses
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().
		Str("host", s.config.Host).
		Int("port", s.config.Port).
		Msg("starting HTTP server (local-only, read-only)")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// GetAddress returns the server address
func (s *Server) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// responseWrapper captures HTTP status codes for logging
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
