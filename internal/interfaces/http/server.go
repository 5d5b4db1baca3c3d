// Package http serves run results over a read-mostly JSON API, streams
// run-completion events over a websocket and exposes Prometheus metrics.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/techrun/internal/application"
	"github.com/sawpanic/techrun/internal/metrics"
	"github.com/sawpanic/techrun/internal/net/ratelimit"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	RequestsPerSec float64
	Burst          int
	Version        string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:           "127.0.0.1:8080",
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		RequestTimeout: 5 * time.Second,
		RequestsPerSec: 20,
		Burst:          40,
		Version:        "dev",
	}
}

// Server is the techrun HTTP API
type Server struct {
	router  *mux.Router
	server  *http.Server
	config  ServerConfig
	svc     *application.Service
	metrics *metrics.Registry
	hub     *Hub
	limiter *ratelimit.Limiter
	started time.Time
}

// NewServer builds the router. reg and hub may be nil.
func NewServer(config ServerConfig, svc *application.Service, reg *metrics.Registry, hub *Hub) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		config:  config,
		svc:     svc,
		metrics: reg,
		hub:     hub,
		limiter: ratelimit.NewLimiter(config.RequestsPerSec, config.Burst),
		started: time.Now(),
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         config.Addr,
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)
	s.router.Use(s.metricsMiddleware)
	s.router.Use(s.rateLimitMiddleware)

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}
	if s.hub != nil {
		s.router.HandleFunc("/ws/runs", s.hub.ServeWS).Methods("GET")
	}

	// runs can outlive the per-request query timeout
	s.router.Handle("/runs", jsonContentType(http.HandlerFunc(s.handleTriggerRun))).Methods("POST")

	api := s.router.PathPrefix("/").Subrouter()
	api.Use(jsonContentType)
	api.Use(s.timeoutMiddleware)

	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/summary", s.handleSummary).Methods("GET")
	api.HandleFunc("/runs", s.handleListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods("GET")
	api.HandleFunc("/runs/{id}/report", s.handleReport).Methods("GET")
	api.HandleFunc("/signals", s.handleSignals).Methods("GET")
	api.HandleFunc("/companies/{id}", s.handleCompany).Methods("GET")
	api.HandleFunc("/plays", s.handlePlays).Methods("GET")
	api.HandleFunc("/bottlenecks", s.handleBottlenecks).Methods("GET")
	api.HandleFunc("/catalysts", s.handleCatalysts).Methods("GET")

	s.router.NotFoundHandler = jsonContentType(http.HandlerFunc(s.handleNotFound))
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.config.Addr).Msg("Starting HTTP server")
		errCh <- s.server.ListenAndServe()
	}()

	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()

	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-sweep.C:
			if n := s.limiter.Sweep(); n > 0 {
				log.Debug().Int("clients", n).Msg("Dropped idle rate-limit buckets")
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return s.Shutdown(shutdownCtx)
		}
	}
}

// Shutdown gracefully shuts down the server and closes websocket clients
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")
	if s.hub != nil {
		s.hub.Close()
	}
	return s.server.Shutdown(ctx)
}
