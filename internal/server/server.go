// Package server exposes the engine over HTTP: a health endpoint, a
// status endpoint, and the websocket protocol editor tooling speaks.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bates64/vscode-star-rod/internal/engine"
	"github.com/bates64/vscode-star-rod/internal/server/handler"
	"github.com/bates64/vscode-star-rod/pkg/core/log"
	"github.com/bates64/vscode-star-rod/pkg/core/version"
)

// Config holds server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "127.0.0.1",
		Port:         9262,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server wraps the HTTP server and its handlers.
type Server struct {
	httpServer *http.Server
	engine     *engine.Engine
	logger     *log.Logger
	config     Config
}

// New creates a server around an engine.
func New(cfg Config, eng *engine.Engine, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.GetDefault()
	}
	logger = logger.WithField("component", "server")

	wsHandler := handler.New(eng, logger)

	mux := http.NewServeMux()
	mux.Handle("/ws", wsHandler)
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/api/v1/status", func(w http.ResponseWriter, r *http.Request) {
		handleStatus(w, r, eng)
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      loggingMiddleware(logger, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		httpServer: httpServer,
		engine:     eng,
		logger:     logger,
		config:     cfg,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Engine,
	})
}

func handleStatus(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version": version.Engine,
		"stats":   eng.Stats(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		logger.Debug("HTTP request", log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapper.statusCode,
			"duration": time.Since(start).String(),
		})
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Start blocks serving until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.logger.Info("starting language service", log.Fields{
		"host": s.config.Host,
		"port": s.config.Port,
	})
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.ErrorWithErr("HTTP server error", err)
		}
	}()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping language service")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
