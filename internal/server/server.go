// Package server provides the HTTP API for Kotae.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/learning"
)

// Server is the HTTP server for the Kotae API. It exposes the analysis
// pipeline and the draft approval workflow for a single operator session.
type Server struct {
	workflow *learning.Workflow
	repo     corpus.Repository
	config   *config.ServerConfig
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	workflow *learning.Workflow,
	repo corpus.Repository,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		workflow: workflow,
		repo:     repo,
		config:   cfg,
		logger:   logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Post("/api/v1/analyze", s.handleAnalyze)
	r.Post("/api/v1/draft/approve", s.handleApprove)
	r.Post("/api/v1/draft/dismiss", s.handleDismiss)
	r.Get("/api/v1/learned", s.handleLearned)
	r.Get("/api/v1/events", s.handleEvents)
	r.Get("/api/v1/lineage", s.handleLineage)
	r.Get("/api/v1/tickets/{id}", s.handleGetTicket)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
