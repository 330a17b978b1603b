// Package server provides the HTTP API for kensa.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/kensa/internal/config"
	"github.com/hyperjump/kensa/internal/evaluator"
	"github.com/hyperjump/kensa/internal/storage"
	"go.uber.org/zap"
)

// requestTimeout bounds a request; evaluation waits on the scoring provider.
const requestTimeout = 120 * time.Second

// Server is the HTTP server for the kensa API.
type Server struct {
	evaluator *evaluator.Evaluator
	storage   storage.Storage
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies. store may be nil,
// in which case the report endpoints answer 501.
func NewServer(
	ev *evaluator.Evaluator,
	store storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		evaluator: ev,
		storage:   store,
		config:    cfg,
		logger:    logger,
	}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/check", s.handleCheck)
		r.Post("/evaluate", s.handleEvaluate)
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
		r.Delete("/reports/{id}", s.handleDeleteReport)
		r.Get("/corpus", s.handleCorpus)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr), zap.String("corpus", s.evaluator.CorpusDir()))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
