// Package server provides the HTTP API for proofd.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"proofd/internal/config"
	"proofd/internal/lexicon"
	"proofd/internal/pipeline"
)

// Server is the HTTP server for the analysis API.
type Server struct {
	analyzer *pipeline.Analyzer
	lex      *lexicon.Lexicon
	config   *config.ServerConfig
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	analyzer *pipeline.Analyzer,
	lex *lexicon.Lexicon,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		analyzer: analyzer,
		lex:      lex,
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

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Post("/api/v1/analyze", s.handleAnalyze)
	r.Get("/api/v1/dictionary", s.handleDictionarySearch)
	r.Post("/api/v1/custom-word", s.handleAddCustomWord)
	r.Delete("/api/v1/custom-word/{word}", s.handleRemoveCustomWord)
	r.Get("/health", s.handleHealth)
	return r
}
