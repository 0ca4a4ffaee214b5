// Package server is the HTTP transport around the outline extractor: it
// accepts an uploaded Python file, runs extraction, and returns the outline
// as a JSON tree, serving the embedded renderer alongside.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"pyscope/internal/config"
)

// Server serves the upload endpoint and the embedded renderer.
type Server struct {
	cfg    config.ServerConfig
	logger *slog.Logger
}

// New creates a server for the given configuration. A nil logger falls back
// to slog.Default.
func New(cfg config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, logger: logger}
}

// Handler returns the full route tree with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/outline", s.handleOutline)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /", s.staticHandler())
	return s.withRequestLog(mux)
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.cfg.Addr,
		Handler:     s.Handler(),
		ReadTimeout: s.cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
