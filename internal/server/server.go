package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/swisscoin/ledger/internal/config"
)

// Server owns the HTTP listener lifecycle.
type Server struct {
	http *http.Server
}

// New builds a server around the given handler, usually NewRouter's.
func New(cfg config.AppConfig, handler http.Handler) *Server {
	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start listens until the server is shut down or fails. A clean
// shutdown is not an error.
func (s *Server) Start() error {
	slog.Info("http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until the context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("http server draining")
	return s.http.Shutdown(ctx)
}
