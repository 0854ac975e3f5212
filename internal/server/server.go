package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/merxlabs/merx/internal/app"
)

// Server owns the HTTP listener for the API and websocket surface.
type Server struct {
	app  *app.App
	http *http.Server
}

// New builds the server from the wired application.
func New(application *app.App) *Server {
	s := &Server{app: application}

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", application.Config.Server.Host, application.Config.Server.Port),
		Handler:      wrap(s.routes(), application.Logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.app.Logger.Info().Str("address", s.http.Addr).Msg("HTTP server starting")

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server")

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}
