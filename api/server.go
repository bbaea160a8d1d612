package api

import (
	"context"
	"net/http"
	"time"

	"github.com/lemarcheci/storefront-backend/pkg/config"
	"github.com/lemarcheci/storefront-backend/pkg/logger"
)

// Server wraps the storefront HTTP server with sane timeouts.
type Server struct {
	httpServer *http.Server
	logg       *logger.Logger
}

func NewServer(cfg config.AppConfig, handler http.Handler, logg *logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		logg: logg,
	}
}

// Start blocks serving requests until Shutdown or a listener failure.
func (s *Server) Start(ctx context.Context) error {
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "addr", s.httpServer.Addr), "server.start")
	}
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
