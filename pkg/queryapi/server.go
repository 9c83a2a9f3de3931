package queryapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rocketmq-go/namesrv/internal/bytesize"
	"github.com/rocketmq-go/namesrv/internal/logger"
	"github.com/rocketmq-go/namesrv/internal/rim"
)

// Config controls the HTTP listener backing the query API.
type Config struct {
	ListenAddr          string
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	IdleTimeout         time.Duration
	MaxRegisterBodySize bytesize.ByteSize
}

// Server serves the name-service's HTTP control surface, modeled on the
// teacher's controlplane API server lifecycle (Start blocks, Stop is
// idempotent).
type Server struct {
	server       *http.Server
	shutdownOnce sync.Once
}

// NewServer builds a Server bound to r, not yet listening.
func NewServer(cfg Config, r *rim.RIM) *Server {
	router := NewRouter(r, cfg.MaxRegisterBodySize)

	return &Server{
		server: &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("query API listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("query API shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("query API server failed: %w", err)
	}
}

// Stop gracefully shuts the server down. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("query API shutdown error: %w", err)
			logger.Error("query API shutdown error", "error", err)
		} else {
			logger.Info("query API stopped gracefully")
		}
	})
	return shutdownErr
}
