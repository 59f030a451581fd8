// Package web serves the single-page upload UI and the heatmap API.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/KaramelBytes/worksetmap/internal/dataset"
	"github.com/KaramelBytes/worksetmap/internal/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for the web server.
type Config struct {
	Addr        string
	MaxUploadMB int
	Options     dataset.Options
	Style       render.Style
	Logger      *slog.Logger
}

// Server is the upload UI server. It keeps no per-upload state.
type Server struct {
	addr     string
	handlers *Handlers
	logger   *slog.Logger
}

// NewServer creates a new server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	style := cfg.Style
	if len(style.Ramp) == 0 {
		style = render.DefaultStyle()
	}
	return &Server{
		addr:     cfg.Addr,
		handlers: NewHandlers(cfg.Options, &render.Renderer{Style: style}, cfg.MaxUploadMB, logger),
		logger:   logger,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)
	r.Get("/", s.handlers.Index)
	r.Post("/", s.handlers.Upload)
	r.Post("/api/heatmap", s.handlers.API)
	r.Get("/healthz", s.handlers.Health)
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting web UI", "addr", s.addr)

	eg, egctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down web UI...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
