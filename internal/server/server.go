// Package server exposes the book library over a JSON REST API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/billmal071/pavilion/internal/config"
	"github.com/billmal071/pavilion/internal/library"
)

// Server is the HTTP backend for the book library
type Server struct {
	cfg     config.ServerConfig
	svc     *library.Service
	log     zerolog.Logger
	metrics *metrics
	engine  *gin.Engine
}

// New builds the gin engine with every route registered
func New(svc *library.Service, cfg config.ServerConfig, log zerolog.Logger) *Server {
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		svc:     svc,
		log:     log,
		metrics: newMetrics(),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), s.metrics.instrument(), cors())
	if cfg.RateLimit > 0 {
		r.Use(newRateLimiter(cfg.RateLimit).handler())
	}

	// Multipart bodies above this spill to temp files
	r.MaxMultipartMemory = 8 << 20 // 8 MB

	r.Static("/uploads", svc.UploadDir())
	r.GET("/metrics", gin.WrapH(s.metrics.handler()))

	api := r.Group("/api")
	{
		books := api.Group("/books")
		{
			books.POST("", s.createBook)
			books.GET("", s.listBooks)
			books.GET("/:id", s.getBook)
			books.DELETE("/:id", s.deleteBook)
			books.GET("/:id/content", s.getBookContent)
		}

		api.GET("/health", s.health)
	}

	s.engine = r
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Str("upload_dir", s.svc.UploadDir()).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info().Msg("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
