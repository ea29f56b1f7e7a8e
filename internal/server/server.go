package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"mt4-analyzer/internal/interfaces"
	"mt4-analyzer/internal/logger"
	"mt4-analyzer/internal/report"
	"mt4-analyzer/internal/risk"
	"mt4-analyzer/internal/store"
)

// Server exposes the analysis pipeline over HTTP.
type Server struct {
	echo     *echo.Echo
	cfg      *store.Config
	analyzer interfaces.Analyzer
	fetcher  interfaces.Fetcher
	planner  *risk.Planner
	reports  *report.Store
}

func New(cfg *store.Config, analyzer interfaces.Analyzer, fetcher interfaces.Fetcher, planner *risk.Planner, reports *report.Store) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.Server.MaxUploadMB)))

	s := &Server{
		echo:     e,
		cfg:      cfg,
		analyzer: analyzer,
		fetcher:  fetcher,
		planner:  planner,
		reports:  reports,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	v1 := s.echo.Group("/api/v1")
	v1.GET("/health", s.health)
	v1.POST("/analyze/file", s.analyzeFile)
	v1.POST("/analyze/content", s.analyzeContent)
	v1.POST("/analyze/url", s.analyzeURL)
	v1.POST("/risk-calculator", s.riskCalculator)
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// within the configured grace period.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(s.cfg.Server.Addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	logger.Info(ctx, "HTTP server started", "addr", s.cfg.Server.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(s.cfg.Server.ShutdownSeconds)*time.Second)
	defer cancel()

	logger.Info(shutdownCtx, "HTTP server shutting down")
	return s.echo.Shutdown(shutdownCtx)
}
