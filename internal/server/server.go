// Package server exposes the review pipeline over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/vantorre/redline/internal/config"
	"github.com/vantorre/redline/internal/history"
	"github.com/vantorre/redline/internal/loggy"
	"github.com/vantorre/redline/internal/results"
	"github.com/vantorre/redline/internal/review"
	"github.com/vantorre/redline/internal/workspace"
)

// Server is the REST API server
type Server struct {
	echo    *echo.Echo
	reviews *review.Service
	scanner *workspace.Scanner
	store   *results.Store
	runs    history.Repository
	cfg     *config.Config
	logger  *loggy.Logger
}

// New creates the API server with all routes registered. runs may be nil
// when no database is available; /api/results then serves from the file
// sink only.
func New(
	reviews *review.Service,
	scanner *workspace.Scanner,
	store *results.Store,
	runs history.Repository,
	cfg *config.Config,
	logger *loggy.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:    e,
		reviews: reviews,
		scanner: scanner,
		store:   store,
		runs:    runs,
		cfg:     cfg,
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.health)

	api := s.echo.Group("/api")
	api.POST("/review/code", s.reviewCode)
	api.POST("/review/file-path", s.reviewFilePath)
	api.POST("/review/directory", s.reviewDirectory)
	api.POST("/review/multiple", s.reviewMultiple)
	api.POST("/review/git", s.reviewGit)
	api.POST("/fix/apply", s.applyFix)
	api.GET("/results", s.listResults)
	api.GET("/files/list", s.listFiles)
}

// Start serves HTTP on the given address, blocking until the server
// stops.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting API server", "addr", addr)
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the routing tree for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}
