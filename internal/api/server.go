// Package api serves the portal's pages, JSON API and realtime endpoint.
package api

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/lirancohen/portal/frontend"
	"github.com/lirancohen/portal/internal/api/core"
	authhandlers "github.com/lirancohen/portal/internal/api/handlers/auth"
	"github.com/lirancohen/portal/internal/api/handlers/pages"
	runtimehandlers "github.com/lirancohen/portal/internal/api/handlers/runtime"
	"github.com/lirancohen/portal/internal/api/middleware"
	"github.com/lirancohen/portal/internal/realtime"
	"github.com/lirancohen/portal/internal/router"
)

// Server represents the API server
type Server struct {
	echo     *echo.Echo
	deps     *core.Deps
	logger   *slog.Logger
	addr     string
	certFile string
	keyFile  string
}

// Config holds server configuration
type Config struct {
	Addr     string // e.g., ":8080" or "0.0.0.0:8443"
	CertFile string // Path to TLS certificate (optional)
	KeyFile  string // Path to TLS key (optional)
	// Assets overrides the embedded frontend (templates/ and static/).
	Assets fs.FS
}

// NewServer creates a new API server
func NewServer(deps *core.Deps, cfg Config) (*Server, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.Assets == nil {
		cfg.Assets = frontend.Assets
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	renderer, err := newTemplateRenderer(cfg.Assets)
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	// Middleware
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger.With("component", "http")))

	s := &Server{
		echo:     e,
		deps:     deps,
		logger:   deps.Logger.With("component", "api"),
		addr:     cfg.Addr,
		certFile: cfg.CertFile,
		keyFile:  cfg.KeyFile,
	}

	if err := s.registerRoutes(cfg.Assets); err != nil {
		return nil, err
	}
	return s, nil
}

// registerRoutes sets up all routes
func (s *Server) registerRoutes(assets fs.FS) error {
	sessionMW := middleware.SessionContext(s.deps.Storage)

	// Pages run behind the navigation guard
	guard := router.Middleware(s.deps.Gate, s.deps.Routes, s.deps.Logger)
	pages.New(s.deps).RegisterRoutes(s.echo, sessionMW, guard)

	static, err := fs.Sub(assets, "static")
	if err != nil {
		return fmt.Errorf("failed to open static assets: %w", err)
	}
	s.echo.StaticFS("/static", static)

	// API v1 group
	v1 := s.echo.Group("/api/v1", sessionMW)

	// Public endpoints (no login required)
	v1.GET("/system/status", s.handleHealthCheck)
	authhandlers.New(s.deps).RegisterRoutes(v1)

	// Protected endpoints
	protected := v1.Group("", middleware.RequireLogin(s.deps.Gate))
	runtimehandlers.New(s.deps).RegisterRoutes(protected)

	// Realtime endpoint for the dashboard's runtime relay
	if s.deps.Realtime != nil {
		s.echo.GET("/connection/websocket",
			echo.WrapHandler(s.deps.Realtime.WebSocketHandler()),
			sessionMW, realtime.AuthMiddleware(s.deps.Gate))
	}
	return nil
}

// handleHealthCheck returns system health status
func (s *Server) handleHealthCheck(c echo.Context) error {
	status := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   s.deps.Version,
	}

	if s.deps.DB == nil {
		return c.JSON(http.StatusOK, status)
	}

	// Verify database connection
	status["database"] = "connected"
	if err := s.deps.DB.Ping(); err != nil {
		status["status"] = "unhealthy"
		status["database"] = "disconnected"
		status["error"] = err.Error()
		return c.JSON(http.StatusServiceUnavailable, status)
	}

	return c.JSON(http.StatusOK, status)
}

// ServeHTTP lets the server be driven directly, e.g. by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start begins serving HTTP/HTTPS requests
func (s *Server) Start() error {
	if s.certFile != "" && s.keyFile != "" {
		s.logger.Info("starting HTTPS server", "addr", s.addr)
		return s.echo.StartTLS(s.addr, s.certFile, s.keyFile)
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	return s.echo.Start(s.addr)
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
