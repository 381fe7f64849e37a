// Package auth provides HTTP handlers for the session gate.
package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lirancohen/portal/internal/api/core"
	"github.com/lirancohen/portal/internal/api/middleware"
	"github.com/lirancohen/portal/internal/session"
)

// Handler handles authentication-related HTTP requests.
type Handler struct {
	deps *core.Deps
}

// New creates a new auth handler.
func New(deps *core.Deps) *Handler {
	return &Handler{deps: deps}
}

// RegisterRoutes registers all auth routes on the given group.
// These are all public routes (no login required).
//   - POST /auth/login
//   - POST /auth/logout
//   - GET /auth/status
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/auth/login", h.HandleLogin)
	g.POST("/auth/logout", h.HandleLogout)
	g.GET("/auth/status", h.HandleStatus)
}

// HandleLogin checks credentials and marks the browser logged in.
// POST /api/v1/auth/login
func (h *Handler) HandleLogin(c echo.Context) error {
	var cred session.Credential
	if err := c.Bind(&cred); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	out := h.deps.Gate.Login(c.Request().Context(), middleware.GetSession(c), cred)
	if !out.Success {
		return c.JSON(http.StatusUnauthorized, out)
	}
	return c.JSON(http.StatusOK, out)
}

// HandleLogout clears the logged-in flag.
// POST /api/v1/auth/logout
func (h *Handler) HandleLogout(c echo.Context) error {
	h.deps.Gate.Logout(middleware.GetSession(c))
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// HandleStatus reports whether the browser is logged in.
// GET /api/v1/auth/status
func (h *Handler) HandleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, core.AuthStatusResponse{
		LoggedIn: h.deps.Gate.IsLoggedIn(middleware.GetSession(c)),
	})
}
