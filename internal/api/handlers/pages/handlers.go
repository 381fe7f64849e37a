// Package pages serves the login and dashboard pages. The navigation guard
// runs before every handler here.
package pages

import (
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/lirancohen/portal/internal/api/core"
	"github.com/lirancohen/portal/internal/api/middleware"
	"github.com/lirancohen/portal/internal/router"
	"github.com/lirancohen/portal/internal/session"
)

// Template names the renderer must provide.
const (
	TemplateLogin     = "login.html"
	TemplateDashboard = "dashboard.html"
)

// LoginData is rendered into the login page.
type LoginData struct {
	Username string
	Message  string
}

// DashboardData is rendered into the dashboard page.
type DashboardData struct {
	Global     string
	LoaderURL  string
	BuildURL   string
	BuildName  string
	Events     []string
	LogoutURL  string
	Websocket  string
	RuntimeAPI string
}

// Handler handles page requests.
type Handler struct {
	deps *core.Deps
}

// New creates a new page handler.
func New(deps *core.Deps) *Handler {
	return &Handler{deps: deps}
}

// RegisterRoutes registers every page route with the given middleware, which
// must attach the session context and run the navigation guard.
func (h *Handler) RegisterRoutes(e *echo.Echo, m ...echo.MiddlewareFunc) {
	e.GET(router.RootPath, h.HandleRoot, m...)
	e.GET(router.LoginPath, h.HandleLoginPage, m...)
	e.POST(router.LoginPath, h.HandleLoginForm, m...)
	e.GET(router.DashboardPath, h.HandleDashboard, m...)
}

// HandleRoot is only reached if the route table stops redirecting the root.
func (h *Handler) HandleRoot(c echo.Context) error {
	return c.Redirect(http.StatusFound, router.LoginPath)
}

// HandleLoginPage renders the login form.
// GET /login
func (h *Handler) HandleLoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, TemplateLogin, LoginData{})
}

// HandleLoginForm logs in from the form and continues to the dashboard.
// Failures re-render the form with the gate's message.
// POST /login
func (h *Handler) HandleLoginForm(c echo.Context) error {
	cred := session.Credential{
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
	}

	out := h.deps.Gate.Login(c.Request().Context(), middleware.GetSession(c), cred)
	if !out.Success {
		return c.Render(http.StatusUnauthorized, TemplateLogin, LoginData{
			Username: cred.Username,
			Message:  out.Message,
		})
	}
	return c.Redirect(http.StatusSeeOther, h.deps.Routes.Home)
}

// HandleDashboard renders the page hosting the runtime.
// GET /dashboard
func (h *Handler) HandleDashboard(c echo.Context) error {
	rt := h.deps.Runtime
	var buildName string
	buildURL := rt.BuildURL
	if rt.LoaderURL != "" {
		buildName = strings.TrimSuffix(path.Base(rt.LoaderURL), ".loader.js")
		if buildURL == "" {
			buildURL = path.Dir(rt.LoaderURL)
		}
	}

	return c.Render(http.StatusOK, TemplateDashboard, DashboardData{
		Global:     rt.Global,
		LoaderURL:  rt.LoaderURL,
		BuildURL:   buildURL,
		BuildName:  buildName,
		Events:     rt.Events,
		LogoutURL:  router.LoginPath + "?" + session.LogoutParam + "=true",
		Websocket:  "/connection/websocket",
		RuntimeAPI: "/api/v1/runtime",
	})
}
