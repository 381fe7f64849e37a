package router

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lirancohen/portal/internal/session"
)

// replacedLocation is implemented by locations that remember a Replace call.
type replacedLocation interface {
	Replaced() bool
}

// Middleware enforces the navigation guard on page requests.
// It expects the session context to have been attached to the request
// already. Paths outside the table pass through untouched.
func Middleware(gate *session.Gate, table Table, logger *slog.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			to, ok := table.Resolve(req.URL.Path)
			if !ok {
				return next(c)
			}

			// Route-level redirects keep the query so a logout signal survives.
			if to.Redirect != "" {
				target := to.Redirect
				if req.URL.RawQuery != "" {
					target += "?" + req.URL.RawQuery
				}
				return c.Redirect(http.StatusFound, target)
			}

			sc := session.FromContext(req.Context())
			if sc == nil {
				logger.Error("navigation without session context", "path", req.URL.Path)
				return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
			}

			loggedIn := gate.IsLoggedIn(sc)
			decision := table.Guard(to, loggedIn)
			if !decision.Allowed() {
				logger.Debug("navigation redirected", "from", req.URL.Path, "to", decision.Redirect)
				return c.Redirect(http.StatusFound, decision.Redirect)
			}

			// The logout signal was consumed: show the cleaned address.
			if loc, ok := sc.Location.(replacedLocation); ok && loc.Replaced() {
				return c.Redirect(http.StatusFound, sc.Location.URL().RequestURI())
			}

			return next(c)
		}
	}
}
