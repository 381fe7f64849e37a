// Package middleware provides HTTP middleware for the API
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lirancohen/portal/internal/session"
	"github.com/lirancohen/portal/internal/storage"
)

// SessionContext attaches the browsing context of the request: the browser's
// storage from provider and the requested URL as its location.
func SessionContext(provider storage.Provider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			sc := &session.Context{
				Storage:  provider.ForRequest(c),
				Location: session.NewURLLocation(req.URL),
			}
			c.SetRequest(req.WithContext(session.WithContext(req.Context(), sc)))
			return next(c)
		}
	}
}

// RequireLogin rejects API requests from browsing contexts that are not
// logged in. It runs after SessionContext.
func RequireLogin(gate *session.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !gate.IsLoggedIn(GetSession(c)) {
				return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
			}
			return next(c)
		}
	}
}

// GetSession retrieves the browsing context attached by SessionContext
func GetSession(c echo.Context) *session.Context {
	return session.FromContext(c.Request().Context())
}
