package realtime

import (
	"net/http"

	"github.com/centrifugal/centrifuge"
	"github.com/labstack/echo/v4"
	"github.com/lirancohen/portal/internal/session"
)

// ConnectionUser is the Centrifuge user ID given to logged-in pages. The
// portal has no user identities, only a logged-in flag.
const ConnectionUser = "portal"

// AuthMiddleware admits websocket upgrades from logged-in browsing contexts
// and sets Centrifuge credentials for them. It expects the session context to
// be attached already.
func AuthMiddleware(gate *session.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !gate.IsLoggedIn(session.FromContext(req.Context())) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized: not logged in")
			}

			cred := &centrifuge.Credentials{
				UserID: ConnectionUser,
			}
			ctx := centrifuge.SetCredentials(req.Context(), cred)
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
