package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/centrifugal/centrifuge"
	"github.com/labstack/echo/v4"
	"github.com/lirancohen/portal/internal/session"
)

func TestAuthMiddleware(t *testing.T) {
	gate := session.NewGate(session.StaticValidator{Username: "admin", Password: "secret1"}, discard)

	run := func(storage session.Storage) (int, context.Context) {
		var capturedCtx context.Context
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/connection/websocket", nil)
		sc := &session.Context{Storage: storage, Location: session.NewURLLocation(req.URL)}
		req = req.WithContext(session.WithContext(req.Context(), sc))
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := AuthMiddleware(gate)(func(c echo.Context) error {
			capturedCtx = c.Request().Context()
			return c.NoContent(http.StatusOK)
		})
		if err := handler(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		return rec.Code, capturedCtx
	}

	t.Run("logged in browsing context gets credentials", func(t *testing.T) {
		storage := session.NewMemoryStorage()
		_ = storage.SetItem(session.FlagKey, session.FlagValue)

		code, ctx := run(storage)
		if code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", code)
		}
		cred, ok := centrifuge.GetCredentials(ctx)
		if !ok {
			t.Fatal("Expected credentials in context")
		}
		if cred.UserID != ConnectionUser {
			t.Errorf("Expected UserID %q, got %q", ConnectionUser, cred.UserID)
		}
	})

	t.Run("logged out browsing context is rejected", func(t *testing.T) {
		code, ctx := run(session.NewMemoryStorage())
		if code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", code)
		}
		if ctx != nil {
			t.Error("handler should not run")
		}
	})
}
