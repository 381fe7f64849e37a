// Package storage provides the browser-local storage backends the session
// gate persists its flag in.
package storage

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/lirancohen/portal/internal/session"
)

// Backend names accepted in configuration.
const (
	BackendCookie = "cookie"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Provider hands out the storage belonging to the browser behind a request.
type Provider interface {
	ForRequest(c echo.Context) session.Storage
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(c echo.Context) session.Storage

// ForRequest calls f.
func (f ProviderFunc) ForRequest(c echo.Context) session.Storage {
	return f(c)
}

// Static returns a provider that hands every request the same storage.
// Only meaningful for a single browser, e.g. in tests.
func Static(st session.Storage) Provider {
	return ProviderFunc(func(echo.Context) session.Storage { return st })
}

// ValidateBackend reports an error for unknown backend names.
func ValidateBackend(name string) error {
	switch name {
	case BackendCookie, BackendSQLite, BackendMemory:
		return nil
	default:
		return fmt.Errorf("unknown storage backend %q", name)
	}
}
