package storage

import (
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/lirancohen/portal/internal/session"
)

// MemoryProvider keeps one in-memory storage per browser ID. State is lost on
// restart; meant for local development.
type MemoryProvider struct {
	mu       sync.Mutex
	browsers map[string]*session.MemoryStorage
	secure   bool
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider(secure bool) *MemoryProvider {
	return &MemoryProvider{
		browsers: make(map[string]*session.MemoryStorage),
		secure:   secure,
	}
}

// ForRequest returns the storage of the requesting browser.
func (p *MemoryProvider) ForRequest(c echo.Context) session.Storage {
	id := browserID(c, p.secure)

	p.mu.Lock()
	defer p.mu.Unlock()

	st, ok := p.browsers[id]
	if !ok {
		st = session.NewMemoryStorage()
		p.browsers[id] = st
	}
	return st
}
