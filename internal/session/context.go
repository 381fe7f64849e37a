package session

import (
	"context"
	"net/url"
)

// Location is the visible address of a browsing context.
type Location interface {
	// URL returns a copy of the current address.
	URL() *url.URL
	// Replace swaps the visible address without a navigation.
	Replace(u *url.URL)
}

// URLLocation is a Location over a request URL. It remembers whether the
// address was replaced so the HTTP layer can tell the browser about it.
type URLLocation struct {
	url      *url.URL
	replaced bool
}

// NewURLLocation creates a location holding a copy of u.
func NewURLLocation(u *url.URL) *URLLocation {
	return &URLLocation{url: cloneURL(u)}
}

// URL returns a copy of the current address.
func (l *URLLocation) URL() *url.URL {
	return cloneURL(l.url)
}

// Replace swaps the current address.
func (l *URLLocation) Replace(u *url.URL) {
	l.url = cloneURL(u)
	l.replaced = true
}

// Replaced reports whether Replace was called.
func (l *URLLocation) Replaced() bool {
	return l.replaced
}

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return &url.URL{}
	}
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}
	return &c
}

// Context is the per-browsing-context state the gate operates on.
type Context struct {
	Storage  Storage
	Location Location
}

type contextKey string

const sessionContextKey contextKey = "session"

// WithContext adds a session context to ctx.
func WithContext(ctx context.Context, sc *Context) context.Context {
	return context.WithValue(ctx, sessionContextKey, sc)
}

// FromContext retrieves the session context.
// Returns nil if no session context is present.
func FromContext(ctx context.Context) *Context {
	sc, _ := ctx.Value(sessionContextKey).(*Context)
	return sc
}
