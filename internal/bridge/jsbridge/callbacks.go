//go:build js && wasm

package jsbridge

import (
	"sync"
	"syscall/js"

	"github.com/lirancohen/portal/internal/bridge"
)

// Callbacks maps script callbacks to bridge listeners so that removal can
// find the listener registered for the same function. Functions are matched
// with js.Value.Equal, like the page's own addEventListener.
type Callbacks struct {
	mu      sync.Mutex
	entries []callback
}

type callback struct {
	name     string
	fn       js.Value
	listener *bridge.Listener
}

// NewCallbacks returns an empty set.
func NewCallbacks() *Callbacks {
	return &Callbacks{}
}

// Get returns the listener for fn under name, creating it on first use.
// created reports whether the caller must register it with the bridge.
func (s *Callbacks) Get(name string, fn js.Value) (l *bridge.Listener, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.name == name && e.fn.Equal(fn) {
			return e.listener, false
		}
	}
	l = bridge.NewListener(func(data any) {
		fn.Invoke(ToJS(data))
	})
	s.entries = append(s.entries, callback{name: name, fn: fn, listener: l})
	return l, true
}

// Remove forgets fn under name and returns its listener, or nil if fn was
// never added.
func (s *Callbacks) Remove(name string, fn js.Value) *bridge.Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.name == name && e.fn.Equal(fn) {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			return e.listener
		}
	}
	return nil
}

// Len returns the number of registered callbacks.
func (s *Callbacks) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// ToJS converts a listener payload to a value scripts can receive.
func ToJS(data any) any {
	switch v := data.(type) {
	case Event:
		return v.Value
	case js.Value:
		return v
	default:
		return js.ValueOf(v)
	}
}
