// Package bridge relays messages between page code and an embedded game
// runtime (a Unity WebGL instance).
//
// The runtime is never held directly. Every call resolves it again through an
// injected Lookup, so calls made before the runtime has loaded fail with a
// false result instead of a fault. Events the runtime raises arrive through a
// Dispatcher and are normalized before reaching listeners.
package bridge

import (
	"fmt"
	"log/slog"
	"sync"
)

// SendFunc is the runtime's message primitive: invoke methodName on the
// object named objectName with parameter.
type SendFunc func(objectName, methodName string, parameter any) error

// Runtime is a resolved handle to the embedded instance.
type Runtime interface {
	// SendFunc returns the instance's send primitive, or nil when the
	// instance does not expose one.
	SendFunc() SendFunc
}

// Lookup resolves the current runtime. It returns nil while the runtime is
// absent.
type Lookup func() Runtime

type listenerKey struct {
	name     string
	listener *Listener
}

// Bridge is the page-side adapter over the embedded runtime.
type Bridge struct {
	lookup     Lookup
	dispatcher Dispatcher
	logger     *slog.Logger

	mu      sync.Mutex
	wrapped map[listenerKey]*Listener
}

// New creates a bridge. A nil lookup behaves as a runtime that never loads.
func New(lookup Lookup, dispatcher Dispatcher, logger *slog.Logger) *Bridge {
	if lookup == nil {
		lookup = func() Runtime { return nil }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		lookup:     lookup,
		dispatcher: dispatcher,
		logger:     logger.With("component", "bridge"),
		wrapped:    make(map[listenerKey]*Listener),
	}
}

// SendMessage invokes methodName on the runtime object objectName.
// The optional parameter defaults to an empty string. It reports false, with a
// warning logged, when the runtime is absent or cannot send.
func (b *Bridge) SendMessage(objectName, methodName string, parameter ...any) (sent bool) {
	var param any = ""
	if len(parameter) > 0 {
		param = parameter[0]
	}

	rt := b.lookup()
	if rt == nil {
		b.logger.Warn("runtime not initialized, cannot send message", "object", objectName, "method", methodName)
		return false
	}
	send := rt.SendFunc()
	if send == nil {
		b.logger.Warn("runtime has no send primitive, cannot send message", "object", objectName, "method", methodName)
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("runtime send failed", "object", objectName, "method", methodName, "error", fmt.Sprint(r))
			sent = false
		}
	}()
	if err := send(objectName, methodName, param); err != nil {
		b.logger.Warn("runtime send failed", "object", objectName, "method", methodName, "error", err)
		return false
	}

	b.logger.Info("sent message to runtime", "object", objectName, "method", methodName, "parameter", param)
	return true
}

// AddEventListener registers l for events named name. l receives detail.arr
// when the event carries it and the raw event otherwise.
func (b *Bridge) AddEventListener(name string, l *Listener) {
	if l == nil || b.dispatcher == nil {
		return
	}
	key := listenerKey{name: name, listener: l}

	b.mu.Lock()
	if _, ok := b.wrapped[key]; ok {
		b.mu.Unlock()
		return
	}
	raw := NewListener(func(event any) {
		l.Handle(Normalize(event))
	})
	b.wrapped[key] = raw
	b.mu.Unlock()

	b.dispatcher.AddEventListener(name, raw)

	// A remove that ran before the dispatcher saw raw had nothing to undo.
	b.mu.Lock()
	current := b.wrapped[key]
	b.mu.Unlock()
	if current != raw {
		b.dispatcher.RemoveEventListener(name, raw)
	}
}

// RemoveEventListener deregisters the exact listener previously passed to
// AddEventListener. Unknown and repeated removals are no-ops.
func (b *Bridge) RemoveEventListener(name string, l *Listener) {
	if b.dispatcher == nil {
		return
	}
	key := listenerKey{name: name, listener: l}

	b.mu.Lock()
	raw, ok := b.wrapped[key]
	delete(b.wrapped, key)
	b.mu.Unlock()

	if !ok {
		return
	}
	b.dispatcher.RemoveEventListener(name, raw)
}

// IsLoaded reports whether the runtime currently resolves. The runtime may
// still vanish before a following SendMessage runs.
func (b *Bridge) IsLoaded() bool {
	if b.lookup() == nil {
		b.logger.Warn("runtime not loaded")
		return false
	}
	return true
}
