package bridge

import (
	"log/slog"
	"sync"
)

// Listener is a registered event callback. Registration and removal are by
// pointer identity, the way the DOM compares listener references.
type Listener struct {
	fn func(data any)
}

// NewListener wraps fn so it can be registered and later removed.
func NewListener(fn func(data any)) *Listener {
	return &Listener{fn: fn}
}

// Handle invokes the callback.
func (l *Listener) Handle(data any) {
	if l != nil && l.fn != nil {
		l.fn(data)
	}
}

// Dispatcher delivers named events to registered listeners.
type Dispatcher interface {
	AddEventListener(name string, l *Listener)
	RemoveEventListener(name string, l *Listener)
}

// Bus is an in-process Dispatcher. Listeners for a name are notified in
// registration order on the emitting goroutine.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]*Listener
	logger    *slog.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		listeners: make(map[string][]*Listener),
		logger:    logger.With("component", "bus"),
	}
}

// AddEventListener registers l for name. Registering the same listener twice
// for one name is a no-op.
func (b *Bus) AddEventListener(name string, l *Listener) {
	if l == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.listeners[name] {
		if existing == l {
			return
		}
	}
	b.listeners[name] = append(b.listeners[name], l)
}

// RemoveEventListener deregisters l for name. Unknown listeners are ignored.
func (b *Bus) RemoveEventListener(name string, l *Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.listeners[name]
	for i, existing := range current {
		if existing != l {
			continue
		}
		next := make([]*Listener, 0, len(current)-1)
		next = append(next, current[:i]...)
		next = append(next, current[i+1:]...)
		if len(next) == 0 {
			delete(b.listeners, name)
		} else {
			b.listeners[name] = next
		}
		return
	}
}

// Emit delivers event to every listener registered for name and returns how
// many were notified. A panicking listener is logged and skipped.
func (b *Bus) Emit(name string, event any) int {
	b.mu.RLock()
	listeners := b.listeners[name]
	b.mu.RUnlock()

	for _, l := range listeners {
		b.deliver(name, l, event)
	}
	return len(listeners)
}

// Dispatch emits ev under its own type.
func (b *Bus) Dispatch(ev *Event) int {
	return b.Emit(ev.Type, ev)
}

// ListenerCount returns how many listeners are registered for name.
func (b *Bus) ListenerCount(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[name])
}

func (b *Bus) deliver(name string, l *Listener, event any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event listener panicked", "event", name, "panic", r)
		}
	}()
	l.Handle(event)
}
