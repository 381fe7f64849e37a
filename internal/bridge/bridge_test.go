package bridge

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type call struct {
	object, method string
	parameter      any
}

type fakeRuntime struct {
	calls []call
	err   error
	noFn  bool
}

func (r *fakeRuntime) SendFunc() SendFunc {
	if r.noFn {
		return nil
	}
	return func(objectName, methodName string, parameter any) error {
		r.calls = append(r.calls, call{objectName, methodName, parameter})
		return r.err
	}
}

type panicRuntime struct{}

// hookDispatcher runs beforeAdd ahead of each registration on the bus.
type hookDispatcher struct {
	*Bus
	beforeAdd func()
}

func (d *hookDispatcher) AddEventListener(name string, l *Listener) {
	if d.beforeAdd != nil {
		d.beforeAdd()
	}
	d.Bus.AddEventListener(name, l)
}

func (panicRuntime) SendFunc() SendFunc {
	return func(string, string, any) error { panic("instance destroyed") }
}

func TestSendMessage(t *testing.T) {
	t.Run("no runtime returns false", func(t *testing.T) {
		b := New(func() Runtime { return nil }, NewBus(discard), discard)
		assert.False(t, b.SendMessage("Obj", "Method", "x"))
	})

	t.Run("nil lookup returns false", func(t *testing.T) {
		b := New(nil, NewBus(discard), discard)
		assert.False(t, b.SendMessage("Obj", "Method", "x"))
		assert.False(t, b.IsLoaded())
	})

	t.Run("runtime without primitive returns false", func(t *testing.T) {
		rt := &fakeRuntime{noFn: true}
		b := New(func() Runtime { return rt }, NewBus(discard), discard)
		assert.False(t, b.SendMessage("Obj", "Method", "x"))
	})

	t.Run("present runtime receives the call", func(t *testing.T) {
		rt := &fakeRuntime{}
		b := New(func() Runtime { return rt }, NewBus(discard), discard)

		require.True(t, b.SendMessage("Player", "Jump", 3))
		require.Len(t, rt.calls, 1)
		assert.Equal(t, call{"Player", "Jump", 3}, rt.calls[0])
	})

	t.Run("parameter defaults to empty string", func(t *testing.T) {
		rt := &fakeRuntime{}
		b := New(func() Runtime { return rt }, NewBus(discard), discard)

		require.True(t, b.SendMessage("Player", "Reset"))
		assert.Equal(t, "", rt.calls[0].parameter)
	})

	t.Run("send error returns false", func(t *testing.T) {
		rt := &fakeRuntime{err: errors.New("connection closed")}
		b := New(func() Runtime { return rt }, NewBus(discard), discard)
		assert.False(t, b.SendMessage("Player", "Jump"))
	})

	t.Run("panicking primitive returns false", func(t *testing.T) {
		b := New(func() Runtime { return panicRuntime{} }, NewBus(discard), discard)
		assert.False(t, b.SendMessage("Player", "Jump"))
	})

	t.Run("runtime is resolved on every call", func(t *testing.T) {
		var current Runtime
		lookups := 0
		b := New(func() Runtime {
			lookups++
			return current
		}, NewBus(discard), discard)

		assert.False(t, b.SendMessage("Obj", "Method"))
		rt := &fakeRuntime{}
		current = rt
		assert.True(t, b.SendMessage("Obj", "Method"))
		current = nil
		assert.False(t, b.SendMessage("Obj", "Method"))
		assert.Equal(t, 3, lookups)
		assert.Len(t, rt.calls, 1)
	})
}

func TestIsLoaded(t *testing.T) {
	var current Runtime
	b := New(func() Runtime { return current }, NewBus(discard), discard)

	assert.False(t, b.IsLoaded())
	current = &fakeRuntime{}
	assert.True(t, b.IsLoaded())
	current = nil
	assert.False(t, b.IsLoaded())
}

func TestEventListeners(t *testing.T) {
	t.Run("detail.arr is unwrapped", func(t *testing.T) {
		bus := NewBus(discard)
		b := New(nil, bus, discard)

		var got any
		l := NewListener(func(data any) { got = data })
		b.AddEventListener("ScoreChanged", l)

		bus.Emit("ScoreChanged", map[string]any{"detail": map[string]any{"arr": []any{1, 2, 3}}})
		assert.Equal(t, []any{1, 2, 3}, got)
	})

	t.Run("event without detail.arr is delivered raw", func(t *testing.T) {
		bus := NewBus(discard)
		b := New(nil, bus, discard)

		var got any
		b.AddEventListener("resize", NewListener(func(data any) { got = data }))

		ev := &Event{Type: "resize", Detail: map[string]any{"width": 800}}
		bus.Dispatch(ev)
		assert.Same(t, ev, got)
	})

	t.Run("removed listener stops receiving", func(t *testing.T) {
		bus := NewBus(discard)
		b := New(nil, bus, discard)

		count := 0
		l := NewListener(func(any) { count++ })
		b.AddEventListener("tick", l)
		bus.Emit("tick", &Event{Type: "tick"})

		b.RemoveEventListener("tick", l)
		bus.Emit("tick", &Event{Type: "tick"})

		assert.Equal(t, 1, count)
		assert.Equal(t, 0, bus.ListenerCount("tick"))
	})

	t.Run("unknown and double removal are no-ops", func(t *testing.T) {
		bus := NewBus(discard)
		b := New(nil, bus, discard)

		l := NewListener(func(any) {})
		b.RemoveEventListener("tick", l)
		b.AddEventListener("tick", l)
		b.RemoveEventListener("tick", l)
		b.RemoveEventListener("tick", l)
		b.RemoveEventListener("other", NewListener(func(any) {}))
		assert.Equal(t, 0, bus.ListenerCount("tick"))
	})

	t.Run("duplicate registration delivers once", func(t *testing.T) {
		bus := NewBus(discard)
		b := New(nil, bus, discard)

		count := 0
		l := NewListener(func(any) { count++ })
		b.AddEventListener("tick", l)
		b.AddEventListener("tick", l)
		bus.Emit("tick", nil)
		assert.Equal(t, 1, count)
	})

	t.Run("same listener on two names", func(t *testing.T) {
		bus := NewBus(discard)
		b := New(nil, bus, discard)

		var names []any
		l := NewListener(func(data any) { names = append(names, data.(*Event).Type) })
		b.AddEventListener("a", l)
		b.AddEventListener("b", l)
		b.RemoveEventListener("a", l)

		bus.Dispatch(&Event{Type: "a"})
		bus.Dispatch(&Event{Type: "b"})
		assert.Equal(t, []any{"b"}, names)
	})

	t.Run("removal racing registration leaves nothing behind", func(t *testing.T) {
		d := &hookDispatcher{Bus: NewBus(discard)}
		b := New(nil, d, discard)

		count := 0
		l := NewListener(func(any) { count++ })
		d.beforeAdd = func() {
			d.beforeAdd = nil
			b.RemoveEventListener("tick", l)
		}
		b.AddEventListener("tick", l)

		d.Emit("tick", nil)
		assert.Equal(t, 0, count)
		assert.Equal(t, 0, d.ListenerCount("tick"))

		b.AddEventListener("tick", l)
		d.Emit("tick", nil)
		assert.Equal(t, 1, count)
	})

	t.Run("nil dispatcher is tolerated", func(t *testing.T) {
		b := New(nil, nil, discard)
		l := NewListener(func(any) {})
		b.AddEventListener("tick", l)
		b.RemoveEventListener("tick", l)
	})
}
