//go:build js && wasm

package jsbridge

import (
	"io"
	"log/slog"
	"syscall/js"
	"testing"

	"github.com/lirancohen/portal/internal/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTarget() js.Value {
	return js.Global().Get("EventTarget").New()
}

func dispatch(target js.Value, name string, detail any) {
	ev := js.Global().Get("Event").New(name)
	if detail != nil {
		ev.Set("detail", js.ValueOf(detail))
	}
	target.Call("dispatchEvent", ev)
}

// jsFunc builds a script function from body, as a page would pass one.
func jsFunc(body string) js.Value {
	return js.Global().Get("Function").New(body)
}

func TestEventDetailArr(t *testing.T) {
	tests := []struct {
		name  string
		event js.Value
		ok    bool
	}{
		{"array", js.ValueOf(map[string]any{"detail": map[string]any{"arr": []any{1, 2}}}), true},
		{"non-empty string", js.ValueOf(map[string]any{"detail": map[string]any{"arr": "x"}}), true},
		{"zero", js.ValueOf(map[string]any{"detail": map[string]any{"arr": 0}}), false},
		{"empty string", js.ValueOf(map[string]any{"detail": map[string]any{"arr": ""}}), false},
		{"null arr", js.ValueOf(map[string]any{"detail": map[string]any{"arr": nil}}), false},
		{"no arr", js.ValueOf(map[string]any{"detail": map[string]any{}}), false},
		{"null detail", js.ValueOf(map[string]any{"detail": nil}), false},
		{"string detail", js.ValueOf(map[string]any{"detail": "arr"}), false},
		{"undefined event", js.Undefined(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Event{Value: tt.event}.DetailArr()
			assert.Equal(t, tt.ok, ok)
		})
	}

	t.Run("normalize unwraps the script array", func(t *testing.T) {
		ev := Event{Value: js.ValueOf(map[string]any{"detail": map[string]any{"arr": []any{1, 2, 3}}})}
		got, ok := bridge.Normalize(ev).(js.Value)
		require.True(t, ok)
		assert.Equal(t, 3, got.Length())
	})
}

func TestDispatcher(t *testing.T) {
	t.Run("add dedupes and remove stops delivery", func(t *testing.T) {
		target := newTarget()
		d := NewDispatcher(target, discard)

		count := 0
		l := bridge.NewListener(func(any) { count++ })
		d.AddEventListener("tick", l)
		d.AddEventListener("tick", l)
		dispatch(target, "tick", nil)
		assert.Equal(t, 1, count)

		d.RemoveEventListener("tick", l)
		d.RemoveEventListener("tick", l)
		dispatch(target, "tick", nil)
		assert.Equal(t, 1, count)
	})

	t.Run("listener receives the DOM event", func(t *testing.T) {
		target := newTarget()
		d := NewDispatcher(target, discard)

		var got any
		d.AddEventListener("resize", bridge.NewListener(func(data any) { got = data }))
		dispatch(target, "resize", nil)

		ev, ok := got.(Event)
		require.True(t, ok)
		assert.Equal(t, "resize", ev.Get("type").String())
	})

	t.Run("panicking listener does not stop delivery", func(t *testing.T) {
		target := newTarget()
		d := NewDispatcher(target, discard)

		count := 0
		d.AddEventListener("tick", bridge.NewListener(func(any) { panic("boom") }))
		d.AddEventListener("tick", bridge.NewListener(func(any) { count++ }))

		assert.NotPanics(t, func() { dispatch(target, "tick", nil) })
		assert.NotPanics(t, func() { dispatch(target, "tick", nil) })
		assert.Equal(t, 2, count)
	})

	t.Run("throwing page callback is contained", func(t *testing.T) {
		target := newTarget()
		b := bridge.New(nil, NewDispatcher(target, discard), discard)
		callbacks := NewCallbacks()

		throws, _ := callbacks.Get("ScoreChanged", jsFunc("throw new Error('page callback failed')"))
		b.AddEventListener("ScoreChanged", throws)

		var got any
		b.AddEventListener("ScoreChanged", bridge.NewListener(func(data any) { got = data }))

		assert.NotPanics(t, func() {
			dispatch(target, "ScoreChanged", map[string]any{"arr": []any{7}})
		})
		arr, ok := got.(js.Value)
		require.True(t, ok)
		assert.Equal(t, 7, arr.Index(0).Int())
	})
}
