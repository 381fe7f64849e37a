//go:build js && wasm

package jsbridge

import (
	"syscall/js"
	"testing"

	"github.com/lirancohen/portal/internal/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGlobal = "portalTestInstance"

func setGlobal(t *testing.T, v any) {
	t.Helper()
	js.Global().Set(testGlobal, v)
	t.Cleanup(func() { js.Global().Delete(testGlobal) })
}

func TestLookup(t *testing.T) {
	b := bridge.New(Lookup(testGlobal), nil, discard)

	t.Run("missing global is not loaded", func(t *testing.T) {
		assert.False(t, b.IsLoaded())
		assert.False(t, b.SendMessage("Player", "Jump"))
	})

	t.Run("null global is not loaded", func(t *testing.T) {
		setGlobal(t, js.Null())
		assert.False(t, b.IsLoaded())
	})

	t.Run("falsy global is loaded but cannot send", func(t *testing.T) {
		for _, v := range []any{0, "", false} {
			setGlobal(t, v)
			assert.True(t, b.IsLoaded(), v)
			assert.False(t, b.SendMessage("Player", "Jump"), v)
		}
	})

	t.Run("instance without SendMessage cannot send", func(t *testing.T) {
		setGlobal(t, js.Global().Get("Object").New())
		assert.True(t, b.IsLoaded())
		assert.False(t, b.SendMessage("Player", "Jump"))
	})

	t.Run("send reaches the instance", func(t *testing.T) {
		calls := js.Global().Get("Array").New()
		instance := js.Global().Get("Function").New("calls",
			"return { SendMessage(o, m, p) { calls.push([o, m, p]) } }").Invoke(calls)
		setGlobal(t, instance)

		require.True(t, b.SendMessage("Player", "Jump", "high"))
		require.Equal(t, 1, calls.Length())
		call := calls.Index(0)
		assert.Equal(t, "Player", call.Index(0).String())
		assert.Equal(t, "Jump", call.Index(1).String())
		assert.Equal(t, "high", call.Index(2).String())
	})

	t.Run("throwing SendMessage reports failure", func(t *testing.T) {
		instance := js.Global().Get("Function").New(
			"return { SendMessage() { throw new Error('instance destroyed') } }").Invoke()
		setGlobal(t, instance)

		assert.False(t, b.SendMessage("Player", "Jump"))
		assert.True(t, b.IsLoaded())
	})
}
