//go:build js && wasm

// Package jsbridge binds the bridge and session packages to the browser:
// the runtime global on window, DOM events, localStorage and the address
// bar.
package jsbridge

import (
	"syscall/js"

	"github.com/lirancohen/portal/internal/bridge"
)

// Lookup resolves window[global] on every call. Only null and undefined
// count as absent.
func Lookup(global string) bridge.Lookup {
	return func() bridge.Runtime {
		v := js.Global().Get(global)
		if v.IsNull() || v.IsUndefined() {
			return nil
		}
		return jsRuntime{v: v}
	}
}

type jsRuntime struct {
	v js.Value
}

// SendFunc returns nil unless the instance has a SendMessage function.
// Script exceptions surface as panics, which the bridge recovers.
func (rt jsRuntime) SendFunc() bridge.SendFunc {
	if !isObject(rt.v) {
		return nil
	}
	if rt.v.Get("SendMessage").Type() != js.TypeFunction {
		return nil
	}
	return func(objectName, methodName string, parameter any) error {
		rt.v.Call("SendMessage", objectName, methodName, js.ValueOf(parameter))
		return nil
	}
}
