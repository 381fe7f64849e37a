//go:build js && wasm

package jsbridge

import (
	"log/slog"
	"sync"
	"syscall/js"

	"github.com/lirancohen/portal/internal/bridge"
)

// Event is a DOM event delivered to listeners whose event has no usable
// detail.arr.
type Event struct {
	js.Value
}

// DetailArr implements bridge.DetailCarrier.
func (e Event) DetailArr() (any, bool) {
	if !isObject(e.Value) {
		return nil, false
	}
	detail := e.Get("detail")
	if !isObject(detail) {
		return nil, false
	}
	arr := detail.Get("arr")
	if !arr.Truthy() {
		return nil, false
	}
	return arr, true
}

func isObject(v js.Value) bool {
	t := v.Type()
	return t == js.TypeObject || t == js.TypeFunction
}

type registration struct {
	name     string
	listener *bridge.Listener
}

// Dispatcher registers bridge listeners as DOM event listeners on a target,
// usually window.
type Dispatcher struct {
	target js.Value
	logger *slog.Logger

	mu    sync.Mutex
	funcs map[registration]js.Func
}

// NewDispatcher creates a dispatcher for target. A listener that panics,
// including a page callback that throws, is logged and does not stop the
// program.
func NewDispatcher(target js.Value, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		target: target,
		logger: logger.With("component", "dispatcher"),
		funcs:  make(map[registration]js.Func),
	}
}

// AddEventListener implements bridge.Dispatcher.
func (d *Dispatcher) AddEventListener(name string, l *bridge.Listener) {
	key := registration{name: name, listener: l}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.funcs[key]; ok {
		return
	}
	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		var ev js.Value
		if len(args) > 0 {
			ev = args[0]
		}
		d.deliver(name, l, ev)
		return nil
	})
	d.funcs[key] = fn
	d.target.Call("addEventListener", name, fn)
}

// RemoveEventListener implements bridge.Dispatcher.
func (d *Dispatcher) RemoveEventListener(name string, l *bridge.Listener) {
	key := registration{name: name, listener: l}

	d.mu.Lock()
	defer d.mu.Unlock()
	fn, ok := d.funcs[key]
	if !ok {
		return
	}
	delete(d.funcs, key)
	d.target.Call("removeEventListener", name, fn)
	fn.Release()
}

func (d *Dispatcher) deliver(name string, l *bridge.Listener, ev js.Value) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event listener panicked", "event", name, "panic", r)
		}
	}()
	l.Handle(Event{Value: ev})
}
