//go:build js && wasm

// Command portal-wasm exposes the runtime bridge and the session gate to page
// scripts as window.portal.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"syscall/js"

	"github.com/lirancohen/portal/internal/bridge"
	"github.com/lirancohen/portal/internal/bridge/jsbridge"
	"github.com/lirancohen/portal/internal/logging"
	"github.com/lirancohen/portal/internal/session"
)

const defaultGlobal = "MyGameInstance"

func main() {
	logger := logging.New(js.Global().Get("portalLogLevel").String(), os.Stderr)

	global := defaultGlobal
	if cfg := js.Global().Get("portalConfig"); cfg.Truthy() && cfg.Get("global").Truthy() {
		global = cfg.Get("global").String()
	}

	b := bridge.New(jsbridge.Lookup(global), jsbridge.NewDispatcher(js.Global(), logger), logger)
	gate := session.NewGate(remoteValidator{
		endpoint: js.Global().Get("location").Get("origin").String() + "/api/v1/auth/login",
	}, logger)
	sc := &session.Context{
		Storage:  jsbridge.NewLocalStorage(),
		Location: jsbridge.WindowLocation{},
	}
	listeners := jsbridge.NewCallbacks()

	portal := js.Global().Get("Object").New()
	portal.Set("sendMessage", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 2 {
			return false
		}
		var params []any
		if len(args) > 2 {
			params = append(params, args[2])
		}
		return b.SendMessage(args[0].String(), args[1].String(), params...)
	}))
	portal.Set("addEventListener", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 2 || args[1].Type() != js.TypeFunction {
			return nil
		}
		name, fn := args[0].String(), args[1]
		if l, created := listeners.Get(name, fn); created {
			b.AddEventListener(name, l)
		}
		return nil
	}))
	portal.Set("removeEventListener", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 2 {
			return nil
		}
		name := args[0].String()
		if l := listeners.Remove(name, args[1]); l != nil {
			b.RemoveEventListener(name, l)
		}
		return nil
	}))
	portal.Set("isLoaded", js.FuncOf(func(this js.Value, args []js.Value) any {
		return b.IsLoaded()
	}))
	portal.Set("isLoggedIn", js.FuncOf(func(this js.Value, args []js.Value) any {
		return gate.IsLoggedIn(sc)
	}))
	portal.Set("logout", js.FuncOf(func(this js.Value, args []js.Value) any {
		gate.Logout(sc)
		return nil
	}))
	portal.Set("login", js.FuncOf(func(this js.Value, args []js.Value) any {
		cred := session.Credential{}
		if len(args) > 0 {
			cred.Username = args[0].String()
		}
		if len(args) > 1 {
			cred.Password = args[1].String()
		}
		// Validation does network I/O, which must not block the event loop.
		return promise(func() any {
			out := gate.Login(context.Background(), sc, cred)
			data, _ := json.Marshal(out)
			return js.Global().Get("JSON").Call("parse", string(data))
		})
	}))
	js.Global().Set("portal", portal)

	logger.Info("portal bridge ready", "global", global)
	select {}
}

// promise runs fn on a new goroutine and resolves a Promise with its result.
func promise(fn func() any) js.Value {
	var handler js.Func
	handler = js.FuncOf(func(this js.Value, args []js.Value) any {
		resolve := args[0]
		go func() {
			defer handler.Release()
			resolve.Invoke(fn())
		}()
		return nil
	})
	return js.Global().Get("Promise").New(handler)
}

// remoteValidator checks credentials against the portal server's login
// endpoint.
type remoteValidator struct {
	endpoint string
}

func (v remoteValidator) Validate(ctx context.Context, cred session.Credential) (bool, error) {
	body, err := json.Marshal(cred)
	if err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusUnauthorized:
		return false, nil
	default:
		return false, fmt.Errorf("login request: unexpected status %d", resp.StatusCode)
	}
}
