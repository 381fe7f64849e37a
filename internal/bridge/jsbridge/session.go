//go:build js && wasm

package jsbridge

import (
	"fmt"
	"net/url"
	"syscall/js"
)

// LocalStorage is a session.Storage over window.localStorage.
type LocalStorage struct {
	v js.Value
}

// NewLocalStorage returns the page's localStorage.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{v: js.Global().Get("localStorage")}
}

// GetItem implements session.Storage.
func (s *LocalStorage) GetItem(key string) (string, bool) {
	r := s.v.Call("getItem", key)
	if r.IsNull() || r.IsUndefined() {
		return "", false
	}
	return r.String(), true
}

// SetItem implements session.Storage. Quota and privacy-mode failures are
// returned as errors.
func (s *LocalStorage) SetItem(key, value string) (err error) {
	defer recoverInto(&err, "setItem")
	s.v.Call("setItem", key, value)
	return nil
}

// RemoveItem implements session.Storage.
func (s *LocalStorage) RemoveItem(key string) (err error) {
	defer recoverInto(&err, "removeItem")
	s.v.Call("removeItem", key)
	return nil
}

func recoverInto(err *error, op string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("localStorage.%s: %v", op, r)
	}
}

// WindowLocation is a session.Location over window.location. Replace
// rewrites the address bar with history.replaceState, without navigating.
type WindowLocation struct{}

// URL implements session.Location.
func (WindowLocation) URL() *url.URL {
	href := js.Global().Get("location").Get("href").String()
	u, err := url.Parse(href)
	if err != nil {
		return &url.URL{}
	}
	return u
}

// Replace implements session.Location.
func (WindowLocation) Replace(u *url.URL) {
	js.Global().Get("history").Call("replaceState", js.Null(), "", u.String())
}
