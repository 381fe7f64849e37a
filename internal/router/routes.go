// Package router holds the portal's page table and the navigation guard that
// runs before every page transition.
package router

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Page paths.
const (
	RootPath      = "/"
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Route is one entry of the page table.
type Route struct {
	Name string
	// Path is a doublestar pattern matched against the request path.
	Path string
	// Redirect, when set, sends the navigation elsewhere before the guard runs.
	Redirect     string
	RequiresAuth bool
}

// Table is an ordered page table. The first matching route wins.
type Table struct {
	Routes []Route
	// Login is where unauthenticated navigations are sent.
	Login string
	// Home is where authenticated visitors of Login are sent.
	Home string
}

// DefaultTable returns the portal's page table.
func DefaultTable() Table {
	return Table{
		Routes: []Route{
			{Path: RootPath, Redirect: LoginPath},
			{Name: "Login", Path: LoginPath},
			{Name: "Dashboard", Path: DashboardPath, RequiresAuth: true},
		},
		Login: LoginPath,
		Home:  DashboardPath,
	}
}

// Validate checks that every pattern compiles and the guard targets exist.
func (t Table) Validate() error {
	for _, r := range t.Routes {
		if !doublestar.ValidatePattern(r.Path) {
			return fmt.Errorf("route %q: invalid pattern %q", r.Name, r.Path)
		}
	}
	for _, target := range []string{t.Login, t.Home} {
		route, ok := t.Resolve(target)
		if !ok {
			return fmt.Errorf("guard target %q has no route", target)
		}
		if route.Redirect != "" {
			return fmt.Errorf("guard target %q redirects", target)
		}
	}
	return nil
}

// Resolve returns the first route whose pattern matches path.
func (t Table) Resolve(path string) (Route, bool) {
	for _, r := range t.Routes {
		ok, err := doublestar.Match(r.Path, path)
		if err == nil && ok {
			return r, true
		}
	}
	return Route{}, false
}
