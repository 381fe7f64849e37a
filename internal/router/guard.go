package router

// Decision is the guard's verdict for one navigation.
// An empty Redirect means the navigation proceeds unmodified.
type Decision struct {
	Redirect string
}

// Allowed reports whether the navigation proceeds.
func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

// Guard decides a navigation to the route to, given the current session state.
// It has no side effects.
func (t Table) Guard(to Route, loggedIn bool) Decision {
	switch {
	case to.RequiresAuth && !loggedIn:
		return Decision{Redirect: t.Login}
	case to.Path == t.Login && loggedIn:
		return Decision{Redirect: t.Home}
	default:
		return Decision{}
	}
}
