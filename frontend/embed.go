// Package frontend provides the embedded page templates and static assets
// served by the portal.
//
// templates/ holds the html/template sources for the login and dashboard
// pages. static/ is served under /static.
package frontend

import "embed"

// Assets contains templates/ and static/.
//
//go:embed templates static
var Assets embed.FS
