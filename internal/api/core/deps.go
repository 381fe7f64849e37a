// Package core contains shared types and dependencies for API handlers.
package core

import (
	"log/slog"

	"github.com/lirancohen/portal/internal/bridge"
	"github.com/lirancohen/portal/internal/config"
	"github.com/lirancohen/portal/internal/db"
	"github.com/lirancohen/portal/internal/eventlog"
	"github.com/lirancohen/portal/internal/realtime"
	"github.com/lirancohen/portal/internal/router"
	"github.com/lirancohen/portal/internal/session"
	"github.com/lirancohen/portal/internal/storage"
)

// Deps holds all dependencies needed by API handlers.
// This struct is passed to handler constructors to provide access to services.
type Deps struct {
	// Core services
	DB      *db.DB
	Gate    *session.Gate
	Storage storage.Provider
	Routes  router.Table
	Bridge  *bridge.Bridge
	Events  *eventlog.Recorder

	Realtime    *realtime.Node        // Centrifuge realtime node
	Broadcaster *realtime.Broadcaster // Publishes runtime status to dashboards

	Runtime config.RuntimeConfig
	Logger  *slog.Logger
	Version string
}
