// Package eventlog records runtime events delivered through the bridge.
package eventlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lirancohen/portal/internal/bridge"
	"github.com/lirancohen/portal/internal/db"
)

// DefaultKeep is the number of events retained when Config.Keep is unset.
const DefaultKeep = 1000

// Store persists recorded events. *db.DB satisfies it.
type Store interface {
	CreateRuntimeEvent(name, payload string) (*db.RuntimeEvent, error)
	ListRuntimeEvents(name string, limit int) ([]*db.RuntimeEvent, error)
	PruneRuntimeEvents(keep int) (int64, error)
}

// Config configures a Recorder.
type Config struct {
	// Events are the runtime event names to record.
	Events []string
	// Keep bounds the number of stored events.
	Keep int
}

// Recorder listens for runtime events on a bridge and stores the payload each
// listener receives.
type Recorder struct {
	store  Store
	bridge *bridge.Bridge
	keep   int
	logger *slog.Logger

	mu        sync.Mutex
	listeners map[string]*bridge.Listener
}

// New creates a recorder. Call Start to begin recording.
func New(store Store, b *bridge.Bridge, cfg Config, logger *slog.Logger) *Recorder {
	if cfg.Keep <= 0 {
		cfg.Keep = DefaultKeep
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		store:     store,
		bridge:    b,
		keep:      cfg.Keep,
		logger:    logger.With("component", "eventlog"),
		listeners: make(map[string]*bridge.Listener),
	}
	for _, name := range cfg.Events {
		if name == "" {
			continue
		}
		r.listeners[name] = nil
	}
	return r
}

// Start registers a listener for every configured event name.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, l := range r.listeners {
		if l != nil {
			continue
		}
		l = bridge.NewListener(func(data any) {
			r.record(name, data)
		})
		r.listeners[name] = l
		r.bridge.AddEventListener(name, l)
	}
}

// Stop removes the listeners registered by Start.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, l := range r.listeners {
		if l == nil {
			continue
		}
		r.bridge.RemoveEventListener(name, l)
		r.listeners[name] = nil
	}
}

// List returns up to limit recorded events, newest first. An empty name
// lists all of them.
func (r *Recorder) List(name string, limit int) ([]*db.RuntimeEvent, error) {
	events, err := r.store.ListRuntimeEvents(name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (r *Recorder) record(name string, data any) {
	payload, err := encodePayload(data)
	if err != nil {
		r.logger.Warn("dropping unencodable event", "event", name, "error", err)
		return
	}
	if _, err := r.store.CreateRuntimeEvent(name, payload); err != nil {
		r.logger.Error("failed to record event", "event", name, "error", err)
		return
	}
	if _, err := r.store.PruneRuntimeEvents(r.keep); err != nil {
		r.logger.Warn("failed to prune events", "error", err)
	}
	r.logger.Debug("recorded event", "event", name)
}

func encodePayload(data any) (string, error) {
	if data == nil {
		return "", nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
