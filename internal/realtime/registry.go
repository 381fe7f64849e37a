package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lirancohen/portal/internal/bridge"
)

// Conn is the part of a realtime client the registry needs.
// *centrifuge.Client satisfies it.
type Conn interface {
	ID() string
	Send(data []byte) error
}

// Command is pushed to the page to be applied to the runtime's SendMessage.
type Command struct {
	Type      string `json:"type"`
	Object    string `json:"object"`
	Method    string `json:"method"`
	Parameter any    `json:"parameter"`
}

// CommandSendMessage is the Command type for a runtime send.
const CommandSendMessage = "runtime.send"

// Registry tracks the page connection whose runtime is currently loaded.
// There is at most one: the most recent page to report ready wins.
type Registry struct {
	mu      sync.RWMutex
	current Conn
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger.With("component", "registry")}
}

// Attach makes conn the current runtime handle.
func (r *Registry) Attach(conn Conn) {
	r.mu.Lock()
	previous := r.current
	r.current = conn
	r.mu.Unlock()

	if previous != nil && previous != conn {
		r.logger.Info("runtime handle replaced", "previous", previous.ID(), "client", conn.ID())
		return
	}
	r.logger.Info("runtime attached", "client", conn.ID())
}

// Detach clears the handle if conn is the current one.
func (r *Registry) Detach(conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil || r.current != conn {
		return false
	}
	r.current = nil
	r.logger.Info("runtime detached", "client", conn.ID())
	return true
}

// Lookup resolves the current runtime, or nil when no page has one loaded.
// It satisfies bridge.Lookup.
func (r *Registry) Lookup() bridge.Runtime {
	r.mu.RLock()
	conn := r.current
	r.mu.RUnlock()

	if conn == nil {
		return nil
	}
	return &remoteRuntime{conn: conn}
}

// remoteRuntime forwards sends to the page over its connection.
type remoteRuntime struct {
	conn Conn
}

func (rt *remoteRuntime) SendFunc() bridge.SendFunc {
	return func(objectName, methodName string, parameter any) error {
		data, err := json.Marshal(Command{
			Type:      CommandSendMessage,
			Object:    objectName,
			Method:    methodName,
			Parameter: parameter,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal command: %w", err)
		}
		return rt.conn.Send(data)
	}
}
