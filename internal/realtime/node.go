// Package realtime relays between the portal and the runtime page over a
// Centrifuge websocket connection.
//
// The dashboard page connects once its Unity instance has loaded and reports
// ready; from then on that connection is the server's runtime handle. Events
// the runtime raises in the page come back as RPCs and are emitted on the
// bridge's event bus.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/centrifugal/centrifuge"
	"github.com/lirancohen/portal/internal/bridge"
)

// RPC methods the page calls.
const (
	MethodRuntimeReady    = "runtime.ready"
	MethodRuntimeUnloaded = "runtime.unloaded"
	MethodRuntimeEvent    = "runtime.event"
)

// Emitter receives runtime events. *bridge.Bus satisfies it.
type Emitter interface {
	Emit(name string, event any) int
}

// Node wraps a Centrifuge node for real-time messaging
type Node struct {
	node      *centrifuge.Node
	registry  *Registry
	events    Emitter
	broadcast *Broadcaster
	logger    *slog.Logger
}

// Config holds configuration for the realtime node
type Config struct {
	// ClientQueueMaxSize is the max bytes to buffer per client before disconnect (default 2MB)
	ClientQueueMaxSize int
	// ClientChannelLimit is max channels per client (default 128)
	ClientChannelLimit int
	Logger             *slog.Logger
}

// runtimeEvent is the payload of a runtime.event RPC.
type runtimeEvent struct {
	Name   string          `json:"name"`
	Detail json.RawMessage `json:"detail,omitempty"`
}

// NewNode creates a new Centrifuge node with the given configuration
func NewNode(cfg Config, registry *Registry, events Emitter) (*Node, error) {
	if cfg.ClientQueueMaxSize == 0 {
		cfg.ClientQueueMaxSize = 2 * 1024 * 1024 // 2MB
	}
	if cfg.ClientChannelLimit == 0 {
		cfg.ClientChannelLimit = 128
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	logger := cfg.Logger.With("component", "realtime")

	node, err := centrifuge.New(centrifuge.Config{
		LogLevel:           centrifuge.LogLevelInfo,
		LogHandler:         logHandler(logger),
		ClientQueueMaxSize: cfg.ClientQueueMaxSize,
		ClientChannelLimit: cfg.ClientChannelLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create centrifuge node: %w", err)
	}

	n := &Node{
		node:     node,
		registry: registry,
		events:   events,
		logger:   logger,
	}
	n.broadcast = NewBroadcaster(n)
	n.setupHandlers()

	return n, nil
}

// setupHandlers configures the Centrifuge event handlers
func (n *Node) setupHandlers() {
	// Credentials are set by the session middleware before the upgrade
	n.node.OnConnecting(func(ctx context.Context, e centrifuge.ConnectEvent) (centrifuge.ConnectReply, error) {
		cred, ok := centrifuge.GetCredentials(ctx)
		if !ok {
			return centrifuge.ConnectReply{}, centrifuge.ErrorUnauthorized
		}
		return centrifuge.ConnectReply{Credentials: cred}, nil
	})

	n.node.OnConnect(func(client *centrifuge.Client) {
		n.logger.Debug("client connected", "client", client.ID())

		client.OnSubscribe(func(e centrifuge.SubscribeEvent, cb centrifuge.SubscribeCallback) {
			if !canSubscribe(e.Channel) {
				cb(centrifuge.SubscribeReply{}, centrifuge.ErrorPermissionDenied)
				return
			}
			cb(centrifuge.SubscribeReply{}, nil)
		})

		client.OnRPC(func(e centrifuge.RPCEvent, cb centrifuge.RPCCallback) {
			data, err := n.handleRPC(client, e.Method, e.Data)
			if err != nil {
				cb(centrifuge.RPCReply{}, err)
				return
			}
			cb(centrifuge.RPCReply{Data: data}, nil)
		})

		client.OnDisconnect(func(e centrifuge.DisconnectEvent) {
			if n.registry.Detach(client) {
				n.broadcast.Publish(EventRuntimeDetached, map[string]any{"client": client.ID()})
			}
			n.logger.Debug("client disconnected", "client", client.ID(), "reason", e.Reason)
		})
	})
}

// handleRPC serves one page RPC on behalf of conn.
func (n *Node) handleRPC(conn Conn, method string, data []byte) ([]byte, error) {
	switch method {
	case MethodRuntimeReady:
		n.registry.Attach(conn)
		n.broadcast.Publish(EventRuntimeAttached, map[string]any{"client": conn.ID()})
		return json.Marshal(map[string]any{"attached": true})

	case MethodRuntimeUnloaded:
		detached := n.registry.Detach(conn)
		if detached {
			n.broadcast.Publish(EventRuntimeDetached, map[string]any{"client": conn.ID()})
		}
		return json.Marshal(map[string]any{"detached": detached})

	case MethodRuntimeEvent:
		var ev runtimeEvent
		if err := json.Unmarshal(data, &ev); err != nil || ev.Name == "" {
			return nil, centrifuge.ErrorBadRequest
		}
		var detail any
		if len(ev.Detail) > 0 {
			if err := json.Unmarshal(ev.Detail, &detail); err != nil {
				return nil, centrifuge.ErrorBadRequest
			}
		}
		delivered := 0
		if n.events != nil {
			delivered = n.events.Emit(ev.Name, &bridge.Event{Type: ev.Name, Detail: detail})
		}
		n.broadcast.Publish(EventRuntimeEvent, map[string]any{"name": ev.Name, "detail": detail})
		return json.Marshal(map[string]any{"delivered": delivered})

	default:
		return nil, centrifuge.ErrorMethodNotFound
	}
}

// Run starts the Centrifuge node
func (n *Node) Run() error {
	return n.node.Run()
}

// Shutdown gracefully stops the node
func (n *Node) Shutdown(ctx context.Context) error {
	return n.node.Shutdown(ctx)
}

// WebSocketHandler returns an HTTP handler for WebSocket connections
func (n *Node) WebSocketHandler() http.Handler {
	return centrifuge.NewWebsocketHandler(n.node, centrifuge.WebsocketConfig{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	})
}

// Broadcaster returns the publisher for the runtime status channel.
func (n *Node) Broadcaster() *Broadcaster {
	return n.broadcast
}

// Publish sends an event to the runtime status channel.
func (n *Node) Publish(eventType string, payload map[string]any) error {
	payload["type"] = eventType
	if _, ok := payload["timestamp"]; !ok {
		payload["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := n.node.Publish(ChannelRuntime, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", ChannelRuntime, err)
	}
	return nil
}

// canSubscribe reports whether a page may subscribe to channel. Only the
// runtime status channel exists.
func canSubscribe(channel string) bool {
	return channel == ChannelRuntime
}

func logHandler(logger *slog.Logger) centrifuge.LogHandler {
	return func(e centrifuge.LogEntry) {
		level := slog.LevelInfo
		switch e.Level {
		case centrifuge.LogLevelTrace, centrifuge.LogLevelDebug:
			level = slog.LevelDebug
		case centrifuge.LogLevelWarn:
			level = slog.LevelWarn
		case centrifuge.LogLevelError:
			level = slog.LevelError
		}
		args := make([]any, 0, len(e.Fields)*2)
		for k, v := range e.Fields {
			args = append(args, k, v)
		}
		logger.Log(context.Background(), level, e.Message, args...)
	}
}
