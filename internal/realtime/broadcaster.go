package realtime

import (
	"time"
)

// ChannelRuntime carries runtime status changes to subscribed dashboards.
const ChannelRuntime = "runtime"

// Event types published on ChannelRuntime.
const (
	EventRuntimeAttached = "runtime.attached"
	EventRuntimeDetached = "runtime.detached"
	EventRuntimeEvent    = "runtime.event"
	EventMessageSent     = "runtime.message_sent"
	EventMessageDropped  = "runtime.message_dropped"
)

// Broadcaster publishes runtime status events to the realtime node.
type Broadcaster struct {
	node *Node
}

// NewBroadcaster creates a broadcaster. A nil node drops every event.
func NewBroadcaster(node *Node) *Broadcaster {
	return &Broadcaster{node: node}
}

// Publish sends an event, stamping it with the current time if the payload
// has none.
func (b *Broadcaster) Publish(eventType string, payload map[string]any) {
	if payload == nil {
		payload = make(map[string]any)
	}
	if _, ok := payload["timestamp"]; !ok {
		payload["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if b == nil || b.node == nil {
		return
	}
	if err := b.node.Publish(eventType, payload); err != nil {
		b.node.logger.Warn("publish failed", "type", eventType, "error", err)
	}
}

// PublishSend reports the outcome of a server-initiated SendMessage.
func (b *Broadcaster) PublishSend(objectName, methodName string, parameter any, sent bool) {
	eventType := EventMessageSent
	if !sent {
		eventType = EventMessageDropped
	}
	b.Publish(eventType, map[string]any{
		"object":    objectName,
		"method":    methodName,
		"parameter": parameter,
	})
}
