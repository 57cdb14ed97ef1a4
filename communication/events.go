// Package communication delivers agent events to websocket clients and NATS.
package communication

import (
	"time"

	"github.com/NethermindEth/aigent-launchpad/core"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"go.uber.org/zap"
)

// Events sends every event to the hub and the broker. Either may be nil.
type Events struct {
	Hub    *Hub
	Broker *Broker
}

func NewEvents(hub *Hub, broker *Broker) *Events {
	return &Events{Hub: hub, Broker: broker}
}

func (e *Events) Emit(eventType string, payload interface{}) {
	if e == nil {
		return
	}
	if e.Hub != nil {
		e.Hub.Broadcast(eventType, payload)
	}
	if e.Broker != nil {
		msg := struct {
			core.Event
			Timestamp int64 `json:"timestamp"`
		}{core.Event{Type: eventType, Payload: payload}, time.Now().Unix()}
		if err := e.Broker.Publish(e.Broker.Subject(eventType), msg); err != nil {
			logger.L().Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
		}
	}
}
