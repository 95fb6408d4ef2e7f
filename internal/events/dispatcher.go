package events

import (
	"votecast/pkg/logger"
)

// Broadcaster delivers one serialized payload to every open channel.
// Implemented by the websocket hub.
type Broadcaster interface {
	Broadcast(payload []byte)
}

// Dispatcher serializes an event once and fans the identical bytes out through
// the registry. Delivery failures stay inside the registry; Publish never
// reports them to the caller.
type Dispatcher struct {
	broadcaster Broadcaster
	logger      *logger.Logger
}

func NewDispatcher(b Broadcaster, l *logger.Logger) *Dispatcher {
	return &Dispatcher{broadcaster: b, logger: l}
}

func (d *Dispatcher) Publish(e Event) {
	payload, err := e.MarshalWire()
	if err != nil {
		if d.logger != nil {
			d.logger.Errorf("marshal broadcast event: %s", err)
		}
		return
	}
	d.broadcaster.Broadcast(payload)
}
