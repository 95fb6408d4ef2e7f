package websocket

import (
	"context"
	"sync"

	"votecast/internal/events"
	"votecast/internal/services"
	"votecast/pkg/logger"
)

// VoteSink applies one vote and returns the event to broadcast. Implemented by
// the poll service.
type VoteSink interface {
	ApplyVote(ctx context.Context, in services.VoteInput) (events.VoteApplied, error)
}

// Hub is the connection registry: the set of currently-open live-update
// channels. Membership mutations and the iteration done by Broadcast are
// guarded by one RWMutex, so connects and disconnects from other goroutines
// cannot race a fan-out in progress.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	votes     VoteSink
	publisher *events.Dispatcher
	logger    *logger.Logger
}

func NewHub(votes VoteSink, l *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		votes:   votes,
		logger:  l,
	}
}

// SetPublisher wires the dispatcher after construction; the dispatcher itself
// broadcasts through this hub.
func (h *Hub) SetPublisher(p *events.Dispatcher) {
	h.publisher = p
}

// Register adds a channel to the registry. Succeeds unconditionally.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	if h.logger != nil {
		h.logger.Infof("client %s connected (%d open)", client.ID, h.ClientCount())
	}
}

// Unregister removes a channel. No-op if the channel is absent; the client's
// send channel is closed exactly once, on removal.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	client.close()

	if h.logger != nil {
		h.logger.Infof("client %s disconnected (%d open)", client.ID, h.ClientCount())
	}
}

// Broadcast delivers the same payload to every registered channel,
// best-effort. A channel that cannot accept the payload is treated as
// disconnected: it is logged and removed, and delivery to the remaining
// channels is unaffected. Never returns an error to the caller.
func (h *Hub) Broadcast(payload []byte) {
	var failed []*Client

	h.mu.RLock()
	for client := range h.clients {
		if !client.enqueue(payload) {
			failed = append(failed, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range failed {
		if h.logger != nil {
			h.logger.Warnf("client %s send buffer full, dropping connection", client.ID)
		}
		h.Unregister(client)
	}
}

// ClientCount returns the number of open channels.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
