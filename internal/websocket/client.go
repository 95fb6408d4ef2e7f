package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"votecast/internal/events"
	"votecast/internal/services"
	votecast_errors "votecast/pkg/errors"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	voteTimeout    = 5 * time.Second
)

// Client represents one live-update channel to a browser session.
type Client struct {
	ID     string
	UserID uuid.UUID

	hub  *Hub
	conn *websocket.Conn

	// mu guards send against closure: enqueue runs on the read goroutine and
	// on broadcasting goroutines, while close runs on whichever goroutine
	// unregisters the client.
	mu     sync.Mutex
	closed bool
	send   chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
	}
}

// enqueue hands a payload to the write loop without blocking. Reports false
// when the channel is closed or the buffer is full, which the hub treats as a
// dead channel.
func (c *Client) enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// close shuts the send channel exactly once. Called by the hub on removal.
func (c *Client) close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
}

// sendEvent delivers a private frame to this channel only.
func (c *Client) sendEvent(e events.Event) {
	payload, err := e.MarshalWire()
	if err != nil {
		return
	}
	c.enqueue(payload)
}

// ReadPump consumes inbound frames until the connection drops, then removes
// the channel from the registry.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) && c.hub.logger != nil {
				c.hub.logger.Warnf("client %s unexpected close: %s", c.ID, err)
			}
			break
		}
		c.handleMessage(message)
	}
}

func (c *Client) handleMessage(message []byte) {
	in, err := events.ParseInbound(message)
	if err != nil {
		if c.hub.logger != nil {
			c.hub.logger.Warnf("client %s sent malformed frame: %s", c.ID, err)
		}
		return
	}

	switch in.Event {
	case events.EventNewVote:
		c.handleNewVote(in)
	default:
		if c.hub.logger != nil {
			c.hub.logger.Warnf("client %s sent unknown event %q", c.ID, in.Event)
		}
	}
}

func (c *Client) handleNewVote(in events.Inbound) {
	payload, err := events.ParseNewVote(in.Data)
	if err != nil {
		c.sendEvent(events.ErrorFrame{Message: "malformed vote"})
		return
	}

	pollID, err := uuid.Parse(payload.PollID)
	if err != nil {
		c.sendEvent(events.ErrorFrame{Message: "malformed vote"})
		return
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil || userID != c.UserID {
		// The payload carries a user id for frontend symmetry, but the vote is
		// only accepted for the user the channel authenticated as.
		c.sendEvent(events.ErrorFrame{Message: "vote user does not match session"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), voteTimeout)
	defer cancel()

	evt, err := c.hub.votes.ApplyVote(ctx, services.VoteInput{
		PollID:         pollID,
		SelectedOption: payload.SelectedOption,
		UserID:         userID,
	})
	if err != nil {
		if c.hub.logger != nil {
			c.hub.logger.Infof("vote rejected for client %s: %s", c.ID, err)
		}
		c.sendEvent(events.ErrorFrame{Message: voteErrorMessage(err)})
		return
	}

	c.hub.publisher.Publish(evt)
}

func voteErrorMessage(err error) string {
	switch {
	case errors.Is(err, votecast_errors.ErrAlreadyVoted):
		return "you have already voted on this poll"
	case errors.Is(err, votecast_errors.ErrNotFound):
		return "poll or user not found"
	case errors.Is(err, votecast_errors.ErrInvalidInput):
		return "that option does not exist"
	default:
		return "vote could not be recorded, please try again"
	}
}

// WritePump pushes queued payloads to the connection and keeps it alive with
// pings. Exits when the send channel closes or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				if c.hub.logger != nil {
					c.hub.logger.Warnf("client %s write failed: %s", c.ID, err)
				}
				c.hub.Unregister(c)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.Unregister(c)
				return
			}
		}
	}
}
