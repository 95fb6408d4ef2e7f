package websocket

import (
	"sync"
	"testing"

	"votecast/internal/events"
	"votecast/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newHubForTest() *Hub {
	return NewHub(nil, &logger.Logger{Logger: zap.NewNop()})
}

func newClientForTest(h *Hub) *Client {
	return NewClient(h, nil, uuid.New())
}

func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case msg := <-c.send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := newHubForTest()
	c1 := newClientForTest(hub)
	c2 := newClientForTest(hub)

	hub.Register(c1)
	hub.Register(c2)
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("ClientCount = %d, want 2", got)
	}

	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("ClientCount = %d, want 1", got)
	}

	// Removing an absent channel is a no-op.
	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("ClientCount after duplicate Unregister = %d, want 1", got)
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := newHubForTest()
	clients := make([]*Client, 5)
	for i := range clients {
		clients[i] = newClientForTest(hub)
		hub.Register(clients[i])
	}

	payload := []byte(`{"event":"voteUpdate","data":{}}`)
	hub.Broadcast(payload)

	for i, c := range clients {
		got := drain(c)
		if len(got) != 1 {
			t.Fatalf("Client %d received %d payloads, want 1", i, len(got))
		}
		if string(got[0]) != string(payload) {
			t.Errorf("Client %d received %s, want %s", i, got[0], payload)
		}
	}
}

// TestBroadcastIsolatesFailedChannel verifies that one dead channel does not
// block delivery to the rest, and that the dead channel is removed.
func TestBroadcastIsolatesFailedChannel(t *testing.T) {
	hub := newHubForTest()

	healthy := make([]*Client, 3)
	for i := range healthy {
		healthy[i] = newClientForTest(hub)
		hub.Register(healthy[i])
	}

	stuck := newClientForTest(hub)
	hub.Register(stuck)
	for i := 0; i < cap(stuck.send); i++ {
		stuck.send <- []byte("backlog")
	}

	payload := []byte(`{"type":"newPoll","poll":{}}`)
	hub.Broadcast(payload)

	for i, c := range healthy {
		got := drain(c)
		if len(got) != 1 || string(got[0]) != string(payload) {
			t.Errorf("Healthy client %d did not receive the broadcast: %v", i, got)
		}
	}

	if got := hub.ClientCount(); got != len(healthy) {
		t.Errorf("ClientCount = %d, want %d (stuck channel should be removed)", got, len(healthy))
	}
}

// TestConcurrentMembershipAndBroadcast hammers register/unregister/broadcast
// from many goroutines; run with -race.
func TestConcurrentMembershipAndBroadcast(t *testing.T) {
	hub := newHubForTest()
	payload := []byte(`{"event":"voteUpdate","data":{}}`)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c := newClientForTest(hub)
				hub.Register(c)
				hub.Broadcast(payload)
				hub.Unregister(c)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			hub.Broadcast(payload)
		}
	}()

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount = %d after all channels closed, want 0", got)
	}
}

// TestEnqueueAfterUnregister covers the read goroutine replying on a channel
// the hub just dropped for a saturated buffer: the late sends must report
// failure, not panic on a closed channel.
func TestEnqueueAfterUnregister(t *testing.T) {
	hub := newHubForTest()
	c := newClientForTest(hub)
	hub.Register(c)

	for i := 0; i < cap(c.send); i++ {
		c.send <- []byte("backlog")
	}
	hub.Broadcast([]byte(`{"event":"voteUpdate","data":{}}`))

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("ClientCount = %d, want 0 (saturated channel should be removed)", got)
	}
	if c.enqueue([]byte("late reply")) {
		t.Error("enqueue succeeded on an unregistered channel")
	}
	c.sendEvent(events.ErrorFrame{Message: "late reply"})
}

func TestEnqueueAfterBufferFull(t *testing.T) {
	hub := newHubForTest()
	c := newClientForTest(hub)

	for i := 0; i < cap(c.send); i++ {
		if !c.enqueue([]byte("x")) {
			t.Fatalf("enqueue failed at %d with capacity %d", i, cap(c.send))
		}
	}
	if c.enqueue([]byte("overflow")) {
		t.Error("enqueue succeeded on a full buffer")
	}
}
