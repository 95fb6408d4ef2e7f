package websocket

import (
	"context"
	"testing"
	"time"

	"votecast/internal/events"
	"votecast/internal/services"
	votecast_errors "votecast/pkg/errors"
	"votecast/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type recordingSink struct {
	ctx context.Context
	in  services.VoteInput
	err error
}

func (s *recordingSink) ApplyVote(ctx context.Context, in services.VoteInput) (events.VoteApplied, error) {
	s.ctx = ctx
	s.in = in
	if s.err != nil {
		return events.VoteApplied{}, s.err
	}
	return events.VoteApplied{PollID: in.PollID}, nil
}

func newVoteMessage(pollID, userID uuid.UUID, option string) []byte {
	return []byte(`{"event":"new-vote","data":{"pollId":"` + pollID.String() +
		`","selectedOption":"` + option + `","userId":"` + userID.String() + `"}}`)
}

func TestHandleNewVoteBroadcasts(t *testing.T) {
	sink := &recordingSink{}
	hub := NewHub(sink, &logger.Logger{Logger: zap.NewNop()})
	hub.SetPublisher(events.NewDispatcher(hub, nil))

	userID := uuid.New()
	c := NewClient(hub, nil, userID)
	hub.Register(c)

	pollID := uuid.New()
	c.handleMessage(newVoteMessage(pollID, userID, "Red"))

	if sink.in.PollID != pollID || sink.in.SelectedOption != "Red" || sink.in.UserID != userID {
		t.Errorf("VoteInput = %+v", sink.in)
	}
	deadline, ok := sink.ctx.Deadline()
	if !ok {
		t.Error("Expected a deadline on the vote context")
	} else if remaining := time.Until(deadline); remaining > voteTimeout {
		t.Errorf("Vote deadline %s out, want at most %s", remaining, voteTimeout)
	}

	got := drain(c)
	if len(got) != 1 {
		t.Fatalf("Channel received %d payloads, want 1", len(got))
	}
	want, _ := events.VoteApplied{PollID: pollID}.MarshalWire()
	if string(got[0]) != string(want) {
		t.Errorf("Broadcast payload = %s, want %s", got[0], want)
	}
}

func TestHandleNewVoteRejectsForeignUser(t *testing.T) {
	sink := &recordingSink{}
	hub := NewHub(sink, &logger.Logger{Logger: zap.NewNop()})
	hub.SetPublisher(events.NewDispatcher(hub, nil))

	c := NewClient(hub, nil, uuid.New())
	hub.Register(c)

	c.handleMessage(newVoteMessage(uuid.New(), uuid.New(), "Red"))

	if sink.in != (services.VoteInput{}) {
		t.Errorf("Vote for a foreign user reached the processor: %+v", sink.in)
	}
	got := drain(c)
	if len(got) != 1 {
		t.Fatalf("Channel received %d payloads, want 1 error frame", len(got))
	}
	want, _ := events.ErrorFrame{Message: "vote user does not match session"}.MarshalWire()
	if string(got[0]) != string(want) {
		t.Errorf("Error frame = %s, want %s", got[0], want)
	}
}

// TestHandleNewVoteReportsRejection verifies a rejected vote comes back as a
// private error frame on the submitting channel, not a broadcast.
func TestHandleNewVoteReportsRejection(t *testing.T) {
	sink := &recordingSink{err: votecast_errors.ErrAlreadyVoted}
	hub := NewHub(sink, &logger.Logger{Logger: zap.NewNop()})
	hub.SetPublisher(events.NewDispatcher(hub, nil))

	userID := uuid.New()
	c := NewClient(hub, nil, userID)
	hub.Register(c)
	other := NewClient(hub, nil, uuid.New())
	hub.Register(other)

	c.handleMessage(newVoteMessage(uuid.New(), userID, "Red"))

	got := drain(c)
	if len(got) != 1 {
		t.Fatalf("Submitting channel received %d payloads, want 1", len(got))
	}
	want, _ := events.ErrorFrame{Message: "you have already voted on this poll"}.MarshalWire()
	if string(got[0]) != string(want) {
		t.Errorf("Error frame = %s, want %s", got[0], want)
	}
	if leaked := drain(other); len(leaked) != 0 {
		t.Errorf("Error frame leaked to another channel: %v", leaked)
	}
}

func TestHandleMessageWithoutLogger(t *testing.T) {
	hub := NewHub(nil, nil)
	c := NewClient(hub, nil, uuid.New())
	hub.Register(c)

	// Malformed and unknown frames are dropped without a logger in place.
	c.handleMessage([]byte("not json"))
	c.handleMessage([]byte(`{"event":"mystery","data":{}}`))

	if got := drain(c); len(got) != 0 {
		t.Errorf("Dropped frames produced %d payloads, want 0", len(got))
	}
}
