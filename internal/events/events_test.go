package events

import (
	"testing"

	"votecast/internal/domain"

	"github.com/google/uuid"
)

func TestPollCreatedWireFormat(t *testing.T) {
	poll := domain.Poll{
		ID:       uuid.MustParse("6f1c7a1e-0000-4000-8000-000000000001"),
		Question: "Color?",
		Options: []domain.Option{
			{Answer: "Red", Votes: 0},
			{Answer: "Blue", Votes: 0},
		},
	}

	payload, err := PollCreated{Poll: poll}.MarshalWire()
	if err != nil {
		t.Fatalf("MarshalWire() failed: %v", err)
	}

	want := `{"type":"newPoll","poll":{"id":"6f1c7a1e-0000-4000-8000-000000000001","question":"Color?","options":[{"answer":"Red","votes":0},{"answer":"Blue","votes":0}]}}`
	if string(payload) != want {
		t.Errorf("PollCreated wire payload:\n got %s\nwant %s", payload, want)
	}
}

func TestVoteAppliedWireFormat(t *testing.T) {
	evt := VoteApplied{
		PollID: uuid.MustParse("6f1c7a1e-0000-4000-8000-000000000002"),
		Options: []domain.Option{
			{Answer: "Red", Votes: 1},
			{Answer: "Blue", Votes: 0},
		},
	}

	payload, err := evt.MarshalWire()
	if err != nil {
		t.Fatalf("MarshalWire() failed: %v", err)
	}

	want := `{"event":"voteUpdate","data":{"pollId":"6f1c7a1e-0000-4000-8000-000000000002","options":[{"answer":"Red","votes":1},{"answer":"Blue","votes":0}]}}`
	if string(payload) != want {
		t.Errorf("VoteApplied wire payload:\n got %s\nwant %s", payload, want)
	}
}

func TestErrorFrameWireFormat(t *testing.T) {
	payload, err := ErrorFrame{Message: "you have already voted on this poll"}.MarshalWire()
	if err != nil {
		t.Fatalf("MarshalWire() failed: %v", err)
	}

	want := `{"event":"error","data":{"message":"you have already voted on this poll"}}`
	if string(payload) != want {
		t.Errorf("ErrorFrame wire payload:\n got %s\nwant %s", payload, want)
	}
}

func TestParseNewVote(t *testing.T) {
	raw := []byte(`{"event":"new-vote","data":{"pollId":"p1","selectedOption":"Red","userId":"u1"}}`)

	in, err := ParseInbound(raw)
	if err != nil {
		t.Fatalf("ParseInbound() failed: %v", err)
	}
	if in.Event != EventNewVote {
		t.Errorf("Event = %q, want %q", in.Event, EventNewVote)
	}

	payload, err := ParseNewVote(in.Data)
	if err != nil {
		t.Fatalf("ParseNewVote() failed: %v", err)
	}
	if payload.PollID != "p1" || payload.SelectedOption != "Red" || payload.UserID != "u1" {
		t.Errorf("Payload = %+v", payload)
	}
}

func TestParseInboundRejectsGarbage(t *testing.T) {
	if _, err := ParseInbound([]byte("not json")); err == nil {
		t.Error("ParseInbound accepted garbage")
	}
	if _, err := ParseNewVote([]byte(`[1,2]`)); err == nil {
		t.Error("ParseNewVote accepted garbage")
	}
}

type captureBroadcaster struct {
	payloads [][]byte
}

func (c *captureBroadcaster) Broadcast(payload []byte) {
	c.payloads = append(c.payloads, payload)
}

func TestDispatcherSerializesOnce(t *testing.T) {
	sink := &captureBroadcaster{}
	d := NewDispatcher(sink, nil)

	evt := VoteApplied{
		PollID:  uuid.MustParse("6f1c7a1e-0000-4000-8000-000000000003"),
		Options: []domain.Option{{Answer: "Yes", Votes: 2}},
	}
	d.Publish(evt)

	if len(sink.payloads) != 1 {
		t.Fatalf("Broadcast called %d times, want 1", len(sink.payloads))
	}
	want, _ := evt.MarshalWire()
	if string(sink.payloads[0]) != string(want) {
		t.Errorf("Broadcast payload = %s, want %s", sink.payloads[0], want)
	}
}
