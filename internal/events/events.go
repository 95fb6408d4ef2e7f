package events

import (
	"encoding/json"

	"votecast/internal/domain"

	"github.com/google/uuid"
)

// Event type constants for the live-update channel. Inbound messages use the
// "event" discriminator; outbound poll creation keeps the legacy "type" field
// the browser frontend reconciles on.
const (
	EventNewVote    = "new-vote"
	EventVoteUpdate = "voteUpdate"
	EventError      = "error"
	TypeNewPoll     = "newPoll"
)

// Event is a poll-state change ready to be fanned out to every channel.
type Event interface {
	MarshalWire() ([]byte, error)
}

// PollCreated carries a complete snapshot of a newly created poll.
type PollCreated struct {
	Poll domain.Poll
}

type pollSnapshot struct {
	ID       uuid.UUID       `json:"id"`
	Question string          `json:"question"`
	Options  []domain.Option `json:"options"`
}

func (e PollCreated) MarshalWire() ([]byte, error) {
	return json.Marshal(struct {
		Type string       `json:"type"`
		Poll pollSnapshot `json:"poll"`
	}{
		Type: TypeNewPoll,
		Poll: pollSnapshot{
			ID:       e.Poll.ID,
			Question: e.Poll.Question,
			Options:  e.Poll.Options,
		},
	})
}

// VoteApplied carries a poll id and its full updated tally list.
type VoteApplied struct {
	PollID  uuid.UUID
	Options []domain.Option
}

func (e VoteApplied) MarshalWire() ([]byte, error) {
	return json.Marshal(struct {
		Event string `json:"event"`
		Data  struct {
			PollID  uuid.UUID       `json:"pollId"`
			Options []domain.Option `json:"options"`
		} `json:"data"`
	}{
		Event: EventVoteUpdate,
		Data: struct {
			PollID  uuid.UUID       `json:"pollId"`
			Options []domain.Option `json:"options"`
		}{
			PollID:  e.PollID,
			Options: e.Options,
		},
	})
}

// ErrorFrame is sent back on the submitting channel only, never broadcast.
type ErrorFrame struct {
	Message string
}

func (e ErrorFrame) MarshalWire() ([]byte, error) {
	return json.Marshal(struct {
		Event string `json:"event"`
		Data  struct {
			Message string `json:"message"`
		} `json:"data"`
	}{
		Event: EventError,
		Data: struct {
			Message string `json:"message"`
		}{Message: e.Message},
	})
}
