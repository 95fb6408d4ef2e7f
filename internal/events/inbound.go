package events

import (
	"encoding/json"
	"fmt"
)

// Inbound is the envelope of a client-to-server channel message.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewVotePayload is the data of a "new-vote" message.
type NewVotePayload struct {
	PollID         string `json:"pollId"`
	SelectedOption string `json:"selectedOption"`
	UserID         string `json:"userId"`
}

// ParseInbound decodes a raw channel frame into its envelope.
func ParseInbound(raw []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return Inbound{}, fmt.Errorf("decode channel message: %w", err)
	}
	return in, nil
}

// ParseNewVote decodes the payload of a "new-vote" envelope.
func ParseNewVote(data json.RawMessage) (NewVotePayload, error) {
	var p NewVotePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return NewVotePayload{}, fmt.Errorf("decode new-vote payload: %w", err)
	}
	return p, nil
}
