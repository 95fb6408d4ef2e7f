package domain

import (
	"time"

	"github.com/google/uuid"
)

// Option is one answer of a poll together with its tally.
type Option struct {
	Answer string `json:"answer"`
	Votes  int    `json:"votes"`
}

// Poll is a question with a fixed, ordered set of options. The option list is
// immutable after creation; only tallies and the voter set change.
type Poll struct {
	ID        uuid.UUID
	Question  string
	Options   []Option
	Voters    []uuid.UUID
	CreatedBy uuid.UUID
	CreatedAt time.Time
}

// HasOption reports whether answer exactly matches one of the poll's options.
func (p Poll) HasOption(answer string) bool {
	for _, o := range p.Options {
		if o.Answer == answer {
			return true
		}
	}
	return false
}
