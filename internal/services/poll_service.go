package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"votecast/internal/domain"
	"votecast/internal/events"
	"votecast/internal/repository"
	votecast_errors "votecast/pkg/errors"

	"github.com/google/uuid"
)

// PollService owns the poll mutation path: creation and vote application. It
// mutates the store and returns the event to broadcast; pushing that event to
// the registry is the caller's job, which keeps the service testable without a
// live hub.
type PollService struct {
	polls repository.PollRepository
	users repository.UserRepository
}

func NewPollService(polls repository.PollRepository, users repository.UserRepository) *PollService {
	return &PollService{polls: polls, users: users}
}

type CreatePollInput struct {
	Question  string
	Options   []string
	CreatedBy uuid.UUID
}

type VoteInput struct {
	PollID         uuid.UUID
	SelectedOption string
	UserID         uuid.UUID
}

// Create validates and persists a new poll: fresh id, every tally at zero,
// empty voter set. The option list is fixed from here on.
func (s *PollService) Create(ctx context.Context, in CreatePollInput) (domain.Poll, error) {
	if err := validateCreate(in); err != nil {
		return domain.Poll{}, err
	}

	exists, err := s.users.Exists(ctx, in.CreatedBy)
	if err != nil {
		return domain.Poll{}, err
	}
	if !exists {
		return domain.Poll{}, fmt.Errorf("creator %s: %w", in.CreatedBy, votecast_errors.ErrNotFound)
	}

	poll := domain.Poll{
		ID:        uuid.New(),
		Question:  strings.TrimSpace(in.Question),
		Options:   make([]domain.Option, 0, len(in.Options)),
		Voters:    nil,
		CreatedBy: in.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}
	for _, answer := range in.Options {
		poll.Options = append(poll.Options, domain.Option{Answer: answer, Votes: 0})
	}

	if err := s.polls.Create(ctx, &poll); err != nil {
		return domain.Poll{}, err
	}
	return poll, nil
}

// ApplyVote checks the preconditions in order (poll exists, user exists, option
// matches exactly), then applies both mutations as one transaction. One vote
// per user per poll; a repeat attempt is rejected and changes nothing.
func (s *PollService) ApplyVote(ctx context.Context, in VoteInput) (events.VoteApplied, error) {
	poll, err := s.polls.GetByID(ctx, in.PollID)
	if err != nil {
		return events.VoteApplied{}, fmt.Errorf("poll %s: %w", in.PollID, err)
	}

	exists, err := s.users.Exists(ctx, in.UserID)
	if err != nil {
		return events.VoteApplied{}, err
	}
	if !exists {
		return events.VoteApplied{}, fmt.Errorf("user %s: %w", in.UserID, votecast_errors.ErrNotFound)
	}

	if !poll.HasOption(in.SelectedOption) {
		return events.VoteApplied{}, fmt.Errorf("option %q: %w", in.SelectedOption, votecast_errors.ErrInvalidInput)
	}

	options, err := s.polls.ApplyVote(ctx, in.PollID, in.SelectedOption, in.UserID)
	if err != nil {
		return events.VoteApplied{}, err
	}

	return events.VoteApplied{PollID: in.PollID, Options: options}, nil
}

func (s *PollService) Get(ctx context.Context, id uuid.UUID) (domain.Poll, error) {
	return s.polls.GetByID(ctx, id)
}

func (s *PollService) List(ctx context.Context) ([]domain.Poll, error) {
	return s.polls.List(ctx)
}

func (s *PollService) Count(ctx context.Context) (int64, error) {
	return s.polls.Count(ctx)
}

// VotedCount returns how many polls the user has voted on, for the profile view.
func (s *PollService) VotedCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.polls.CountVotedBy(ctx, userID)
}

func validateCreate(in CreatePollInput) error {
	if strings.TrimSpace(in.Question) == "" {
		return fmt.Errorf("question must not be empty: %w", votecast_errors.ErrInvalidInput)
	}
	if len(in.Options) == 0 {
		return fmt.Errorf("poll needs at least one option: %w", votecast_errors.ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(in.Options))
	for _, answer := range in.Options {
		if strings.TrimSpace(answer) == "" {
			return fmt.Errorf("option answer must not be empty: %w", votecast_errors.ErrInvalidInput)
		}
		if _, dup := seen[answer]; dup {
			return fmt.Errorf("duplicate option %q: %w", answer, votecast_errors.ErrInvalidInput)
		}
		seen[answer] = struct{}{}
	}
	return nil
}
