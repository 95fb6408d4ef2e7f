package repository

import (
	"context"

	"votecast/internal/domain"

	"github.com/google/uuid"
)

type PollRepository interface {
	Create(ctx context.Context, p *domain.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Poll, error)
	List(ctx context.Context) ([]domain.Poll, error)
	Count(ctx context.Context) (int64, error)

	// ApplyVote records one vote for answer on the poll as a single transaction:
	// the voter row and the tally increment become visible together. Returns the
	// updated option list in creation order.
	ApplyVote(ctx context.Context, pollID uuid.UUID, answer string, userID uuid.UUID) ([]domain.Option, error)

	CountVotedBy(ctx context.Context, userID uuid.UUID) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
