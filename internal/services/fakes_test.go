package services

import (
	"context"
	"fmt"
	"sync"

	"votecast/internal/domain"
	votecast_errors "votecast/pkg/errors"

	"github.com/google/uuid"
)

// fakePollRepo is an in-memory PollRepository with the same atomicity contract
// as the Postgres implementation: ApplyVote applies the voter row and the tally
// increment under one lock.
type fakePollRepo struct {
	mu         sync.Mutex
	polls      map[uuid.UUID]*domain.Poll
	failCreate error
}

func newFakePollRepo() *fakePollRepo {
	return &fakePollRepo{polls: make(map[uuid.UUID]*domain.Poll)}
}

func (r *fakePollRepo) Create(ctx context.Context, p *domain.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	cp := clonePoll(*p)
	r.polls[p.ID] = &cp
	return nil
}

func (r *fakePollRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.polls[id]
	if !ok {
		return domain.Poll{}, votecast_errors.ErrNotFound
	}
	return clonePoll(*p), nil
}

func (r *fakePollRepo) List(ctx context.Context) ([]domain.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Poll, 0, len(r.polls))
	for _, p := range r.polls {
		out = append(out, clonePoll(*p))
	}
	return out, nil
}

func (r *fakePollRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.polls)), nil
}

func (r *fakePollRepo) ApplyVote(ctx context.Context, pollID uuid.UUID, answer string, userID uuid.UUID) ([]domain.Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.polls[pollID]
	if !ok {
		return nil, votecast_errors.ErrNotFound
	}
	for _, v := range p.Voters {
		if v == userID {
			return nil, votecast_errors.ErrAlreadyVoted
		}
	}

	idx := -1
	for i, o := range p.Options {
		if o.Answer == answer {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, votecast_errors.ErrNotFound
	}

	p.Options[idx].Votes++
	p.Voters = append(p.Voters, userID)

	out := make([]domain.Option, len(p.Options))
	copy(out, p.Options)
	return out, nil
}

func (r *fakePollRepo) CountVotedBy(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, p := range r.polls {
		for _, v := range p.Voters {
			if v == userID {
				count++
				break
			}
		}
	}
	return count, nil
}

func clonePoll(p domain.Poll) domain.Poll {
	p.Options = append([]domain.Option(nil), p.Options...)
	p.Voters = append([]uuid.UUID(nil), p.Voters...)
	return p
}

type fakeUserRepo struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]domain.User
	byName map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:   make(map[uuid.UUID]domain.User),
		byName: make(map[string]domain.User),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[u.Username]; exists {
		return votecast_errors.ErrAlreadyExists
	}
	r.byID[u.ID] = *u
	r.byName[u.Username] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, votecast_errors.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byName[username]
	if !ok {
		return domain.User{}, votecast_errors.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byID[id]
	return ok, nil
}

func (r *fakeUserRepo) addUser(username string) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := domain.User{ID: uuid.New(), Username: username}
	r.byID[u.ID] = u
	r.byName[u.Username] = u
	return u.ID
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]uuid.UUID
	next     int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]uuid.UUID)}
}

func (s *fakeSessionStore) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	token := fmt.Sprintf("token-%d", s.next)
	s.sessions[token] = userID
	return token, nil
}

func (s *fakeSessionStore) Get(ctx context.Context, token string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sessions[token]
	if !ok {
		return uuid.Nil, votecast_errors.ErrUnauthorized
	}
	return id, nil
}

func (s *fakeSessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
