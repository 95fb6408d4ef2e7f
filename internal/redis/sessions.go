package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	votecast_errors "votecast/pkg/errors"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Session key pattern: session:{token} -> user id, refreshed on every lookup.

type SessionStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewSessionStore(client *goredis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}
	key := sessionKey(token)
	if err := s.client.Set(ctx, key, userID.String(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (uuid.UUID, error) {
	key := sessionKey(token)
	val, err := s.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return uuid.Nil, votecast_errors.ErrUnauthorized
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("load session: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, votecast_errors.ErrUnauthorized
	}

	// Sliding expiry: an active session stays alive.
	s.client.Expire(ctx, key, s.ttl)
	return userID, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

func sessionKey(token string) string {
	return "session:" + token
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
