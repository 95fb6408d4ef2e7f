package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"votecast/config"
	"votecast/internal/domain"
	"votecast/internal/repository"
	votecast_errors "votecast/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionStore keeps opaque session tokens with a TTL. Implemented by the
// Redis-backed store; faked in tests.
type SessionStore interface {
	Create(ctx context.Context, userID uuid.UUID) (string, error)
	Get(ctx context.Context, token string) (uuid.UUID, error)
	Delete(ctx context.Context, token string) error
}

type AuthService struct {
	users        repository.UserRepository
	sessions     SessionStore
	ticketSecret []byte
	ticketTTL    time.Duration
	bcryptCost   int
}

func NewAuthService(users repository.UserRepository, sessions SessionStore, cfg *config.Config) *AuthService {
	return &AuthService{
		users:        users,
		sessions:     sessions,
		ticketSecret: []byte(cfg.TicketSecret),
		ticketTTL:    time.Duration(cfg.TicketExpiryMin) * time.Minute,
		bcryptCost:   cfg.BcryptCost,
	}
}

type AuthResponse struct {
	Token    string
	UserID   uuid.UUID
	Username string
}

type ticketClaims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, username, password string) (AuthResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return AuthResponse{}, fmt.Errorf("username and password are required: %w", votecast_errors.ErrInvalidInput)
	}
	if len(password) < 8 {
		return AuthResponse{}, fmt.Errorf("password too short: %w", votecast_errors.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return AuthResponse{}, err
	}

	u := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return AuthResponse{}, err
	}

	token, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{Token: token, UserID: u.ID, Username: u.Username}, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (AuthResponse, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, votecast_errors.ErrNotFound) {
			return AuthResponse{}, votecast_errors.ErrUnauthorized
		}
		return AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return AuthResponse{}, votecast_errors.ErrUnauthorized
	}

	token, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{Token: token, UserID: u.ID, Username: u.Username}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession resolves an opaque session token to a user id.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, votecast_errors.ErrUnauthorized
	}
	return s.sessions.Get(ctx, token)
}

func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// IssueWSTicket signs a short-lived ticket for the live-update channel. Cookie
// auth does not survive every websocket proxy setup, so the browser fetches a
// ticket over HTTP and passes it as a query parameter on connect.
func (s *AuthService) IssueWSTicket(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := ticketClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ticketTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.ticketSecret)
}

// ParseWSTicket validates a connect ticket and returns the user id it names.
func (s *AuthService) ParseWSTicket(token string) (uuid.UUID, error) {
	var claims ticketClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.ticketSecret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, votecast_errors.ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, votecast_errors.ErrUnauthorized
	}
	return userID, nil
}
