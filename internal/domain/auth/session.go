package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"dwelling/internal/domain/user"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrUserRequired    = errors.New("auth: user is required")
	ErrTTLInvalid      = errors.New("auth: ttl must be positive")
	ErrSessionNotFound = errors.New("auth: session not found")
)

// Token is an opaque bearer credential. Surrounding whitespace is not part
// of it.
type Token string

func (t Token) Normalize() Token {
	return Token(strings.TrimSpace(string(t)))
}

type Session struct {
	Token     Token
	UserID    user.ID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Open starts a session for userID lasting ttl from now. A zero now means
// the current time.
func Open(token Token, userID user.ID, now time.Time, ttl time.Duration) (*Session, error) {
	token = token.Normalize()
	switch {
	case token == "":
		return nil, ErrTokenRequired
	case strings.TrimSpace(string(userID)) == "":
		return nil, ErrUserRequired
	case ttl <= 0:
		return nil, ErrTTLInvalid
	}
	if now.IsZero() {
		now = time.Now()
	}
	start := now.UTC()
	return &Session{Token: token, UserID: userID, CreatedAt: start, ExpiresAt: start.Add(ttl)}, nil
}

// Remaining is the lifetime left at the given instant, never negative.
func (s *Session) Remaining(at time.Time) time.Duration {
	if at.IsZero() {
		at = time.Now()
	}
	if left := s.ExpiresAt.Sub(at.UTC()); left > 0 {
		return left
	}
	return 0
}

func (s *Session) Expired(at time.Time) bool {
	return s.Remaining(at) == 0
}

// SessionStore returns ErrSessionNotFound for unknown or expired tokens.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token Token) (*Session, error)
	Delete(ctx context.Context, token Token) error
}
