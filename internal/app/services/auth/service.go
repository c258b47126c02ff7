package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainauth "dwelling/internal/domain/auth"
	domainuser "dwelling/internal/domain/user"
)

type TokenGenerator interface {
	NewToken() (string, error)
}

// Service resolves bearer tokens into users. Sign-in itself happens at an
// external identity provider that hands out sessions through IssueSession.
type Service struct {
	Users      domainuser.Repository
	Sessions   domainauth.SessionStore
	Tokens     TokenGenerator
	SessionTTL time.Duration
	Logger     *slog.Logger
	Now        func() time.Time
}

type ResolveResult struct {
	User    *domainuser.User
	Session *domainauth.Session
}

func (s *Service) ResolveToken(ctx context.Context, token string) (*ResolveResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainauth.ErrTokenRequired
	}
	session, err := s.Sessions.Get(ctx, domainauth.Token(token))
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.Sessions.Delete(ctx, session.Token)
		return nil, domainauth.ErrSessionNotFound
	}
	user, err := s.Users.ByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			_ = s.Sessions.Delete(ctx, session.Token)
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, err
	}
	return &ResolveResult{User: user, Session: session}, nil
}

// IssueSession creates a session for an existing user and returns its token.
func (s *Service) IssueSession(ctx context.Context, userID domainuser.ID) (string, error) {
	if err := s.ensureDependencies(); err != nil {
		return "", err
	}
	if s.Tokens == nil {
		return "", errors.New("auth: token generator required")
	}
	user, err := s.Users.ByID(ctx, userID)
	if err != nil {
		return "", err
	}
	token, err := s.Tokens.NewToken()
	if err != nil {
		return "", err
	}
	return token, s.SaveSession(ctx, domainauth.Token(token), user.ID)
}

// SaveSession stores a session with a known token, as fixtures do.
func (s *Service) SaveSession(ctx context.Context, token domainauth.Token, userID domainuser.ID) error {
	now := s.now()
	session, err := domainauth.Open(token, userID, now, s.sessionTTL())
	if err != nil {
		return err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Debug("session issued", "user_id", userID, "ttl", session.Remaining(now))
	}
	return nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, domainauth.Token(token))
}

func (s *Service) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return 24 * time.Hour
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Users == nil:
		return errors.New("auth: user repository required")
	case s.Sessions == nil:
		return errors.New("auth: session store required")
	default:
		return nil
	}
}
