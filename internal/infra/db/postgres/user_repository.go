package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domainauth "dwelling/internal/domain/auth"
	domainuser "dwelling/internal/domain/user"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT id, name, email, image, created_at, updated_at FROM users WHERE id = $1
	`, string(id))
	var (
		u   domainuser.User
		uid string
	)
	if err := row.Scan(&uid, &u.Name, &u.Email, &u.Image, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainuser.ErrNotFound
		}
		return nil, err
	}
	u.ID = domainuser.ID(uid)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO users (id, name, email, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			image = EXCLUDED.image,
			updated_at = EXCLUDED.updated_at
	`, string(u.ID), u.Name, u.Email, u.Image, u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	return err
}

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id, expires_at = EXCLUDED.expires_at
	`, string(session.Token), string(session.UserID), session.CreatedAt.UTC(), session.ExpiresAt.UTC())
	return err
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = $1 AND expires_at > $2
	`, string(token), time.Now().UTC())
	var tok, uid string
	var created, expires time.Time
	if err := row.Scan(&tok, &uid, &created, &expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, err
	}
	return &domainauth.Session{
		Token:     domainauth.Token(tok),
		UserID:    domainuser.ID(uid),
		CreatedAt: created.UTC(),
		ExpiresAt: expires.UTC(),
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, string(token))
	return err
}

var _ domainuser.Repository = (*UserRepository)(nil)
var _ domainauth.SessionStore = (*SessionStore)(nil)
