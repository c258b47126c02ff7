package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired   = errors.New("user: id is required")
	ErrNameRequired = errors.New("user: name is required")
	ErrNotFound     = errors.New("user: not found")
)

type ID string

// User is the public profile of an account. Credentials live with the
// identity provider and never reach this service.
type User struct {
	ID        ID
	Name      string
	Email     string
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	Save(ctx context.Context, user *User) error
}

type CreateParams struct {
	ID        ID
	Name      string
	Email     string
	Image     string
	CreatedAt time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	now := params.CreatedAt.UTC()
	if params.CreatedAt.IsZero() {
		now = time.Now().UTC()
	}
	return &User{
		ID:        ID(id),
		Name:      name,
		Email:     strings.ToLower(strings.TrimSpace(params.Email)),
		Image:     strings.TrimSpace(params.Image),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
