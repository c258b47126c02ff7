package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "dwelling/internal/domain/auth"
	domainuser "dwelling/internal/domain/user"
	"dwelling/internal/infra/storage/memory"
)

type fixedTokens struct {
	token string
	err   error
}

func (f fixedTokens) NewToken() (string, error) { return f.token, f.err }

func newService(t *testing.T, now time.Time) (*Service, *memory.UserRepository) {
	t.Helper()
	users := memory.NewUserRepository()
	u, err := domainuser.NewUser(domainuser.CreateParams{ID: "u1", Name: "Ann"})
	require.NoError(t, err)
	require.NoError(t, users.Save(context.Background(), u))
	return &Service{
		Users:      users,
		Sessions:   memory.NewSessionStore(),
		Tokens:     fixedTokens{token: "tok-1"},
		SessionTTL: time.Hour,
		Now:        func() time.Time { return now },
	}, users
}

func TestIssueAndResolveSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, time.Now())

	token, err := svc.IssueSession(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	res, err := svc.ResolveToken(ctx, " tok-1 ")
	require.NoError(t, err)
	assert.Equal(t, domainuser.ID("u1"), res.User.ID)
	assert.Equal(t, domainauth.Token("tok-1"), res.Session.Token)
}

func TestIssueSessionUnknownUser(t *testing.T) {
	svc, _ := newService(t, time.Now())
	_, err := svc.IssueSession(context.Background(), "ghost")
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
}

func TestIssueSessionTokenFailure(t *testing.T) {
	svc, _ := newService(t, time.Now())
	svc.Tokens = fixedTokens{err: errors.New("no entropy")}
	_, err := svc.IssueSession(context.Background(), "u1")
	assert.EqualError(t, err, "no entropy")
}

func TestResolveTokenRejectsBlankAndUnknown(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, time.Now())

	_, err := svc.ResolveToken(ctx, "  ")
	assert.ErrorIs(t, err, domainauth.ErrTokenRequired)

	_, err = svc.ResolveToken(ctx, "missing")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestResolveTokenExpiredSession(t *testing.T) {
	ctx := context.Background()
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newService(t, issued)
	require.NoError(t, svc.SaveSession(ctx, "tok-old", "u1"))

	svc.Now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err := svc.ResolveToken(ctx, "tok-old")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestLogoutRevokesSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, time.Now())
	require.NoError(t, svc.SaveSession(ctx, "tok-1", "u1"))

	require.NoError(t, svc.Logout(ctx, "tok-1"))
	_, err := svc.ResolveToken(ctx, "tok-1")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	assert.NoError(t, svc.Logout(ctx, ""))
}

func TestServiceRequiresStores(t *testing.T) {
	_, err := (&Service{}).ResolveToken(context.Background(), "tok")
	assert.EqualError(t, err, "auth: user repository required")
}
