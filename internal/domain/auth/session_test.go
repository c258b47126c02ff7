package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenValidatesInput(t *testing.T) {
	now := time.Now()

	_, err := Open("  ", "u1", now, time.Hour)
	assert.ErrorIs(t, err, ErrTokenRequired)

	_, err = Open("t", "", now, time.Hour)
	assert.ErrorIs(t, err, ErrUserRequired)

	_, err = Open("t", "u1", now, 0)
	assert.ErrorIs(t, err, ErrTTLInvalid)
}

func TestSessionExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s, err := Open(" tok ", "u1", now, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, Token("tok"), s.Token)
	assert.Equal(t, time.Minute, s.Remaining(now.Add(59*time.Minute)))
	assert.False(t, s.Expired(now.Add(59*time.Minute)))
	assert.True(t, s.Expired(now.Add(time.Hour)))
	assert.Zero(t, s.Remaining(now.Add(2*time.Hour)))
}
