package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

const defaultTokenBytes = 32

// SessionTokens mints URL-safe bearer tokens from Bytes of entropy, with an
// optional Prefix so tokens are recognisable in logs and secret scanners.
type SessionTokens struct {
	Bytes   int
	Prefix  string
	Entropy io.Reader
}

func (g SessionTokens) NewToken() (string, error) {
	n := g.Bytes
	if n <= 0 {
		n = defaultTokenBytes
	}
	src := g.Entropy
	if src == nil {
		src = rand.Reader
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(src, buf); err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}
	return g.Prefix + base64.RawURLEncoding.EncodeToString(buf), nil
}
