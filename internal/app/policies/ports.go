package policies

import (
	"context"
	"io"

	"dwelling/internal/domain/cards"
)

// CardSink forwards a card to the external document store and returns the
// identifier the store assigned.
type CardSink interface {
	Store(ctx context.Context, card cards.Card) (string, error)
}

// ImageStore uploads listing images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, objectKey string, body io.Reader, size int64, contentType string) (string, error)
}
