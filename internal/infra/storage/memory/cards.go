package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"dwelling/internal/app/policies"
	domaincards "dwelling/internal/domain/cards"
)

// CardSink keeps cards in memory when no document store is configured.
type CardSink struct {
	mu    sync.Mutex
	items map[string]domaincards.Card
}

func NewCardSink() *CardSink {
	return &CardSink{items: make(map[string]domaincards.Card)}
}

func (s *CardSink) Store(ctx context.Context, card domaincards.Card) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = card
	return id, nil
}

func (s *CardSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

var _ policies.CardSink = (*CardSink)(nil)
