package cards

import (
	"context"
	"errors"
	"fmt"

	"dwelling/internal/app/commands"
	"dwelling/internal/app/policies"
	domaincards "dwelling/internal/domain/cards"
)

const createCardKey = "cards.create"

var ErrSinkUnavailable = errors.New("cards: document sink unavailable")

type CreateCardCommand struct {
	UID     string `validate:"required"`
	Name    string `validate:"required"`
	Address string
}

func (c CreateCardCommand) Key() string { return createCardKey }

type CreateCardResult struct {
	ID string `json:"id"`
}

// CreateCardHandler forwards the card to the document sink as-is.
type CreateCardHandler struct {
	Sink policies.CardSink
}

func (h *CreateCardHandler) Handle(ctx context.Context, cmd CreateCardCommand) (*CreateCardResult, error) {
	if h.Sink == nil {
		return nil, ErrSinkUnavailable
	}
	card := domaincards.Card{UID: cmd.UID, Name: cmd.Name, Address: cmd.Address}
	if err := card.Validate(); err != nil {
		return nil, err
	}
	id, err := h.Sink.Store(ctx, card)
	if err != nil {
		return nil, fmt.Errorf("store card: %w", err)
	}
	return &CreateCardResult{ID: id}, nil
}

var _ commands.Handler[CreateCardCommand, *CreateCardResult] = (*CreateCardHandler)(nil)
