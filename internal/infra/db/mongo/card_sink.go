package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"dwelling/internal/app/policies"
	domaincards "dwelling/internal/domain/cards"
)

// CardSink stores cards as free-form documents and returns the generated
// ObjectID in hex.
type CardSink struct {
	col *mongo.Collection
}

func NewCardSink(db *mongo.Database) *CardSink {
	return &CardSink{col: db.Collection("cards")}
}

func (s *CardSink) Store(ctx context.Context, card domaincards.Card) (string, error) {
	res, err := s.col.InsertOne(ctx, card)
	if err != nil {
		return "", err
	}
	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	default:
		return fmt.Sprint(id), nil
	}
}

var _ policies.CardSink = (*CardSink)(nil)
