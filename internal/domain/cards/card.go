package cards

import (
	"errors"
	"strings"
)

var (
	ErrUIDRequired  = errors.New("cards: uid is required")
	ErrNameRequired = errors.New("cards: name is required")
)

// Card is a free-form contact card forwarded to a document store.
type Card struct {
	UID     string `json:"uid" bson:"uid"`
	Name    string `json:"name" bson:"name"`
	Address string `json:"address" bson:"address"`
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.UID) == "" {
		return ErrUIDRequired
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	return nil
}
