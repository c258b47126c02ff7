package reservation

import (
	"time"

	"dwelling/internal/domain/listings"
	"dwelling/internal/domain/user"
)

type Created struct {
	ReservationID ID                 `json:"reservation_id"`
	ListingID     listings.ListingID `json:"listing_id"`
	UserID        user.ID            `json:"user_id"`
	StartDate     time.Time          `json:"start_date"`
	EndDate       time.Time          `json:"end_date"`
	TotalPrice    int64              `json:"total_price"`
	Currency      string             `json:"currency"`
	At            time.Time          `json:"at"`
}

func (e Created) EventName() string     { return "reservation.created" }
func (e Created) AggregateID() string   { return string(e.ListingID) }
func (e Created) OccurredAt() time.Time { return e.At }
