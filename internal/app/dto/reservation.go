package dto

import (
	"time"

	domainreservation "dwelling/internal/domain/reservation"
)

type Reservation struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listing_id"`
	UserID     string    `json:"user_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Nights     int       `json:"nights"`
	TotalPrice MoneyDTO  `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}

func MapReservation(r *domainreservation.Reservation) Reservation {
	if r == nil {
		return Reservation{}
	}
	return Reservation{
		ID:         string(r.ID),
		ListingID:  string(r.ListingID),
		UserID:     string(r.UserID),
		StartDate:  r.Range.Start.Format(time.DateOnly),
		EndDate:    r.Range.End.Format(time.DateOnly),
		Nights:     r.Nights(),
		TotalPrice: MapMoney(r.TotalPrice),
		CreatedAt:  r.CreatedAt,
	}
}

func MapReservations(items []*domainreservation.Reservation) []Reservation {
	out := make([]Reservation, 0, len(items))
	for _, r := range items {
		out = append(out, MapReservation(r))
	}
	return out
}
