package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dwelling/internal/domain/listings"
	"dwelling/internal/domain/shared/daterange"
	"dwelling/internal/domain/shared/events"
	"dwelling/internal/domain/shared/money"
	"dwelling/internal/domain/user"
)

var (
	ErrUnauthenticated    = errors.New("reservation: requester is not authenticated")
	ErrInvalidRange       = errors.New("reservation: start date must be before end date")
	ErrListingNotFound    = errors.New("reservation: listing not found")
	ErrDateConflict       = errors.New("reservation: dates overlap an existing reservation")
	ErrPriceMismatch      = errors.New("reservation: total price does not match the quote")
	ErrPersistenceFailure = errors.New("reservation: persistence failure")

	ErrIDRequired = errors.New("reservation: id is required")

	// ErrStayTooLong matches ErrInvalidRange.
	ErrStayTooLong = fmt.Errorf("%w: stay exceeds %d nights", ErrInvalidRange, MaxNights)
)

// MaxNights bounds a single reservation. Stores expand a reservation into
// one record per night.
const MaxNights = 365

// CheckRange reports why dr cannot be booked, if it cannot.
func CheckRange(dr daterange.DateRange) error {
	if err := dr.Validate(); err != nil {
		return ErrInvalidRange
	}
	if dr.Nights() > MaxNights {
		return ErrStayTooLong
	}
	return nil
}

type ID string

// Reservation is a confirmed booking of a listing for a half-open range of
// calendar days. It is immutable once created.
type Reservation struct {
	ID         ID
	ListingID  listings.ListingID
	UserID     user.ID
	Range      daterange.DateRange
	TotalPrice money.Money
	CreatedAt  time.Time
	events.EventRecorder
}

// Repository is the persistence collaborator. Create must reject an
// overlapping interval for the same listing with ErrDateConflict atomically
// with respect to concurrent Create calls.
type Repository interface {
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Reservation, error)
	Create(ctx context.Context, r *Reservation) error
}

type CreateParams struct {
	ID         ID
	ListingID  listings.ListingID
	UserID     user.ID
	Range      daterange.DateRange
	TotalPrice money.Money
	CreatedAt  time.Time
}

func New(params CreateParams) (*Reservation, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, ErrUnauthenticated
	}
	if err := CheckRange(params.Range); err != nil {
		return nil, err
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	r := &Reservation{
		ID:         params.ID,
		ListingID:  params.ListingID,
		UserID:     params.UserID,
		Range:      params.Range,
		TotalPrice: params.TotalPrice,
		CreatedAt:  now.UTC(),
	}
	r.Record(Created{
		ReservationID: r.ID,
		ListingID:     r.ListingID,
		UserID:        r.UserID,
		StartDate:     r.Range.Start,
		EndDate:       r.Range.End,
		TotalPrice:    r.TotalPrice.Amount,
		Currency:      r.TotalPrice.Currency,
		At:            r.CreatedAt,
	})
	return r, nil
}

// Nights is the number of calendar days the reservation covers.
func (r *Reservation) Nights() int {
	return r.Range.Nights()
}
