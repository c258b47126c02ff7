package pricing

import (
	"errors"
	"time"

	"dwelling/internal/domain/listings"
	"dwelling/internal/domain/shared/daterange"
	"dwelling/internal/domain/shared/money"
)

var (
	ErrCurrencyUnset = errors.New("pricing: currency must be defined")
	ErrListingNil    = errors.New("pricing: listing is required")
)

// Nights is the number of whole calendar days in [start, end), compared at
// day granularity. Degenerate and inverted ranges have zero nights.
func Nights(start, end time.Time) int {
	return daterange.Of(start, end).Nights()
}

// Total prices a stay. A zero-night selection falls back to the nightly base
// price so the default view before a range is chosen is never zero. A total
// beyond int64 fails with money.ErrOverflow.
func Total(start, end time.Time, base money.Money) (money.Money, error) {
	n := Nights(start, end)
	if n == 0 {
		return base, nil
	}
	return base.Multiply(int64(n))
}

type Quote struct {
	Nights  int
	Nightly money.Money
	Total   money.Money
}

// Bookable reports whether the quote describes a stay that can be reserved.
func (q Quote) Bookable() bool {
	return q.Nights > 0
}

// Calculator quotes stays against a listing's current nightly price.
type Calculator struct{}

func NewCalculator() Calculator {
	return Calculator{}
}

func (Calculator) Quote(listing *listings.Listing, start, end time.Time) (Quote, error) {
	if listing == nil {
		return Quote{}, ErrListingNil
	}
	if listing.Price.Currency == "" {
		return Quote{}, ErrCurrencyUnset
	}
	total, err := Total(start, end, listing.Price)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Nights:  Nights(start, end),
		Nightly: listing.Price,
		Total:   total,
	}, nil
}
