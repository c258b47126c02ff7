package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainlistings "dwelling/internal/domain/listings"
	domainreservation "dwelling/internal/domain/reservation"
	"dwelling/internal/domain/shared/daterange"
	"dwelling/internal/domain/shared/money"
	"dwelling/internal/infra/storage/memory"
)

func TestGetDisabledDates(t *testing.T) {
	ctx := context.Background()
	listings := memory.NewListingRepository()
	reservations := memory.NewReservationRepository()
	factory := memory.Factory{ListingsRepo: listings, ReservationsRepo: reservations, UsersRepo: memory.NewUserRepository()}

	listing, err := domainlistings.NewListing(domainlistings.CreateParams{ID: "l1", OwnerID: "o", Title: "Hut", Price: money.Must(50, "RUB")})
	require.NoError(t, err)
	require.NoError(t, listings.Save(ctx, listing))

	h := &GetDisabledDatesHandler{UoWFactory: factory}
	empty, err := h.Handle(ctx, GetDisabledDatesQuery{ListingID: "l1"})
	require.NoError(t, err)
	assert.NotNil(t, empty.Dates)
	assert.Empty(t, empty.Dates)

	ids := []string{"a", "b"}
	for i, r := range []daterange.DateRange{
		daterange.Of(time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)),
		daterange.Of(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)),
	} {
		res, err := domainreservation.New(domainreservation.CreateParams{
			ID: domainreservation.ID(ids[i]), ListingID: "l1", UserID: "g", Range: r, TotalPrice: money.Must(100, "RUB"),
		})
		require.NoError(t, err)
		require.NoError(t, reservations.Create(ctx, res))
	}

	got, err := h.Handle(ctx, GetDisabledDatesQuery{ListingID: "l1"})
	require.NoError(t, err)
	assert.Equal(t, "l1", got.ListingID)
	assert.Equal(t, []string{"2024-01-10", "2024-01-11", "2024-01-12", "2024-01-13"}, got.Dates)

	_, err = h.Handle(ctx, GetDisabledDatesQuery{ListingID: "missing"})
	assert.ErrorIs(t, err, domainreservation.ErrListingNotFound)
}
