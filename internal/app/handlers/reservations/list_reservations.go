package reservations

import (
	"context"

	"dwelling/internal/app/dto"
	"dwelling/internal/app/handlers/support"
	"dwelling/internal/app/queries"
	"dwelling/internal/app/uow"
)

const listReservationsKey = "reservations.list"

type ListReservationsQuery struct {
	ListingID string `validate:"required"`
}

func (q ListReservationsQuery) Key() string { return listReservationsKey }

type ListReservationsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListReservationsHandler) Handle(ctx context.Context, q ListReservationsQuery) ([]dto.Reservation, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, support.Persistence(err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := support.LoadListing(ctx, unit, q.ListingID)
	if err != nil {
		return nil, err
	}
	items, err := unit.Reservations().ListByListing(ctx, listing.ID)
	if err != nil {
		return nil, support.Persistence(err)
	}
	return dto.MapReservations(items), nil
}

var _ queries.Handler[ListReservationsQuery, []dto.Reservation] = (*ListReservationsHandler)(nil)
