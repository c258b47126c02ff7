package availability

import (
	"context"

	"dwelling/internal/app/dto"
	"dwelling/internal/app/handlers/support"
	"dwelling/internal/app/queries"
	"dwelling/internal/app/uow"
	domainavailability "dwelling/internal/domain/availability"
)

const getDisabledDatesKey = "availability.disabled_dates"

type GetDisabledDatesQuery struct {
	ListingID string `validate:"required"`
}

func (q GetDisabledDatesQuery) Key() string { return getDisabledDatesKey }

// GetDisabledDatesHandler recomputes the taken days from the listing's
// reservations on every call.
type GetDisabledDatesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetDisabledDatesHandler) Handle(ctx context.Context, q GetDisabledDatesQuery) (dto.DisabledDates, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.DisabledDates{}, support.Persistence(err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := support.LoadListing(ctx, unit, q.ListingID)
	if err != nil {
		return dto.DisabledDates{}, err
	}
	reservations, err := unit.Reservations().ListByListing(ctx, listing.ID)
	if err != nil {
		return dto.DisabledDates{}, support.Persistence(err)
	}
	return dto.MapDisabledDates(string(listing.ID), domainavailability.DisabledDates(reservations)), nil
}

var _ queries.Handler[GetDisabledDatesQuery, dto.DisabledDates] = (*GetDisabledDatesHandler)(nil)
