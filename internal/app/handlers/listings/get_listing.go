package listings

import (
	"context"
	"errors"

	"dwelling/internal/app/dto"
	"dwelling/internal/app/handlers/support"
	"dwelling/internal/app/queries"
	"dwelling/internal/app/uow"
	domainavailability "dwelling/internal/domain/availability"
	domainuser "dwelling/internal/domain/user"
)

const getListingKey = "listings.get"

// GetListingQuery loads a listing together with its owner and taken days.
type GetListingQuery struct {
	ListingID string `validate:"required"`
}

func (q GetListingQuery) Key() string { return getListingKey }

type GetListingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (dto.ListingDetail, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingDetail{}, support.Persistence(err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := support.LoadListing(ctx, unit, q.ListingID)
	if err != nil {
		return dto.ListingDetail{}, err
	}

	owner, err := unit.Users().ByID(ctx, listing.OwnerID)
	if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
		return dto.ListingDetail{}, support.Persistence(err)
	}

	reservations, err := unit.Reservations().ListByListing(ctx, listing.ID)
	if err != nil {
		return dto.ListingDetail{}, support.Persistence(err)
	}
	return dto.MapListingDetail(listing, owner, domainavailability.DisabledDates(reservations)), nil
}

var _ queries.Handler[GetListingQuery, dto.ListingDetail] = (*GetListingHandler)(nil)
