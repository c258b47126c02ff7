package listings

import (
	"context"
	"time"

	"dwelling/internal/app/dto"
	"dwelling/internal/app/handlers/support"
	"dwelling/internal/app/queries"
	"dwelling/internal/app/uow"
	domainpricing "dwelling/internal/domain/pricing"
	"dwelling/internal/domain/shared/daterange"
)

const quoteStayKey = "listings.quote"

// QuoteStayQuery prices [StartDate, EndDate) at the listing's current rate.
// Empty and inverted ranges quote the nightly price.
type QuoteStayQuery struct {
	ListingID string `validate:"required"`
	StartDate time.Time
	EndDate   time.Time
}

func (q QuoteStayQuery) Key() string { return quoteStayKey }

type QuoteStayHandler struct {
	UoWFactory uow.UoWFactory
	Pricing    domainpricing.Calculator
}

func (h *QuoteStayHandler) Handle(ctx context.Context, q QuoteStayQuery) (dto.Quote, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Quote{}, support.Persistence(err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := support.LoadListing(ctx, unit, q.ListingID)
	if err != nil {
		return dto.Quote{}, err
	}
	quote, err := h.Pricing.Quote(listing, q.StartDate, q.EndDate)
	if err != nil {
		return dto.Quote{}, err
	}
	return dto.MapQuote(string(listing.ID), daterange.Day(q.StartDate), daterange.Day(q.EndDate), quote), nil
}

var _ queries.Handler[QuoteStayQuery, dto.Quote] = (*QuoteStayHandler)(nil)
