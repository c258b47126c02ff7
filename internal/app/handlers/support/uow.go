package support

import (
	"context"
	"errors"
	"fmt"

	"dwelling/internal/app/uow"
	domainlistings "dwelling/internal/domain/listings"
	domainreservation "dwelling/internal/domain/reservation"
)

// BeginReadOnlyUnit reuses the unit already in ctx or starts a read-only one.
// The returned cleanup is nil when the unit was reused.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	unit, ok := uow.From(ctx)
	if ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrNoUnit
	}
	newUnit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.Attach(ctx, newUnit)
	cleanup := func() {
		_ = newUnit.Rollback(execCtx)
	}
	return newUnit, execCtx, cleanup, nil
}

// LoadListing resolves a listing, translating a miss into
// reservation.ErrListingNotFound and any other fault into a persistence
// failure.
func LoadListing(ctx context.Context, unit uow.UnitOfWork, id string) (*domainlistings.Listing, error) {
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(id))
	if err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			return nil, domainreservation.ErrListingNotFound
		}
		return nil, Persistence(err)
	}
	return listing, nil
}

// Persistence wraps a lower-layer fault so callers can match both the class
// and the cause.
func Persistence(err error) error {
	if err == nil || errors.Is(err, domainreservation.ErrPersistenceFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", domainreservation.ErrPersistenceFailure, err)
}
