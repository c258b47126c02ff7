package uow

import (
	"context"
	"errors"

	domainlistings "dwelling/internal/domain/listings"
	domainreservation "dwelling/internal/domain/reservation"
	domainuser "dwelling/internal/domain/user"
)

var ErrNoUnit = errors.New("uow: no unit of work in context")

// UnitOfWork hands out repositories bound to one transaction. Handlers get
// it from the context; the Transaction middleware owns Commit and Rollback.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Reservations() domainreservation.Repository
	Users() domainuser.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}

// ContextInjector is implemented by units that carry driver state (a
// session or a transaction handle) through the context.
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}

type unitKey struct{}

// Attach stores unit in ctx, letting the unit inject its own state first.
func Attach(ctx context.Context, unit UnitOfWork) context.Context {
	if injector, ok := unit.(ContextInjector); ok {
		ctx = injector.InjectContext(ctx)
	}
	return context.WithValue(ctx, unitKey{}, unit)
}

// From returns the unit attached to ctx, if any.
func From(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	return unit, ok
}
