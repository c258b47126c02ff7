package memory

import (
	"context"
	"errors"

	"dwelling/internal/app/uow"
	domainlistings "dwelling/internal/domain/listings"
	domainreservation "dwelling/internal/domain/reservation"
	domainuser "dwelling/internal/domain/user"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ListingsRepo     domainlistings.Repository
	ReservationsRepo domainreservation.Repository
	UsersRepo        domainuser.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. Writes apply immediately;
// the overlap guarantee comes from ReservationRepository.Create.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingsRepo == nil || f.ReservationsRepo == nil || f.UsersRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		listings:     f.ListingsRepo,
		reservations: f.ReservationsRepo,
		users:        f.UsersRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	listings     domainlistings.Repository
	reservations domainreservation.Repository
	users        domainuser.Repository
}

func (u *Unit) Listings() domainlistings.Repository {
	return u.listings
}

func (u *Unit) Reservations() domainreservation.Repository {
	return u.reservations
}

func (u *Unit) Users() domainuser.Repository {
	return u.users
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
