package postgres

import (
	"context"
	"database/sql"
	"errors"

	"dwelling/internal/app/uow"
	domainlistings "dwelling/internal/domain/listings"
	domainreservation "dwelling/internal/domain/reservation"
	domainuser "dwelling/internal/domain/user"
)

var ErrUnitOfWorkNotConfigured = errors.New("postgres: unit of work factory missing database")

// Factory opens one *sql.Tx per unit. Repositories find it through the
// context the unit injects.
type Factory struct {
	DB *sql.DB

	ListingsRepo     domainlistings.Repository
	ReservationsRepo domainreservation.Repository
	UsersRepo        domainuser.Repository
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	tx, err := f.DB.BeginTx(ctx, &sql.TxOptions{ReadOnly: opts.ReadOnly, Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	return &Unit{
		tx:           tx,
		listings:     f.ListingsRepo,
		reservations: f.ReservationsRepo,
		users:        f.UsersRepo,
	}, nil
}

type Unit struct {
	tx *sql.Tx

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
	err := u.tx.Commit()
	if hasCode(err, exclusionViolation, serializationFailure) {
		return domainreservation.ErrDateConflict
	}
	return err
}

func (u *Unit) Rollback(ctx context.Context) error {
	err := u.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return contextWithTx(ctx, u.tx)
}

var _ uow.ContextInjector = (*Unit)(nil)
