package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"dwelling/internal/app/uow"
	domainlistings "dwelling/internal/domain/listings"
	domainreservation "dwelling/internal/domain/reservation"
	domainuser "dwelling/internal/domain/user"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
// Repositories pick the session up from the context injected by the unit.
type Factory struct {
	DB *mongo.Database

	ListingsRepo     domainlistings.Repository
	ReservationsRepo domainreservation.Repository
	UsersRepo        domainuser.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(readconcern.Majority())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:      session,
		listings:     f.ListingsRepo,
		reservations: f.ReservationsRepo,
		users:        f.UsersRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

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

// Commit maps a write conflict between two transactions claiming the same
// night to reservation.ErrDateConflict.
func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if err := u.session.CommitTransaction(ctx); err != nil {
		if isClaimConflict(err) {
			return domainreservation.ErrDateConflict
		}
		return err
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.ContextInjector = (*Unit)(nil)
