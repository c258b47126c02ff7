package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwelling/internal/app/uow"
	domainlistings "dwelling/internal/domain/listings"
	domainreservation "dwelling/internal/domain/reservation"
	"dwelling/internal/domain/shared/daterange"
	"dwelling/internal/domain/shared/money"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func sampleReservation() *domainreservation.Reservation {
	return &domainreservation.Reservation{
		ID:         "r1",
		ListingID:  "l1",
		UserID:     "u1",
		Range:      daterange.Of(time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)),
		TotalPrice: money.Must(200, "RUB"),
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestApplyExecutesAllMigrations(t *testing.T) {
	db, mock := newMock(t)
	for range schema {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Apply(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyStopsOnFailure(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("CREATE EXTENSION").WillReturnError(errors.New("permission denied"))

	err := Apply(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 1")
}

func TestReservationCreateInsertsDates(t *testing.T) {
	db, mock := newMock(t)
	res := sampleReservation()
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs("r1", "l1", "u1", "2024-01-12", "2024-01-14", int64(200), "RUB", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewReservationRepository(db).Create(context.Background(), res))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationCreateMapsExclusionViolation(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO reservations").
		WillReturnError(&pq.Error{Code: "23P01", Constraint: "reservations_no_overlap"})

	err := NewReservationRepository(db).Create(context.Background(), sampleReservation())
	assert.ErrorIs(t, err, domainreservation.ErrDateConflict)
}

func TestReservationCreatePassesOtherErrors(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO reservations").WillReturnError(&pq.Error{Code: "23503"})

	err := NewReservationRepository(db).Create(context.Background(), sampleReservation())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domainreservation.ErrDateConflict)
}

func TestReservationListByListing(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "listing_id", "user_id", "start_date", "end_date", "total_price", "currency", "created_at"}).
		AddRow("r1", "l1", "u1", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), int64(500), "RUB", created)
	mock.ExpectQuery("FROM reservations WHERE listing_id").WithArgs("l1").WillReturnRows(rows)

	items, err := NewReservationRepository(db).ListByListing(context.Background(), "l1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Nights())
	assert.Equal(t, money.Must(500, "RUB"), items[0].TotalPrice)
}

func TestListingByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM listings WHERE id").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := NewListingRepository(db).ByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domainlistings.ErrNotFound)
}

func TestListingSaveDetectsStaleVersion(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO listings").WillReturnResult(sqlmock.NewResult(0, 0))

	l := &domainlistings.Listing{ID: "l1", OwnerID: "o", Title: "Hut", Price: money.Must(10, "RUB"), Version: 3}
	err := NewListingRepository(db).Save(context.Background(), l)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)
	assert.Equal(t, int64(3), l.Version)
}

func TestUnitRoutesRepositoriesThroughTransaction(t *testing.T) {
	db, mock := newMock(t)
	factory := Factory{
		DB:               db,
		ListingsRepo:     NewListingRepository(db),
		ReservationsRepo: NewReservationRepository(db),
		UsersRepo:        NewUserRepository(db),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reservations").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	unit, err := factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	ctx := uow.Attach(context.Background(), unit)
	require.NoError(t, unit.Reservations().Create(ctx, sampleReservation()))
	require.NoError(t, unit.Commit(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitRollbackAfterCommitIsNoop(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	unit, err := Factory{DB: db}.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Commit(context.Background()))
	assert.NoError(t, unit.Rollback(context.Background()))
}

func TestOutboxClaimEmpty(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("UPDATE app_outbox SET state = 'CLAIMED'").WillReturnError(sql.ErrNoRows)

	msg, err := NewOutboxStore(db).Claim(context.Background(), "w1")
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestOutboxClaimDecodesHeaders(t *testing.T) {
	db, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"id", "name", "payload", "occurred_at", "aggregate", "headers", "attempts"}).
		AddRow("e1", "reservation.created", []byte(`{}`), time.Now(), "l1", []byte(`{"traceparent":"t"}`), int64(2))
	mock.ExpectQuery("UPDATE app_outbox SET state = 'CLAIMED'").WillReturnRows(rows)

	msg, err := NewOutboxStore(db).Claim(context.Background(), "w1")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "t", msg.Headers["traceparent"])
	assert.Equal(t, 2, msg.Attempts)
}
