package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwelling/internal/app/commands"
	"dwelling/internal/app/outbox"
	"dwelling/internal/app/uow"
	domainlistings "dwelling/internal/domain/listings"
	domainreservation "dwelling/internal/domain/reservation"
	domainuser "dwelling/internal/domain/user"
)

var errDenied = errors.New("denied")

type bookCommand struct {
	UserID string
	Name   string `validate:"required"`
	Idem   string
}

func (bookCommand) Key() string              { return "test.book" }
func (c bookCommand) Requester() string      { return c.UserID }
func (c bookCommand) IdempotencyKey() string { return c.Idem }
func (bookCommand) ResultPrototype() any     { return new(bookResult) }

type bookResult struct {
	ID string `json:"id"`
}

type countingBus struct {
	calls int
	err   error
}

func (b *countingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return &bookResult{ID: "r1"}, nil
}

type mapStore struct {
	mu    sync.Mutex
	items map[string]IdempotencyRecord
}

func (s *mapStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *mapStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items == nil {
		s.items = map[string]IdempotencyRecord{}
	}
	s.items[rec.Key] = rec
	return nil
}

type unsavableStore struct{ saves int }

func (s *unsavableStore) Get(context.Context, string) (IdempotencyRecord, bool, error) {
	return IdempotencyRecord{}, false, nil
}

func (s *unsavableStore) Save(context.Context, IdempotencyRecord) error {
	s.saves++
	return errors.New("store offline")
}

type fakeUnit struct {
	commits, rollbacks int
	commitErr          error
	rollbackErr        error
}

func (u *fakeUnit) Listings() domainlistings.Repository        { return nil }
func (u *fakeUnit) Reservations() domainreservation.Repository { return nil }
func (u *fakeUnit) Users() domainuser.Repository               { return nil }
func (u *fakeUnit) Commit(context.Context) error {
	u.commits++
	return u.commitErr
}
func (u *fakeUnit) Rollback(context.Context) error {
	u.rollbacks++
	return u.rollbackErr
}

type fakeFactory struct {
	unit   *fakeUnit
	begins int
}

func (f *fakeFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	f.begins++
	return f.unit, nil
}

type recordingOutbox struct{ flushes int }

func (o *recordingOutbox) Add(context.Context, outbox.EventRecord) error { return nil }
func (o *recordingOutbox) Flush(context.Context) error {
	o.flushes++
	return nil
}

func TestAuthorizationRejectsMissingRequester(t *testing.T) {
	base := &countingBus{}
	bus := ChainCommands(base, Authorization(RequireRequester(errDenied)))

	_, err := bus.Dispatch(context.Background(), bookCommand{Name: "x"})
	assert.ErrorIs(t, err, errDenied)
	assert.Zero(t, base.calls)

	_, err = bus.Dispatch(context.Background(), bookCommand{UserID: "u1", Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, base.calls)
}

func TestValidationWrapsFieldErrors(t *testing.T) {
	base := &countingBus{}
	bus := ChainCommands(base, Validation(NewStructValidator()))

	_, err := bus.Dispatch(context.Background(), bookCommand{UserID: "u1"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, base.calls)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []FieldError{{Field: "Name", Rule: "required"}}, verr.Fields)
	assert.Contains(t, err.Error(), "Name (required)")
}

func TestIdempotencyReplaysSuccess(t *testing.T) {
	base := &countingBus{}
	bus := ChainCommands(base, Idempotency(&mapStore{}, nil, nil))
	cmd := bookCommand{UserID: "u1", Name: "x", Idem: "k1"}

	first, err := bus.Dispatch(context.Background(), cmd)
	require.NoError(t, err)
	second, err := bus.Dispatch(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, 1, base.calls)
	assert.Equal(t, first, second)
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	base := &countingBus{err: errDenied}
	bus := ChainCommands(base, Idempotency(&mapStore{}, nil, nil))
	cmd := bookCommand{UserID: "u1", Name: "x", Idem: "k1"}

	_, err := bus.Dispatch(context.Background(), cmd)
	assert.ErrorIs(t, err, errDenied)
	_, err = bus.Dispatch(context.Background(), cmd)
	assert.ErrorIs(t, err, errDenied)
	assert.Equal(t, 2, base.calls)
}

func TestIdempotencyRejectsKeyReuseWithDifferentCommand(t *testing.T) {
	base := &countingBus{}
	bus := ChainCommands(base, Idempotency(&mapStore{}, nil, nil))

	_, err := bus.Dispatch(context.Background(), bookCommand{UserID: "u1", Name: "x", Idem: "k1"})
	require.NoError(t, err)
	_, err = bus.Dispatch(context.Background(), bookCommand{UserID: "u1", Name: "y", Idem: "k1"})

	assert.ErrorIs(t, err, ErrIdempotencyKeyReused)
	assert.Equal(t, 1, base.calls)
}

func TestIdempotencyReturnsResultWhenSaveFails(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	base := &countingBus{}
	store := &unsavableStore{}
	bus := ChainCommands(base, Idempotency(store, nil, logger))

	res, err := bus.Dispatch(context.Background(), bookCommand{UserID: "u1", Name: "x", Idem: "k1"})
	require.NoError(t, err)
	assert.Equal(t, &bookResult{ID: "r1"}, res)
	assert.Equal(t, 1, base.calls)
	assert.Equal(t, 1, store.saves)
	assert.Contains(t, logs.String(), "idempotency result not stored")
	assert.Contains(t, logs.String(), "store offline")
}

func TestTransactionCommitsOnSuccessAndRollsBackOnError(t *testing.T) {
	unit := &fakeUnit{}
	factory := &fakeFactory{unit: unit}

	ok := ChainCommands(&countingBus{}, Transaction(factory, nil))
	_, err := ok.Dispatch(context.Background(), bookCommand{})
	require.NoError(t, err)
	assert.Equal(t, 1, unit.commits)
	assert.Zero(t, unit.rollbacks)

	failing := ChainCommands(&countingBus{err: errDenied}, Transaction(factory, nil))
	_, err = failing.Dispatch(context.Background(), bookCommand{})
	assert.ErrorIs(t, err, errDenied)
	assert.Equal(t, 1, unit.commits)
	assert.Equal(t, 1, unit.rollbacks)
}

func TestTransactionReusesUnitFromContext(t *testing.T) {
	outer := &fakeUnit{}
	factory := &fakeFactory{unit: &fakeUnit{}}
	bus := ChainCommands(&countingBus{}, Transaction(factory, nil))

	_, err := bus.Dispatch(uow.Attach(context.Background(), outer), bookCommand{})
	require.NoError(t, err)
	assert.Zero(t, factory.begins)
	assert.Zero(t, outer.commits)
}

func TestTransactionSurfacesCommitError(t *testing.T) {
	unit := &fakeUnit{commitErr: errDenied}
	bus := ChainCommands(&countingBus{}, Transaction(&fakeFactory{unit: unit}, nil))

	_, err := bus.Dispatch(context.Background(), bookCommand{})
	assert.ErrorIs(t, err, errDenied)
	assert.Equal(t, 1, unit.rollbacks)
}

func TestTransactionJoinsRollbackError(t *testing.T) {
	rbErr := errors.New("connection lost")
	unit := &fakeUnit{rollbackErr: rbErr}
	bus := ChainCommands(&countingBus{err: errDenied}, Transaction(&fakeFactory{unit: unit}, nil))

	_, err := bus.Dispatch(context.Background(), bookCommand{})
	assert.ErrorIs(t, err, errDenied)
	assert.ErrorIs(t, err, rbErr)
}

func TestOutboxFlushOnlyAfterSuccess(t *testing.T) {
	box := &recordingOutbox{}
	_, _ = ChainCommands(&countingBus{}, OutboxFlush(box)).Dispatch(context.Background(), bookCommand{})
	_, _ = ChainCommands(&countingBus{err: errDenied}, OutboxFlush(box)).Dispatch(context.Background(), bookCommand{})
	assert.Equal(t, 1, box.flushes)
}

func TestObserveReportsOutcome(t *testing.T) {
	var (
		keys []string
		errs []error
	)
	observer := func(_ context.Context, key string, elapsed time.Duration, err error) {
		keys = append(keys, key)
		errs = append(errs, err)
		assert.GreaterOrEqual(t, elapsed, time.Duration(0))
	}

	_, _ = ChainCommands(&countingBus{}, Observe(observer, nil)).Dispatch(context.Background(), bookCommand{})
	_, _ = ChainCommands(&countingBus{err: errDenied}, Observe(observer)).Dispatch(context.Background(), bookCommand{})

	assert.Equal(t, []string{"test.book", "test.book"}, keys)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], errDenied)
}
