package reservations

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"dwelling/internal/app/commands"
	"dwelling/internal/app/handlers/support"
	"dwelling/internal/app/middleware"
	"dwelling/internal/app/outbox"
	"dwelling/internal/app/uow"
	domainavailability "dwelling/internal/domain/availability"
	domainpricing "dwelling/internal/domain/pricing"
	domainreservation "dwelling/internal/domain/reservation"
	"dwelling/internal/domain/shared/daterange"
	"dwelling/internal/domain/shared/money"
	domainuser "dwelling/internal/domain/user"
)

const createReservationKey = "reservations.create"

// CreateReservationCommand asks to book a listing for [StartDate, EndDate).
// TotalPrice is what the client displayed; zero means "accept the quote".
// It carries no validation tags: the handler's check order decides which
// error a bad request gets, and an inverted range wins over everything but
// identity.
type CreateReservationCommand struct {
	RequesterID     string
	ListingID       string
	StartDate       time.Time
	EndDate         time.Time
	TotalPrice      int64
	IdempotencyKeyV string
}

func (c CreateReservationCommand) Key() string { return createReservationKey }

func (c CreateReservationCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateReservationCommand) ResultPrototype() any { return &CreateReservationResult{} }

func (c CreateReservationCommand) Requester() string { return c.RequesterID }

type CreateReservationResult struct {
	ReservationID string `json:"reservation_id"`
	Nights        int    `json:"nights"`
	TotalPrice    int64  `json:"total_price"`
	Currency      string `json:"currency"`
}

type CreateReservationHandler struct {
	UoWFactory uow.UoWFactory
	Pricing    domainpricing.Calculator
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	NewID      func() string
	Now        func() time.Time
}

// Handle validates the request in a fixed order (identity, range, listing,
// price, overlap) and persists the reservation. The repository's Create is
// the final overlap guard; the pre-check here only avoids a doomed write.
func (h *CreateReservationHandler) Handle(ctx context.Context, cmd CreateReservationCommand) (*CreateReservationResult, error) {
	if strings.TrimSpace(cmd.RequesterID) == "" {
		return nil, domainreservation.ErrUnauthenticated
	}
	dr := daterange.Of(cmd.StartDate, cmd.EndDate)
	if err := domainreservation.CheckRange(dr); err != nil {
		return nil, err
	}

	unit, ok := uow.From(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, uow.ErrNoUnit
		}
		began, err := h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, support.Persistence(err)
		}
		unit = began
		ctx = uow.Attach(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	listing, err := support.LoadListing(ctx, unit, cmd.ListingID)
	if err != nil {
		return nil, err
	}

	quote, err := h.Pricing.Quote(listing, dr.Start, dr.End)
	if errors.Is(err, money.ErrOverflow) {
		return nil, err
	}
	if err != nil {
		return nil, support.Persistence(err)
	}
	if cmd.TotalPrice != 0 && cmd.TotalPrice != quote.Total.Amount {
		h.log().Warn("reservation price mismatch",
			"listing_id", listing.ID, "client_total", cmd.TotalPrice, "quote_total", quote.Total.Amount)
		return nil, domainreservation.ErrPriceMismatch
	}

	existing, err := unit.Reservations().ListByListing(ctx, listing.ID)
	if err != nil {
		return nil, support.Persistence(err)
	}
	if taken, found := domainavailability.Build(existing).FirstConflict(dr); found {
		h.log().Info("reservation rejected, dates taken",
			"listing_id", listing.ID, "requested", dr.String(), "first_taken", taken.Format(time.DateOnly))
		return nil, domainreservation.ErrDateConflict
	}

	res, err := domainreservation.New(domainreservation.CreateParams{
		ID:         domainreservation.ID(h.newID()),
		ListingID:  listing.ID,
		UserID:     domainuser.ID(cmd.RequesterID),
		Range:      dr,
		TotalPrice: quote.Total,
		CreatedAt:  h.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Reservations().Create(ctx, res); err != nil {
		if errors.Is(err, domainreservation.ErrDateConflict) {
			return nil, domainreservation.ErrDateConflict
		}
		return nil, support.Persistence(err)
	}

	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), res.Drain()); err != nil {
		return nil, support.Persistence(err)
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			if errors.Is(err, domainreservation.ErrDateConflict) {
				return nil, domainreservation.ErrDateConflict
			}
			return nil, support.Persistence(err)
		}
		committed = true
	}

	h.log().Info("reservation created",
		"reservation_id", res.ID, "listing_id", res.ListingID, "range", res.Range.String(), "total", res.TotalPrice.String())
	return &CreateReservationResult{
		ReservationID: string(res.ID),
		Nights:        res.Nights(),
		TotalPrice:    res.TotalPrice.Amount,
		Currency:      res.TotalPrice.Currency,
	}, nil
}

func (h *CreateReservationHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *CreateReservationHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

func (h *CreateReservationHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *CreateReservationHandler) log() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ commands.Handler[CreateReservationCommand, *CreateReservationResult] = (*CreateReservationHandler)(nil)
var _ middleware.IdempotentCommand = CreateReservationCommand{}
var _ middleware.Authenticated = CreateReservationCommand{}
