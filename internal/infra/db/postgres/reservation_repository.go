package postgres

import (
	"context"
	"database/sql"

	domainlistings "dwelling/internal/domain/listings"
	domainreservation "dwelling/internal/domain/reservation"
	"dwelling/internal/domain/shared/daterange"
	"dwelling/internal/domain/shared/money"
	domainuser "dwelling/internal/domain/user"
)

// ReservationRepository leaves the overlap guarantee to the
// reservations_no_overlap exclusion constraint.
type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainreservation.Reservation, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `
		SELECT id, listing_id, user_id, start_date, end_date, total_price, currency, created_at
		FROM reservations
		WHERE listing_id = $1
		ORDER BY start_date
	`, string(listingID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domainreservation.Reservation, 0)
	for rows.Next() {
		var (
			id, lid, uid, currency string
			start, end, created    sql.NullTime
			total                  int64
		)
		if err := rows.Scan(&id, &lid, &uid, &start, &end, &total, &currency, &created); err != nil {
			return nil, err
		}
		out = append(out, &domainreservation.Reservation{
			ID:         domainreservation.ID(id),
			ListingID:  domainlistings.ListingID(lid),
			UserID:     domainuser.ID(uid),
			Range:      daterange.Of(start.Time, end.Time),
			TotalPrice: money.Money{Amount: total, Currency: currency},
			CreatedAt:  created.Time.UTC(),
		})
	}
	return out, rows.Err()
}

func (r *ReservationRepository) Create(ctx context.Context, res *domainreservation.Reservation) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO reservations (id, listing_id, user_id, start_date, end_date, total_price, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, string(res.ID), string(res.ListingID), string(res.UserID),
		res.Range.Start.Format("2006-01-02"), res.Range.End.Format("2006-01-02"),
		res.TotalPrice.Amount, res.TotalPrice.Currency, res.CreatedAt.UTC())
	if err != nil {
		if hasCode(err, exclusionViolation, serializationFailure) {
			return domainreservation.ErrDateConflict
		}
		return err
	}
	return nil
}

var _ domainreservation.Repository = (*ReservationRepository)(nil)
