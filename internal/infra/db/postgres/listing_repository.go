package postgres

import (
	"context"
	"database/sql"
	"errors"

	domainlistings "dwelling/internal/domain/listings"
	"dwelling/internal/domain/shared/money"
	domainuser "dwelling/internal/domain/user"
)

var ErrConcurrentUpdate = errors.New("postgres: concurrent update detected")

type ListingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

const listingColumns = `id, user_id, title, description, image_src, category, room_count, bathroom_count,
	guest_count, location_value, price, currency, created_at, updated_at, version`

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, string(id))
	var (
		l        domainlistings.Listing
		lid      string
		owner    string
		amount   int64
		currency string
	)
	err := row.Scan(&lid, &owner, &l.Title, &l.Description, &l.ImageSrc, &l.Category, &l.RoomCount,
		&l.BathroomCount, &l.GuestCount, &l.LocationValue, &amount, &currency, &l.CreatedAt, &l.UpdatedAt, &l.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	l.ID = domainlistings.ListingID(lid)
	l.OwnerID = domainuser.ID(owner)
	l.Price = money.Money{Amount: amount, Currency: currency}
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
	return &l, nil
}

// Save inserts a new listing or updates an existing one guarded by version.
func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO listings (`+listingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15 + 1)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			image_src = EXCLUDED.image_src,
			category = EXCLUDED.category,
			room_count = EXCLUDED.room_count,
			bathroom_count = EXCLUDED.bathroom_count,
			guest_count = EXCLUDED.guest_count,
			location_value = EXCLUDED.location_value,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			updated_at = EXCLUDED.updated_at,
			version = EXCLUDED.version
		WHERE listings.version = $15
	`, string(l.ID), string(l.OwnerID), l.Title, l.Description, l.ImageSrc, l.Category, l.RoomCount,
		l.BathroomCount, l.GuestCount, l.LocationValue, l.Price.Amount, l.Price.Currency,
		l.CreatedAt.UTC(), l.UpdatedAt.UTC(), l.Version)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrConcurrentUpdate
	}
	l.Version++
	return nil
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
