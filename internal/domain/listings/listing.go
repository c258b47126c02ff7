package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"dwelling/internal/domain/shared/events"
	"dwelling/internal/domain/shared/money"
	"dwelling/internal/domain/user"
)

var (
	ErrIDRequired    = errors.New("listings: id is required")
	ErrOwnerRequired = errors.New("listings: owner is required")
	ErrTitleRequired = errors.New("listings: title is required")
	ErrPriceInvalid  = errors.New("listings: nightly price must be positive")
	ErrCountsInvalid = errors.New("listings: room, bathroom and guest counts must be non-negative")
	ErrImageRequired = errors.New("listings: image url is required")
	ErrNotOwner      = errors.New("listings: listing belongs to another user")
	ErrNotFound      = errors.New("listings: not found")
)

type ListingID string

// Listing is a bookable property. Price is the nightly base price; changing
// it never touches reservations that were already created.
type Listing struct {
	ID            ListingID
	OwnerID       user.ID
	Title         string
	Description   string
	ImageSrc      string
	Category      string
	RoomCount     int
	BathroomCount int
	GuestCount    int
	LocationValue string
	Price         money.Money
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
}

type CreateParams struct {
	ID            ListingID
	OwnerID       user.ID
	Title         string
	Description   string
	ImageSrc      string
	Category      string
	RoomCount     int
	BathroomCount int
	GuestCount    int
	LocationValue string
	Price         money.Money
	Now           time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.OwnerID)) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if _, err := money.Positive(params.Price.Amount, params.Price.Currency); err != nil {
		return nil, ErrPriceInvalid
	}
	if params.RoomCount < 0 || params.BathroomCount < 0 || params.GuestCount < 0 {
		return nil, ErrCountsInvalid
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Listing{
		ID:            params.ID,
		OwnerID:       params.OwnerID,
		Title:         strings.TrimSpace(params.Title),
		Description:   strings.TrimSpace(params.Description),
		ImageSrc:      strings.TrimSpace(params.ImageSrc),
		Category:      strings.TrimSpace(params.Category),
		RoomCount:     params.RoomCount,
		BathroomCount: params.BathroomCount,
		GuestCount:    params.GuestCount,
		LocationValue: strings.TrimSpace(params.LocationValue),
		Price:         params.Price,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (l *Listing) OwnedBy(id user.ID) bool {
	return id != "" && l.OwnerID == id
}

// ReplaceImage points the listing at a newly uploaded cover image.
func (l *Listing) ReplaceImage(requester user.ID, url string, now time.Time) error {
	if !l.OwnedBy(requester) {
		return ErrNotOwner
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrImageRequired
	}
	l.ImageSrc = url
	l.UpdatedAt = now.UTC()
	l.Record(ImageReplaced{ListingID: l.ID, ImageSrc: url, At: l.UpdatedAt})
	return nil
}
