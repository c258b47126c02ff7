package dto

import (
	"time"

	domainlistings "dwelling/internal/domain/listings"
	domainpricing "dwelling/internal/domain/pricing"
	domainuser "dwelling/internal/domain/user"
)

type ListingOwner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// ListingDetail is the listing page payload: the listing, its owner and the
// days already taken.
type ListingDetail struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	ImageSrc      string       `json:"image_src"`
	Category      string       `json:"category"`
	RoomCount     int          `json:"room_count"`
	BathroomCount int          `json:"bathroom_count"`
	GuestCount    int          `json:"guest_count"`
	LocationValue string       `json:"location_value"`
	Price         MoneyDTO     `json:"price"`
	Owner         ListingOwner `json:"owner"`
	DisabledDates []string     `json:"disabled_dates"`
	CreatedAt     time.Time    `json:"created_at"`
}

func MapListingDetail(listing *domainlistings.Listing, owner *domainuser.User, disabled []time.Time) ListingDetail {
	if listing == nil {
		return ListingDetail{}
	}
	detail := ListingDetail{
		ID:            string(listing.ID),
		Title:         listing.Title,
		Description:   listing.Description,
		ImageSrc:      listing.ImageSrc,
		Category:      listing.Category,
		RoomCount:     listing.RoomCount,
		BathroomCount: listing.BathroomCount,
		GuestCount:    listing.GuestCount,
		LocationValue: listing.LocationValue,
		Price:         MapMoney(listing.Price),
		Owner:         ListingOwner{ID: string(listing.OwnerID)},
		DisabledDates: MapDisabledDates(string(listing.ID), disabled).Dates,
		CreatedAt:     listing.CreatedAt,
	}
	if owner != nil {
		detail.Owner.Name = owner.Name
		detail.Owner.Image = owner.Image
	}
	return detail
}

type Quote struct {
	ListingID string   `json:"listing_id"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Nights    int      `json:"nights"`
	Nightly   MoneyDTO `json:"nightly"`
	Total     MoneyDTO `json:"total"`
	Bookable  bool     `json:"bookable"`
}

func MapQuote(listingID string, start, end time.Time, q domainpricing.Quote) Quote {
	return Quote{
		ListingID: listingID,
		StartDate: start.Format(time.DateOnly),
		EndDate:   end.Format(time.DateOnly),
		Nights:    q.Nights,
		Nightly:   MapMoney(q.Nightly),
		Total:     MapMoney(q.Total),
		Bookable:  q.Bookable(),
	}
}
