package listings

import "time"

type ImageReplaced struct {
	ListingID ListingID `json:"listing_id"`
	ImageSrc  string    `json:"image_src"`
	At        time.Time `json:"at"`
}

func (e ImageReplaced) EventName() string     { return "listing.image_replaced" }
func (e ImageReplaced) AggregateID() string   { return string(e.ListingID) }
func (e ImageReplaced) OccurredAt() time.Time { return e.At }
