package dto

import "time"

// DisabledDates lists the days of a listing that cannot be selected, as
// ascending YYYY-MM-DD strings.
type DisabledDates struct {
	ListingID string   `json:"listing_id"`
	Dates     []string `json:"dates"`
}

func MapDisabledDates(listingID string, days []time.Time) DisabledDates {
	out := DisabledDates{ListingID: listingID, Dates: make([]string, 0, len(days))}
	for _, d := range days {
		out.Dates = append(out.Dates, d.Format(time.DateOnly))
	}
	return out
}
