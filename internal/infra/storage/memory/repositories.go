package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainlistings "dwelling/internal/domain/listings"
	domainreservation "dwelling/internal/domain/reservation"
	"dwelling/internal/domain/shared/events"
)

// ListingRepository is an in-memory implementation for demo purposes.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

// NewListingRepository builds an empty repository.
func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

// ByID returns a copy of the listing or listings.ErrNotFound.
func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return cloneListing(listing), nil
}

// Save stores/updates a listing entry.
func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	if listing == nil || strings.TrimSpace(string(listing.ID)) == "" {
		return domainlistings.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneListing(listing)
	stored.Version++
	listing.Version = stored.Version
	r.items[listing.ID] = stored
	return nil
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	c := *l
	c.EventRecorder = events.EventRecorder{}
	return &c
}

// ReservationRepository keeps reservations grouped by listing. Create holds
// the write lock across the overlap check and the insert, so two concurrent
// overlapping requests cannot both succeed.
type ReservationRepository struct {
	mu        sync.RWMutex
	byListing map[domainlistings.ListingID][]*domainreservation.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{
		byListing: make(map[domainlistings.ListingID][]*domainreservation.Reservation),
	}
}

// ListByListing returns copies ordered by start date.
func (r *ReservationRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.byListing[listingID]
	out := make([]*domainreservation.Reservation, 0, len(items))
	for _, res := range items {
		out = append(out, cloneReservation(res))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Range.Start.Before(out[j].Range.Start) })
	return out, nil
}

func (r *ReservationRepository) Create(ctx context.Context, res *domainreservation.Reservation) error {
	if res == nil || strings.TrimSpace(string(res.ID)) == "" {
		return domainreservation.ErrIDRequired
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byListing[res.ListingID] {
		if existing.Range.Overlaps(res.Range) {
			return domainreservation.ErrDateConflict
		}
	}
	r.byListing[res.ListingID] = append(r.byListing[res.ListingID], cloneReservation(res))
	return nil
}

func cloneReservation(res *domainreservation.Reservation) *domainreservation.Reservation {
	c := *res
	c.EventRecorder = events.EventRecorder{}
	return &c
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
var _ domainreservation.Repository = (*ReservationRepository)(nil)
