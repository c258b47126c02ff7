package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "dwelling/internal/domain/listings"
	"dwelling/internal/domain/shared/money"
	domainuser "dwelling/internal/domain/user"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

const listingsCollection = "listings"

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(listingsCollection)}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save upserts the listing guarded by its version.
func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	l.Version = doc.Version
	return nil
}

type listingDocument struct {
	ID            string    `bson:"_id"`
	OwnerID       string    `bson:"user_id"`
	Title         string    `bson:"title"`
	Description   string    `bson:"description"`
	ImageSrc      string    `bson:"image_src"`
	Category      string    `bson:"category"`
	RoomCount     int       `bson:"room_count"`
	BathroomCount int       `bson:"bathroom_count"`
	GuestCount    int       `bson:"guest_count"`
	LocationValue string    `bson:"location_value"`
	Price         int64     `bson:"price"`
	Currency      string    `bson:"currency"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
	Version       int64     `bson:"version"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	return listingDocument{
		ID:            string(l.ID),
		OwnerID:       string(l.OwnerID),
		Title:         l.Title,
		Description:   l.Description,
		ImageSrc:      l.ImageSrc,
		Category:      l.Category,
		RoomCount:     l.RoomCount,
		BathroomCount: l.BathroomCount,
		GuestCount:    l.GuestCount,
		LocationValue: l.LocationValue,
		Price:         l.Price.Amount,
		Currency:      l.Price.Currency,
		CreatedAt:     l.CreatedAt.UTC(),
		UpdatedAt:     l.UpdatedAt.UTC(),
		Version:       l.Version,
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	return &domainlistings.Listing{
		ID:            domainlistings.ListingID(d.ID),
		OwnerID:       domainuser.ID(d.OwnerID),
		Title:         d.Title,
		Description:   d.Description,
		ImageSrc:      d.ImageSrc,
		Category:      d.Category,
		RoomCount:     d.RoomCount,
		BathroomCount: d.BathroomCount,
		GuestCount:    d.GuestCount,
		LocationValue: d.LocationValue,
		Price:         money.Money{Amount: d.Price, Currency: d.Currency},
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
		Version:       d.Version,
	}
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
