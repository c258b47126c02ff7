package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "dwelling/internal/domain/listings"
	domainreservation "dwelling/internal/domain/reservation"
	"dwelling/internal/domain/shared/daterange"
	"dwelling/internal/domain/shared/money"
	domainuser "dwelling/internal/domain/user"
)

const (
	reservationsCollection    = "reservations"
	reservationDaysCollection = "reservation_days"

	writeConflictCode = 112
)

// ReservationRepository stores each reservation plus one document per
// covered night keyed by listing and day. The unique _id on those night
// documents is what makes two overlapping inserts impossible.
type ReservationRepository struct {
	reservations *mongo.Collection
	days         *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{
		reservations: db.Collection(reservationsCollection),
		days:         db.Collection(reservationDaysCollection),
	}
}

func ensureReservationIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(reservationsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "start_date", Value: 1}},
	})
	return err
}

func (r *ReservationRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainreservation.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
	cur, err := r.reservations.Find(ctx, bson.M{"listing_id": string(listingID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*domainreservation.Reservation, 0)
	for cur.Next(ctx) {
		var doc reservationDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

// Create claims every night first, then writes the reservation. Outside a
// transaction, nights claimed before a conflict are released again.
func (r *ReservationRepository) Create(ctx context.Context, res *domainreservation.Reservation) error {
	if err := domainreservation.CheckRange(res.Range); err != nil {
		return err
	}
	nights := nightDocuments(res)
	if len(nights) == 0 {
		return domainreservation.ErrInvalidRange
	}
	docs := make([]any, 0, len(nights))
	for _, n := range nights {
		docs = append(docs, n)
	}
	if _, err := r.days.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		if isClaimConflict(err) {
			r.release(ctx, res.ID)
			return domainreservation.ErrDateConflict
		}
		return err
	}
	if _, err := r.reservations.InsertOne(ctx, newReservationDocument(res)); err != nil {
		r.release(ctx, res.ID)
		return err
	}
	return nil
}

func (r *ReservationRepository) release(ctx context.Context, id domainreservation.ID) {
	if mongo.SessionFromContext(ctx) != nil {
		return
	}
	_, _ = r.days.DeleteMany(ctx, bson.M{"reservation_id": string(id)})
}

func isClaimConflict(err error) bool {
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(writeConflictCode)
}

type nightDocument struct {
	ID            string    `bson:"_id"`
	ListingID     string    `bson:"listing_id"`
	Day           time.Time `bson:"day"`
	ReservationID string    `bson:"reservation_id"`
}

func nightKey(listingID domainlistings.ListingID, day time.Time) string {
	return string(listingID) + "|" + day.Format(time.DateOnly)
}

func nightDocuments(res *domainreservation.Reservation) []nightDocument {
	days := res.Range.Days()
	out := make([]nightDocument, 0, len(days))
	for _, d := range days {
		out = append(out, nightDocument{
			ID:            nightKey(res.ListingID, d),
			ListingID:     string(res.ListingID),
			Day:           d,
			ReservationID: string(res.ID),
		})
	}
	return out
}

type reservationDocument struct {
	ID         string    `bson:"_id"`
	ListingID  string    `bson:"listing_id"`
	UserID     string    `bson:"user_id"`
	StartDate  time.Time `bson:"start_date"`
	EndDate    time.Time `bson:"end_date"`
	TotalPrice int64     `bson:"total_price"`
	Currency   string    `bson:"currency"`
	CreatedAt  time.Time `bson:"created_at"`
}

func newReservationDocument(res *domainreservation.Reservation) reservationDocument {
	return reservationDocument{
		ID:         string(res.ID),
		ListingID:  string(res.ListingID),
		UserID:     string(res.UserID),
		StartDate:  res.Range.Start,
		EndDate:    res.Range.End,
		TotalPrice: res.TotalPrice.Amount,
		Currency:   res.TotalPrice.Currency,
		CreatedAt:  res.CreatedAt.UTC(),
	}
}

func (d reservationDocument) toAggregate() *domainreservation.Reservation {
	return &domainreservation.Reservation{
		ID:         domainreservation.ID(d.ID),
		ListingID:  domainlistings.ListingID(d.ListingID),
		UserID:     domainuser.ID(d.UserID),
		Range:      daterange.Of(d.StartDate.UTC(), d.EndDate.UTC()),
		TotalPrice: money.Money{Amount: d.TotalPrice, Currency: d.Currency},
		CreatedAt:  d.CreatedAt.UTC(),
	}
}

var _ domainreservation.Repository = (*ReservationRepository)(nil)
