package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlistings "homestay/internal/domain/listings"
	domainrange "homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
)

// LockSettings tune the per-listing advisory lock taken during booking
// creation.
type LockSettings struct {
	RetryInterval time.Duration
	Timeout       time.Duration
}

func (s LockSettings) withDefaults() LockSettings {
	if s.RetryInterval <= 0 {
		s.RetryInterval = 25 * time.Millisecond
	}
	if s.Timeout <= 0 {
		s.Timeout = 3 * time.Second
	}
	return s
}

type BookingRepository struct {
	col   *mongo.Collection
	locks *mongo.Collection
	lock  LockSettings
}

func NewBookingRepository(db *mongo.Database, lock LockSettings) *BookingRepository {
	col := db.Collection("agg_booking")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "range.check_in", Value: 1}},
	})
	return &BookingRepository{col: col, locks: db.Collection("booking_locks"), lock: lock.withDefaults()}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Create serializes writers per listing through an advisory lock document so
// the overlap check and the insert act as one unit. The losing side of a
// concurrent overlap gets ErrDateConflict; a writer that never obtains the
// lock within the timeout gets uow.ErrStorageUnavailable.
func (r *BookingRepository) Create(ctx context.Context, b *domainbooking.Booking) error {
	release, err := r.acquireListingLock(ctx, b.ListingID)
	if err != nil {
		return err
	}
	defer release()

	filter := bson.M{
		"listing_id":      string(b.ListingID),
		"state":           bson.M{"$in": bson.A{string(domainbooking.StatusPending), string(domainbooking.StatusConfirmed)}},
		"range.check_in":  bson.M{"$lt": b.Range.CheckOut.UnixMilli()},
		"range.check_out": bson.M{"$gt": b.Range.CheckIn.UnixMilli()},
	}
	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return err
	}
	if n > 0 {
		return domainbooking.ErrDateConflict
	}

	doc := newBookingDocument(b)
	doc.Version = 1
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return err
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) acquireListingLock(ctx context.Context, listingID domainlistings.ListingID) (func(), error) {
	deadline := time.Now().Add(r.lock.Timeout)
	for {
		now := time.Now().UTC()
		_, err := r.locks.InsertOne(ctx, lockDocument{
			ID:        string(listingID),
			CreatedAt: now,
			ExpiresAt: now.Add(r.lock.Timeout),
		})
		if err == nil {
			return func() {
				_, _ = r.locks.DeleteOne(context.WithoutCancel(ctx), bson.M{"_id": string(listingID)})
			}, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, uow.ErrStorageUnavailable
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.lock.RetryInterval):
		}
	}
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) List(ctx context.Context, filter domainbooking.ListFilter) ([]*domainbooking.Booking, error) {
	query := bson.M{}
	if filter.ListingID != "" {
		query["listing_id"] = string(filter.ListingID)
	}
	if filter.GuestID != "" {
		query["guest_id"] = filter.GuestID
	}
	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type bookingDocument struct {
	ID         string        `bson:"_id"`
	ListingID  string        `bson:"listing_id"`
	GuestID    string        `bson:"guest_id"`
	Range      rangeDocument `bson:"range"`
	Guests     int           `bson:"guests"`
	TotalCents int64         `bson:"total_cents"`
	Currency   string        `bson:"currency"`
	State      string        `bson:"state"`
	CreatedAt  int64         `bson:"created_at"`
	UpdatedAt  int64         `bson:"updated_at"`
	Version    int64         `bson:"version"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

type lockDocument struct {
	ID        string    `bson:"_id"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:         string(b.ID),
		ListingID:  string(b.ListingID),
		GuestID:    b.GuestID,
		Range:      rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Guests:     b.Guests,
		TotalCents: b.TotalPrice.Amount,
		Currency:   b.TotalPrice.Currency,
		State:      string(b.State),
		CreatedAt:  b.CreatedAt.UnixMilli(),
		UpdatedAt:  b.UpdatedAt.UnixMilli(),
		Version:    b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:         domainbooking.BookingID(d.ID),
		ListingID:  domainlistings.ListingID(d.ListingID),
		GuestID:    d.GuestID,
		Range:      domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)},
		Guests:     d.Guests,
		TotalPrice: money.Money{Amount: d.TotalCents, Currency: d.Currency},
		State:      domainbooking.Status(d.State),
		CreatedAt:  timestampToTime(d.CreatedAt),
		UpdatedAt:  timestampToTime(d.UpdatedAt),
		Version:    d.Version,
	}
}
