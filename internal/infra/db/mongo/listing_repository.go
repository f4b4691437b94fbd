package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "homestay/internal/domain/listings"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("agg_listing")}
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

func (r *ListingRepository) ByHost(ctx context.Context, host domainlistings.HostID) ([]*domainlistings.Listing, error) {
	cur, err := r.col.Find(ctx, bson.M{"host_id": string(host)}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainlistings.Listing
	for cur.Next(ctx) {
		var doc listingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

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
	ID               string  `bson:"_id"`
	HostID           string  `bson:"host_id"`
	Title            string  `bson:"title"`
	Description      string  `bson:"description"`
	Location         string  `bson:"location"`
	PropertyType     string  `bson:"property_type"`
	NightlyRateCents int64   `bson:"nightly_rate_cents"`
	MaxGuests        int     `bson:"max_guests"`
	Bedrooms         int     `bson:"bedrooms"`
	Bathrooms        int     `bson:"bathrooms"`
	Amenities        string  `bson:"amenities"`
	Available        bool    `bson:"available"`
	Rating           float64 `bson:"rating"`
	CreatedAt        int64   `bson:"created_at"`
	UpdatedAt        int64   `bson:"updated_at"`
	Version          int64   `bson:"version"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	return listingDocument{
		ID:               string(l.ID),
		HostID:           string(l.Host),
		Title:            l.Title,
		Description:      l.Description,
		Location:         l.Location,
		PropertyType:     l.PropertyType,
		NightlyRateCents: l.NightlyRateCents,
		MaxGuests:        l.MaxGuests,
		Bedrooms:         l.Bedrooms,
		Bathrooms:        l.Bathrooms,
		Amenities:        l.Amenities,
		Available:        l.Available,
		Rating:           l.Rating,
		CreatedAt:        l.CreatedAt.UnixMilli(),
		UpdatedAt:        l.UpdatedAt.UnixMilli(),
		Version:          l.Version,
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	return &domainlistings.Listing{
		ID:               domainlistings.ListingID(d.ID),
		Host:             domainlistings.HostID(d.HostID),
		Title:            d.Title,
		Description:      d.Description,
		Location:         d.Location,
		PropertyType:     d.PropertyType,
		NightlyRateCents: d.NightlyRateCents,
		MaxGuests:        d.MaxGuests,
		Bedrooms:         d.Bedrooms,
		Bathrooms:        d.Bathrooms,
		Amenities:        d.Amenities,
		Available:        d.Available,
		Rating:           d.Rating,
		CreatedAt:        timestampToTime(d.CreatedAt),
		UpdatedAt:        timestampToTime(d.UpdatedAt),
		Version:          d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
