package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "homestay/internal/domain/booking"
	domainlistings "homestay/internal/domain/listings"
	domainreviews "homestay/internal/domain/reviews"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	col := db.Collection("agg_review")
	// one review per guest per listing, enforced at the storage level too
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "guest_id", Value: 1}, {Key: "listing_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &ReviewRepository{col: col}
}

func (r *ReviewRepository) ByGuestListing(ctx context.Context, guestID string, listingID domainlistings.ListingID) (*domainreviews.Review, error) {
	var doc reviewDocument
	err := r.col.FindOne(ctx, bson.M{"guest_id": guestID, "listing_id": string(listingID)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreviews.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID, limit, offset int) ([]*domainreviews.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if offset > 0 {
		opts = opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, bson.M{"listing_id": string(listingID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainreviews.Review
	for cur.Next(ctx) {
		var doc reviewDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	doc := newReviewDocument(review)
	_, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainreviews.ErrDuplicateReview
		}
		return err
	}
	return nil
}

type reviewDocument struct {
	ID        string `bson:"_id"`
	ListingID string `bson:"listing_id"`
	GuestID   string `bson:"guest_id"`
	BookingID string `bson:"booking_id,omitempty"`
	Rating    int    `bson:"rating"`
	Comment   string `bson:"comment"`
	CreatedAt int64  `bson:"created_at"`
}

func newReviewDocument(r *domainreviews.Review) reviewDocument {
	return reviewDocument{
		ID:        string(r.ID),
		ListingID: string(r.ListingID),
		GuestID:   r.GuestID,
		BookingID: string(r.BookingID),
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt.UnixMilli(),
	}
}

func (d reviewDocument) toAggregate() *domainreviews.Review {
	return &domainreviews.Review{
		ID:        domainreviews.ReviewID(d.ID),
		ListingID: domainlistings.ListingID(d.ListingID),
		GuestID:   d.GuestID,
		BookingID: domainbooking.BookingID(d.BookingID),
		Rating:    d.Rating,
		Comment:   d.Comment,
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}
