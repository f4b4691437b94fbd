package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/listings"
	"homestay/internal/domain/shared/events"
)

var (
	ErrInvalidRating   = errors.New("reviews: rating must be between 1 and 5")
	ErrNotFound        = errors.New("reviews: not found")
	ErrNotEligible     = errors.New("reviews: no completed stay for this listing")
	ErrDuplicateReview = errors.New("reviews: guest already reviewed this listing")
)

type ReviewID string

// Review is created once per (guest, listing) pair; rating and comment are
// immutable after creation. The booking reference is a weak anchor and may be
// empty when the request carried none or an unresolvable id.
type Review struct {
	ID        ReviewID
	ListingID listings.ListingID
	GuestID   string
	BookingID booking.BookingID
	Rating    int
	Comment   string
	CreatedAt time.Time
	events.EventRecorder
}

type Repository interface {
	ByGuestListing(ctx context.Context, guestID string, listingID listings.ListingID) (*Review, error)
	ListByListing(ctx context.Context, listingID listings.ListingID, limit, offset int) ([]*Review, error)
	Save(ctx context.Context, review *Review) error
}

type SubmitParams struct {
	ID        ReviewID
	ListingID listings.ListingID
	GuestID   string
	BookingID booking.BookingID
	Rating    int
	Comment   string
	CreatedAt time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	review := &Review{
		ID:        params.ID,
		ListingID: params.ListingID,
		GuestID:   params.GuestID,
		BookingID: params.BookingID,
		Rating:    params.Rating,
		Comment:   strings.TrimSpace(params.Comment),
		CreatedAt: params.CreatedAt.UTC(),
	}
	review.Record(ReviewSubmitted{ReviewID: review.ID, ListingID: review.ListingID, GuestID: review.GuestID, Rating: review.Rating, At: review.CreatedAt})
	return review, nil
}

// AverageRating computes the arithmetic mean of the given reviews. The second
// return value is false when there are no reviews; callers surface null rather
// than zero in that case.
func AverageRating(items []*Review) (float64, bool) {
	if len(items) == 0 {
		return 0, false
	}
	var total int
	for _, review := range items {
		total += review.Rating
	}
	return float64(total) / float64(len(items)), true
}
