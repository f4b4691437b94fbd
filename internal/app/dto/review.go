package dto

import (
	"time"

	domainreviews "homestay/internal/domain/reviews"
)

// Review represents a public review payload.
type Review struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	GuestID   string    `json:"guest_id"`
	BookingID string    `json:"booking_id,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ReviewCollection struct {
	Items []Review `json:"items"`
	Total int      `json:"total"`
}

// MapReview builds a DTO from a domain review.
func MapReview(review *domainreviews.Review) Review {
	if review == nil {
		return Review{}
	}
	return Review{
		ID:        string(review.ID),
		ListingID: string(review.ListingID),
		GuestID:   review.GuestID,
		BookingID: string(review.BookingID),
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}
