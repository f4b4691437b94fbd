package reviews

import (
	"time"

	"homestay/internal/domain/listings"
)

type ReviewSubmitted struct {
	ReviewID  ReviewID
	ListingID listings.ListingID
	GuestID   string
	Rating    int
	At        time.Time
}

func (e ReviewSubmitted) EventName() string     { return "review.submitted" }
func (e ReviewSubmitted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }
