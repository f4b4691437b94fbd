package reviews

import (
	"context"
	"time"

	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlistings "homestay/internal/domain/listings"
	domainreviews "homestay/internal/domain/reviews"
)

// hasCompletedStay reports whether the guest has at least one booking on the
// listing whose effective status at now is completed.
func hasCompletedStay(ctx context.Context, unit uow.UnitOfWork, listingID domainlistings.ListingID, guestID string, now time.Time) (bool, error) {
	records, err := unit.Bookings().List(ctx, domainbooking.ListFilter{
		ListingID: listingID,
		GuestID:   guestID,
	})
	if err != nil {
		return false, err
	}
	for _, record := range records {
		if record.EffectiveStatus(now) == domainbooking.StatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

// recalculateListingRating refreshes the denormalized listing average inside
// the same unit of work that stored the new review.
func recalculateListingRating(ctx context.Context, unit uow.UnitOfWork, listing *domainlistings.Listing, now time.Time) error {
	items, err := unit.Reviews().ListByListing(ctx, listing.ID, 0, 0)
	if err != nil {
		return err
	}
	average, ok := domainreviews.AverageRating(items)
	if !ok {
		average = 0
	}
	if err := listing.UpdateRating(average, now); err != nil {
		return err
	}
	return unit.Listings().Save(ctx, listing)
}
