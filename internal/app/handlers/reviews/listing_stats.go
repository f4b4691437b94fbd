package reviews

import (
	"context"

	"homestay/internal/app/dto"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainlistings "homestay/internal/domain/listings"
	domainreviews "homestay/internal/domain/reviews"
)

const listingStatsKey = "reviews.listing_stats"

type ListingStatsQuery struct {
	ListingID string
}

func (q ListingStatsQuery) Key() string { return listingStatsKey }

// ListingStatsHandler computes rating aggregates on read. A listing with zero
// reviews yields a null average, never a division by zero.
type ListingStatsHandler struct {
	UoWFactory uow.Factory
}

func (h *ListingStatsHandler) Handle(ctx context.Context, query ListingStatsQuery) (dto.ListingStats, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.ListingStats{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.ListingStats{}, err
		}
		ctx = uow.BindContext(ctx, unit)
		defer func() { _ = unit.Rollback(ctx) }()
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(query.ListingID))
	if err != nil {
		return dto.ListingStats{}, err
	}

	return computeStats(ctx, unit, listing.ID)
}

func computeStats(ctx context.Context, unit uow.UnitOfWork, listingID domainlistings.ListingID) (dto.ListingStats, error) {
	items, err := unit.Reviews().ListByListing(ctx, listingID, 0, 0)
	if err != nil {
		return dto.ListingStats{}, err
	}
	stats := dto.ListingStats{TotalReviews: len(items)}
	if average, ok := domainreviews.AverageRating(items); ok {
		stats.AverageRating = &average
	}
	return stats, nil
}

var _ queries.Handler[ListingStatsQuery, dto.ListingStats] = (*ListingStatsHandler)(nil)
