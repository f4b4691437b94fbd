package listings

import (
	"context"
	"errors"

	"homestay/internal/app/dto"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainlistings "homestay/internal/domain/listings"
	domainreviews "homestay/internal/domain/reviews"
	domainuser "homestay/internal/domain/user"
)

const getSummaryKey = "listings.summary"

type GetSummaryQuery struct {
	ListingID string
}

func (q GetSummaryQuery) Key() string { return getSummaryKey }

// GetSummaryHandler assembles the read-only listing projection: catalog
// subset, host display name and on-read rating aggregates. No side effects.
type GetSummaryHandler struct {
	UoWFactory uow.Factory
}

func (h *GetSummaryHandler) Handle(ctx context.Context, query GetSummaryQuery) (dto.ListingSummary, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.ListingSummary{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.ListingSummary{}, err
		}
		ctx = uow.BindContext(ctx, unit)
		defer func() { _ = unit.Rollback(ctx) }()
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(query.ListingID))
	if err != nil {
		return dto.ListingSummary{}, err
	}

	hostName := string(listing.Host)
	if host, err := unit.Users().ByID(ctx, string(listing.Host)); err == nil && host != nil {
		hostName = host.Name()
	} else if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
		return dto.ListingSummary{}, err
	}

	items, err := unit.Reviews().ListByListing(ctx, listing.ID, 0, 0)
	if err != nil {
		return dto.ListingSummary{}, err
	}
	stats := dto.ListingStats{TotalReviews: len(items)}
	if average, ok := domainreviews.AverageRating(items); ok {
		stats.AverageRating = &average
	}

	return dto.MapListingSummary(listing, hostName, stats), nil
}

var _ queries.Handler[GetSummaryQuery, dto.ListingSummary] = (*GetSummaryHandler)(nil)
