package reviews

import (
	"context"

	"homestay/internal/app/dto"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainlistings "homestay/internal/domain/listings"
)

const listReviewsKey = "reviews.list"

type ListReviewsQuery struct {
	ListingID string
	Limit     int
	Offset    int
}

func (q ListReviewsQuery) Key() string { return listReviewsKey }

type ListReviewsHandler struct {
	UoWFactory uow.Factory
}

func (h *ListReviewsHandler) Handle(ctx context.Context, query ListReviewsQuery) (dto.ReviewCollection, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.ReviewCollection{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.ReviewCollection{}, err
		}
		ctx = uow.BindContext(ctx, unit)
		defer func() { _ = unit.Rollback(ctx) }()
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(query.ListingID))
	if err != nil {
		return dto.ReviewCollection{}, err
	}

	items, err := unit.Reviews().ListByListing(ctx, listing.ID, query.Limit, query.Offset)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	out := make([]dto.Review, 0, len(items))
	for _, review := range items {
		out = append(out, dto.MapReview(review))
	}
	return dto.ReviewCollection{Items: out, Total: len(out)}, nil
}

var _ queries.Handler[ListReviewsQuery, dto.ReviewCollection] = (*ListReviewsHandler)(nil)
