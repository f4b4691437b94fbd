package reviews

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "homestay/internal/domain/booking"
	domainlistings "homestay/internal/domain/listings"
)

func TestListingStats(t *testing.T) {
	ctx := context.Background()

	t.Run("no reviews yields null average", func(t *testing.T) {
		f := newFixture(t)
		handler := &ListingStatsHandler{UoWFactory: f.factory}
		stats, err := handler.Handle(ctx, ListingStatsQuery{ListingID: "lst-1"})
		require.NoError(t, err)
		assert.Nil(t, stats.AverageRating)
		assert.Equal(t, 0, stats.TotalReviews)
	})

	t.Run("average over all reviews", func(t *testing.T) {
		f := newFixture(t)
		seedStay(t, f, "bkg-1", "guest-1", day(2024, 6, 1), day(2024, 6, 5), domainbooking.StatusConfirmed)
		seedStay(t, f, "bkg-2", "guest-2", day(2024, 6, 10), day(2024, 6, 12), domainbooking.StatusConfirmed)

		submit := submitHandler(f)
		cmd := reviewCommand()
		cmd.Rating = 5
		_, err := submit.Handle(ctx, cmd)
		require.NoError(t, err)
		cmd = reviewCommand()
		cmd.GuestID = "guest-2"
		cmd.Rating = 4
		_, err = submit.Handle(ctx, cmd)
		require.NoError(t, err)

		handler := &ListingStatsHandler{UoWFactory: f.factory}
		stats, err := handler.Handle(ctx, ListingStatsQuery{ListingID: "lst-1"})
		require.NoError(t, err)
		require.NotNil(t, stats.AverageRating)
		assert.InDelta(t, 4.5, *stats.AverageRating, 0.0001)
		assert.Equal(t, 2, stats.TotalReviews)
	})

	t.Run("unknown listing", func(t *testing.T) {
		f := newFixture(t)
		handler := &ListingStatsHandler{UoWFactory: f.factory}
		_, err := handler.Handle(ctx, ListingStatsQuery{ListingID: "lst-unknown"})
		assert.ErrorIs(t, err, domainlistings.ErrNotFound)
	})
}

func TestListReviews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedStay(t, f, "bkg-1", "guest-1", day(2024, 6, 1), day(2024, 6, 5), domainbooking.StatusConfirmed)
	seedStay(t, f, "bkg-2", "guest-2", day(2024, 6, 10), day(2024, 6, 12), domainbooking.StatusConfirmed)

	submit := submitHandler(f)
	first := reviewCommand()
	first.Now = day(2024, 7, 1)
	_, err := submit.Handle(ctx, first)
	require.NoError(t, err)
	second := reviewCommand()
	second.GuestID = "guest-2"
	second.Rating = 3
	second.Now = day(2024, 7, 2)
	_, err = submit.Handle(ctx, second)
	require.NoError(t, err)

	handler := &ListReviewsHandler{UoWFactory: f.factory}

	t.Run("newest first", func(t *testing.T) {
		result, err := handler.Handle(ctx, ListReviewsQuery{ListingID: "lst-1"})
		require.NoError(t, err)
		require.Equal(t, 2, result.Total)
		assert.Equal(t, "guest-2", result.Items[0].GuestID)
		assert.Equal(t, "guest-1", result.Items[1].GuestID)
	})

	t.Run("pagination", func(t *testing.T) {
		result, err := handler.Handle(ctx, ListReviewsQuery{ListingID: "lst-1", Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Equal(t, 1, result.Total)
		assert.Equal(t, "guest-1", result.Items[0].GuestID)
	})

	t.Run("unknown listing", func(t *testing.T) {
		_, err := handler.Handle(ctx, ListReviewsQuery{ListingID: "lst-unknown"})
		assert.ErrorIs(t, err, domainlistings.ErrNotFound)
	})
}
