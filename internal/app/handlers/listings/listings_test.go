package listings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainlistings "homestay/internal/domain/listings"
	domainreviews "homestay/internal/domain/reviews"
	domainuser "homestay/internal/domain/user"
	"homestay/internal/infra/storage/memory"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	store   *memory.Store
	factory *memory.Factory
	outbox  *memory.Outbox
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	return fixture{store: store, factory: memory.NewFactory(store), outbox: memory.NewOutbox()}
}

func createCommand() CreateListingCommand {
	return CreateListingCommand{
		HostID:           "host-1",
		Title:            "City Loft",
		Description:      "Bright loft near the river",
		Location:         "Porto",
		PropertyType:     "loft",
		NightlyRateCents: 12000,
		MaxGuests:        2,
		Bedrooms:         1,
		Bathrooms:        1,
		Amenities:        "wifi, kitchen",
		Available:        true,
		Now:              day(2024, 1, 1),
	}
}

func TestCreateListing(t *testing.T) {
	f := newFixture(t)
	handler := &CreateListingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	result, err := handler.Handle(context.Background(), createCommand())
	require.NoError(t, err)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "host-1", result.Host)
	assert.Equal(t, []string{"wifi", "kitchen"}, result.Amenities)
	assert.True(t, result.Available)

	records, err := f.outbox.Claim(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "listing.created", records[0].Name)
}

func TestCreateListingValidation(t *testing.T) {
	f := newFixture(t)
	handler := &CreateListingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	ctx := context.Background()

	t.Run("zero rate", func(t *testing.T) {
		cmd := createCommand()
		cmd.NightlyRateCents = 0
		_, err := handler.Handle(ctx, cmd)
		assert.ErrorIs(t, err, domainlistings.ErrNightlyRate)
	})
	t.Run("no max guests", func(t *testing.T) {
		cmd := createCommand()
		cmd.MaxGuests = 0
		_, err := handler.Handle(ctx, cmd)
		assert.ErrorIs(t, err, domainlistings.ErrGuestsLimit)
	})
	t.Run("empty title", func(t *testing.T) {
		cmd := createCommand()
		cmd.Title = "  "
		_, err := handler.Handle(ctx, cmd)
		assert.ErrorIs(t, err, domainlistings.ErrTitleRequired)
	})
}

func TestUpdateListingOwnership(t *testing.T) {
	f := newFixture(t)
	create := &CreateListingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	ctx := context.Background()

	created, err := create.Handle(ctx, createCommand())
	require.NoError(t, err)

	update := &UpdateListingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	cmd := UpdateListingCommand{
		ListingID:        created.ID,
		HostID:           "host-2",
		Title:            "Hijacked",
		NightlyRateCents: 1,
		MaxGuests:        1,
		Now:              day(2024, 2, 1),
	}
	_, err = update.Handle(ctx, cmd)
	assert.ErrorIs(t, err, domainlistings.ErrForbidden)

	cmd.HostID = "host-1"
	cmd.Title = "City Loft Deluxe"
	cmd.NightlyRateCents = 15000
	cmd.MaxGuests = 3
	result, err := update.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "City Loft Deluxe", result.Title)
	assert.Equal(t, int64(15000), result.NightlyRateCents)
}

func TestSetAvailability(t *testing.T) {
	f := newFixture(t)
	create := &CreateListingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	ctx := context.Background()

	created, err := create.Handle(ctx, createCommand())
	require.NoError(t, err)

	handler := &SetAvailabilityHandler{UoWFactory: f.factory, Outbox: f.outbox}

	_, err = handler.Handle(ctx, SetAvailabilityCommand{ListingID: created.ID, HostID: "host-2", Available: false, Now: day(2024, 2, 1)})
	assert.ErrorIs(t, err, domainlistings.ErrForbidden)

	result, err := handler.Handle(ctx, SetAvailabilityCommand{ListingID: created.ID, HostID: "host-1", Available: false, Now: day(2024, 2, 1)})
	require.NoError(t, err)
	assert.False(t, result.Available)
}

func TestGetSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	create := &CreateListingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	created, err := create.Handle(ctx, createCommand())
	require.NoError(t, err)

	handler := &GetSummaryHandler{UoWFactory: f.factory}

	t.Run("falls back to host id without a profile", func(t *testing.T) {
		summary, err := handler.Handle(ctx, GetSummaryQuery{ListingID: created.ID})
		require.NoError(t, err)
		assert.Equal(t, "host-1", summary.HostName)
		assert.Nil(t, summary.AverageRating)
		assert.Equal(t, 0, summary.TotalReviews)
	})

	t.Run("uses host display name and review stats", func(t *testing.T) {
		require.NoError(t, memory.NewUserRepository(f.store).Save(ctx, &domainuser.User{ID: "host-1", Username: "andre", DisplayName: "André"}))
		reviews := memory.NewReviewRepository(f.store)
		for i, rating := range []int{5, 4} {
			review, err := domainreviews.Submit(domainreviews.SubmitParams{
				ID:        domainreviews.ReviewID([]string{"rev-1", "rev-2"}[i]),
				ListingID: domainlistings.ListingID(created.ID),
				GuestID:   []string{"guest-1", "guest-2"}[i],
				Rating:    rating,
				CreatedAt: day(2024, 7, 1+i),
			})
			require.NoError(t, err)
			require.NoError(t, reviews.Save(ctx, review))
		}

		summary, err := handler.Handle(ctx, GetSummaryQuery{ListingID: created.ID})
		require.NoError(t, err)
		assert.Equal(t, "André", summary.HostName)
		require.NotNil(t, summary.AverageRating)
		assert.InDelta(t, 4.5, *summary.AverageRating, 0.0001)
		assert.Equal(t, 2, summary.TotalReviews)
	})
}
