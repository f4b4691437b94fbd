package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "homestay/internal/domain/booking"
	domainlistings "homestay/internal/domain/listings"
	domainreviews "homestay/internal/domain/reviews"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
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
	ctx := context.Background()

	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:               "lst-1",
		Host:             "host-1",
		Title:            "Forest Cabin",
		NightlyRateCents: 8000,
		MaxGuests:        3,
		Available:        true,
		Now:              day(2024, 1, 1),
	})
	require.NoError(t, err)
	require.NoError(t, memory.NewListingRepository(store).Save(ctx, listing))
	require.NoError(t, memory.NewUserRepository(store).Save(ctx, &domainuser.User{ID: "host-1", DisplayName: "Nora"}))

	return fixture{store: store, factory: memory.NewFactory(store), outbox: memory.NewOutbox()}
}

// seedStay stores a booking directly; handler-level date checks do not apply,
// so past stays can be arranged.
func seedStay(t *testing.T, f fixture, id, guestID string, checkIn, checkOut time.Time, state domainbooking.Status) {
	t.Helper()
	dr, err := daterange.New(checkIn, checkOut)
	require.NoError(t, err)
	record, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(id),
		ListingID:  "lst-1",
		GuestID:    guestID,
		Range:      dr,
		Guests:     2,
		TotalPrice: money.Must(16000, "USD"),
		CreatedAt:  checkIn.AddDate(0, -1, 0),
	})
	require.NoError(t, err)
	record.State = state
	record.ClearEvents()
	require.NoError(t, memory.NewBookingRepository(f.store).Create(context.Background(), record))
}

func submitHandler(f fixture) *SubmitReviewHandler {
	return &SubmitReviewHandler{UoWFactory: f.factory, Outbox: f.outbox}
}

func reviewCommand() SubmitReviewCommand {
	return SubmitReviewCommand{
		ListingID: "lst-1",
		GuestID:   "guest-1",
		Rating:    4,
		Comment:   "lovely stay",
		Now:       day(2024, 7, 1),
	}
}

func TestSubmitReview(t *testing.T) {
	f := newFixture(t)
	seedStay(t, f, "bkg-1", "guest-1", day(2024, 6, 1), day(2024, 6, 5), domainbooking.StatusConfirmed)

	result, err := submitHandler(f).Handle(context.Background(), reviewCommand())
	require.NoError(t, err)
	assert.Equal(t, 4, result.Rating)
	assert.Equal(t, "lovely stay", result.Comment)
	assert.Empty(t, result.BookingID)

	records, err := f.outbox.Claim(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "review.submitted", records[0].Name)
}

func TestSubmitReviewRefreshesListingRating(t *testing.T) {
	f := newFixture(t)
	seedStay(t, f, "bkg-1", "guest-1", day(2024, 6, 1), day(2024, 6, 5), domainbooking.StatusConfirmed)
	seedStay(t, f, "bkg-2", "guest-2", day(2024, 6, 10), day(2024, 6, 12), domainbooking.StatusConfirmed)

	handler := submitHandler(f)
	ctx := context.Background()

	cmd := reviewCommand()
	cmd.Rating = 5
	_, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)

	second := reviewCommand()
	second.GuestID = "guest-2"
	second.Rating = 2
	_, err = handler.Handle(ctx, second)
	require.NoError(t, err)

	listing, err := memory.NewListingRepository(f.store).ByID(ctx, "lst-1")
	require.NoError(t, err)
	assert.InDelta(t, 3.5, listing.Rating, 0.0001)
}

func TestSubmitReviewEligibility(t *testing.T) {
	ctx := context.Background()

	t.Run("no stay at all", func(t *testing.T) {
		f := newFixture(t)
		_, err := submitHandler(f).Handle(ctx, reviewCommand())
		assert.ErrorIs(t, err, domainreviews.ErrNotEligible)
	})

	t.Run("upcoming stay does not qualify", func(t *testing.T) {
		f := newFixture(t)
		seedStay(t, f, "bkg-1", "guest-1", day(2024, 8, 1), day(2024, 8, 5), domainbooking.StatusConfirmed)
		_, err := submitHandler(f).Handle(ctx, reviewCommand())
		assert.ErrorIs(t, err, domainreviews.ErrNotEligible)
	})

	t.Run("cancelled stay does not qualify", func(t *testing.T) {
		f := newFixture(t)
		seedStay(t, f, "bkg-1", "guest-1", day(2024, 6, 1), day(2024, 6, 5), domainbooking.StatusCancelled)
		_, err := submitHandler(f).Handle(ctx, reviewCommand())
		assert.ErrorIs(t, err, domainreviews.ErrNotEligible)
	})

	t.Run("past pending stay qualifies", func(t *testing.T) {
		f := newFixture(t)
		seedStay(t, f, "bkg-1", "guest-1", day(2024, 6, 1), day(2024, 6, 5), domainbooking.StatusPending)
		_, err := submitHandler(f).Handle(ctx, reviewCommand())
		assert.NoError(t, err)
	})
}

func TestSubmitReviewDuplicate(t *testing.T) {
	f := newFixture(t)
	seedStay(t, f, "bkg-1", "guest-1", day(2024, 6, 1), day(2024, 6, 5), domainbooking.StatusConfirmed)
	handler := submitHandler(f)
	ctx := context.Background()

	_, err := handler.Handle(ctx, reviewCommand())
	require.NoError(t, err)

	again := reviewCommand()
	again.Rating = 1
	_, err = handler.Handle(ctx, again)
	assert.ErrorIs(t, err, domainreviews.ErrDuplicateReview)
}

func TestSubmitReviewValidationOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("rating beats unknown listing", func(t *testing.T) {
		f := newFixture(t)
		cmd := reviewCommand()
		cmd.ListingID = "lst-unknown"
		cmd.Rating = 0
		_, err := submitHandler(f).Handle(ctx, cmd)
		assert.ErrorIs(t, err, domainreviews.ErrInvalidRating)
	})

	t.Run("unknown listing beats eligibility", func(t *testing.T) {
		f := newFixture(t)
		cmd := reviewCommand()
		cmd.ListingID = "lst-unknown"
		_, err := submitHandler(f).Handle(ctx, cmd)
		assert.ErrorIs(t, err, domainlistings.ErrNotFound)
	})
}

func TestSubmitReviewBookingReference(t *testing.T) {
	ctx := context.Background()

	t.Run("resolvable id is attached", func(t *testing.T) {
		f := newFixture(t)
		seedStay(t, f, "bkg-1", "guest-1", day(2024, 6, 1), day(2024, 6, 5), domainbooking.StatusConfirmed)
		cmd := reviewCommand()
		cmd.BookingID = "bkg-1"
		result, err := submitHandler(f).Handle(ctx, cmd)
		require.NoError(t, err)
		assert.Equal(t, "bkg-1", result.BookingID)
	})

	t.Run("unresolvable id is dropped, not rejected", func(t *testing.T) {
		f := newFixture(t)
		seedStay(t, f, "bkg-1", "guest-1", day(2024, 6, 1), day(2024, 6, 5), domainbooking.StatusConfirmed)
		cmd := reviewCommand()
		cmd.BookingID = "bkg-phantom"
		result, err := submitHandler(f).Handle(ctx, cmd)
		require.NoError(t, err)
		assert.Empty(t, result.BookingID)
	})
}
