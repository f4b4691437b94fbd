package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "homestay/internal/domain/booking"
)

func seedBooking(t *testing.T, f fixture, id string, checkIn, checkOut time.Time) {
	t.Helper()
	cmd := validCommand(id)
	cmd.CheckIn = checkIn
	cmd.CheckOut = checkOut
	_, err := f.createHandler().Handle(context.Background(), cmd)
	require.NoError(t, err)
}

func TestConfirmBooking(t *testing.T) {
	f := newFixture(t)
	seedBooking(t, f, "bkg-1", day(2024, 6, 1), day(2024, 6, 5))
	handler := &ConfirmBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	ctx := context.Background()

	t.Run("only the host confirms", func(t *testing.T) {
		_, err := handler.Handle(ctx, ConfirmBookingCommand{BookingID: "bkg-1", ActorID: "guest-1", Now: day(2024, 5, 2)})
		assert.ErrorIs(t, err, domainbooking.ErrForbidden)
	})

	t.Run("host confirms pending", func(t *testing.T) {
		result, err := handler.Handle(ctx, ConfirmBookingCommand{BookingID: "bkg-1", ActorID: "host-1", Now: day(2024, 5, 2)})
		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", result.Status)
	})

	t.Run("second confirm is rejected", func(t *testing.T) {
		_, err := handler.Handle(ctx, ConfirmBookingCommand{BookingID: "bkg-1", ActorID: "host-1", Now: day(2024, 5, 3)})
		assert.ErrorIs(t, err, domainbooking.ErrInvalidTransition)
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, err := handler.Handle(ctx, ConfirmBookingCommand{BookingID: "bkg-nope", ActorID: "host-1", Now: day(2024, 5, 2)})
		assert.ErrorIs(t, err, domainbooking.ErrNotFound)
	})
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("guest cancels own booking", func(t *testing.T) {
		f := newFixture(t)
		seedBooking(t, f, "bkg-1", day(2024, 6, 1), day(2024, 6, 5))
		handler := &CancelBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
		result, err := handler.Handle(ctx, CancelBookingCommand{BookingID: "bkg-1", ActorID: "guest-1", Reason: "plans changed", Now: day(2024, 5, 2)})
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", result.Status)
	})

	t.Run("host cancels too", func(t *testing.T) {
		f := newFixture(t)
		seedBooking(t, f, "bkg-1", day(2024, 6, 1), day(2024, 6, 5))
		handler := &CancelBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
		_, err := handler.Handle(ctx, CancelBookingCommand{BookingID: "bkg-1", ActorID: "host-1", Now: day(2024, 5, 2)})
		assert.NoError(t, err)
	})

	t.Run("a third party may not cancel", func(t *testing.T) {
		f := newFixture(t)
		seedBooking(t, f, "bkg-1", day(2024, 6, 1), day(2024, 6, 5))
		handler := &CancelBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
		_, err := handler.Handle(ctx, CancelBookingCommand{BookingID: "bkg-1", ActorID: "guest-2", Now: day(2024, 5, 2)})
		assert.ErrorIs(t, err, domainbooking.ErrForbidden)
	})

	t.Run("completed stays cannot be cancelled", func(t *testing.T) {
		f := newFixture(t)
		seedBooking(t, f, "bkg-1", day(2024, 6, 1), day(2024, 6, 5))
		handler := &CancelBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
		_, err := handler.Handle(ctx, CancelBookingCommand{BookingID: "bkg-1", ActorID: "guest-1", Now: day(2024, 6, 10)})
		assert.ErrorIs(t, err, domainbooking.ErrInvalidTransition)
	})
}

func TestListBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seedBooking(t, f, "bkg-past", day(2024, 5, 1), day(2024, 5, 4))
	seedBooking(t, f, "bkg-next", day(2024, 6, 1), day(2024, 6, 5))
	seedBooking(t, f, "bkg-gone", day(2024, 7, 1), day(2024, 7, 3))

	cancel := &CancelBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	_, err := cancel.Handle(ctx, CancelBookingCommand{BookingID: "bkg-gone", ActorID: "guest-1", Now: day(2024, 5, 2)})
	require.NoError(t, err)

	handler := &ListBookingsHandler{UoWFactory: f.factory}
	now := day(2024, 5, 10)

	t.Run("all for guest", func(t *testing.T) {
		result, err := handler.Handle(ctx, ListBookingsQuery{GuestID: "guest-1", Now: now})
		require.NoError(t, err)
		assert.Equal(t, 3, result.Total)
	})

	t.Run("by listing", func(t *testing.T) {
		result, err := handler.Handle(ctx, ListBookingsQuery{ListingID: "lst-1", Now: now})
		require.NoError(t, err)
		assert.Equal(t, 3, result.Total)
	})

	t.Run("completed is inferred from dates", func(t *testing.T) {
		result, err := handler.Handle(ctx, ListBookingsQuery{GuestID: "guest-1", Status: "completed", Now: now})
		require.NoError(t, err)
		require.Equal(t, 1, result.Total)
		assert.Equal(t, "bkg-past", result.Items[0].ID)
		assert.Equal(t, "COMPLETED", result.Items[0].Status)
	})

	t.Run("pending excludes past stays", func(t *testing.T) {
		result, err := handler.Handle(ctx, ListBookingsQuery{GuestID: "guest-1", Status: "PENDING", Now: now})
		require.NoError(t, err)
		require.Equal(t, 1, result.Total)
		assert.Equal(t, "bkg-next", result.Items[0].ID)
	})

	t.Run("cancelled", func(t *testing.T) {
		result, err := handler.Handle(ctx, ListBookingsQuery{GuestID: "guest-1", Status: "cancelled", Now: now})
		require.NoError(t, err)
		require.Equal(t, 1, result.Total)
		assert.Equal(t, "bkg-gone", result.Items[0].ID)
	})

	t.Run("unknown status yields empty result", func(t *testing.T) {
		result, err := handler.Handle(ctx, ListBookingsQuery{GuestID: "guest-1", Status: "archived", Now: now})
		require.NoError(t, err)
		assert.Equal(t, 0, result.Total)
		assert.Empty(t, result.Items)
	})
}
