package booking

import (
	"context"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/middleware"
	"homestay/internal/app/outbox"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlistings "homestay/internal/domain/listings"
	domainpricing "homestay/internal/domain/pricing"
	domainrange "homestay/internal/domain/shared/daterange"
)

const createBookingKey = "booking.create"

// DefaultCurrency is used for all quotes; multi-currency pricing is out of scope.
const DefaultCurrency = "USD"

type CreateBookingCommand struct {
	CommandID       string    `validate:"required"`
	ListingID       string    `validate:"required"`
	GuestID         string    `validate:"required"`
	CheckIn         time.Time `validate:"required"`
	CheckOut        time.Time `validate:"required"`
	Guests          int       `validate:"gt=0"`
	Now             time.Time
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	BookingID string      `json:"booking_id"`
	Booking   dto.Booking `json:"booking"`
}

// CreateBookingHandler validates a booking request against the catalog and the
// existing interval claims, quotes the stay and persists the new booking.
// Validation is ordered; the first failing check wins.
type CreateBookingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Currency   string
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.BindContext(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	if err := domainbooking.ValidateCheckIn(dr, now); err != nil {
		return nil, err
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if cmd.Guests > listing.MaxGuests {
		return nil, domainbooking.ErrCapacityExceeded
	}
	if !listing.Available {
		return nil, domainbooking.ErrListingUnavailable
	}
	if cmd.GuestID == string(listing.Host) {
		return nil, domainbooking.ErrInvalidGuest
	}

	quote, err := domainpricing.ForStay(listing, dr, h.currency())
	if err != nil {
		return nil, err
	}

	record, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(cmd.CommandID),
		ListingID:  listing.ID,
		GuestID:    cmd.GuestID,
		Range:      dr,
		Guests:     cmd.Guests,
		TotalPrice: quote.Total,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	// The repository runs the overlap check and the insert as one atomic unit
	// per listing; a losing concurrent request gets ErrDateConflict here.
	if err := unit.Bookings().Create(ctx, record); err != nil {
		return nil, err
	}

	pending := record.PendingEvents()
	record.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &CreateBookingResult{
		BookingID: string(record.ID),
		Booking:   dto.MapBooking(record, now),
	}, nil
}

func (h *CreateBookingHandler) currency() string {
	if h.Currency != "" {
		return h.Currency
	}
	return DefaultCurrency
}

func (h *CreateBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateBookingCommand)(nil)
