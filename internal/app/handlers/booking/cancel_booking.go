package booking

import (
	"context"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/outbox"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID string `validate:"required"`
	ActorID   string `validate:"required"`
	Reason    string
	Now       time.Time
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type CancelBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// CancelBookingHandler performs the explicit cancel transition. Only the guest
// or the listing host may cancel, and only while the stay has not ended.
type CancelBookingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
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

	record, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	listing, err := unit.Listings().ByID(ctx, record.ListingID)
	if err != nil {
		return nil, err
	}
	if cmd.ActorID != record.GuestID && cmd.ActorID != string(listing.Host) {
		return nil, domainbooking.ErrForbidden
	}

	if err := record.Cancel(cmd.Reason, now); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, record); err != nil {
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

	return &CancelBookingResult{BookingID: string(record.ID), Status: string(record.State)}, nil
}

func (h *CancelBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
