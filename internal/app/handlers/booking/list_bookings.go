package booking

import (
	"context"
	"sort"
	"time"

	"homestay/internal/app/dto"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlistings "homestay/internal/domain/listings"
)

const listBookingsKey = "booking.list"

// ListBookingsQuery filters bookings by listing, guest and effective status.
// Empty fields match everything.
type ListBookingsQuery struct {
	ListingID string
	GuestID   string
	Status    string
	Now       time.Time
}

func (q ListBookingsQuery) Key() string { return listBookingsKey }

type ListBookingsHandler struct {
	UoWFactory uow.Factory
}

func (h *ListBookingsHandler) Handle(ctx context.Context, query ListBookingsQuery) (dto.BookingCollection, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.BookingCollection{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.BookingCollection{}, err
		}
		ctx = uow.BindContext(ctx, unit)
		defer func() { _ = unit.Rollback(ctx) }()
	}

	now := query.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var statusFilter domainbooking.Status
	if query.Status != "" {
		parsed, valid := domainbooking.ParseStatus(query.Status)
		if !valid {
			return dto.BookingCollection{Items: []dto.Booking{}}, nil
		}
		statusFilter = parsed
	}

	records, err := unit.Bookings().List(ctx, domainbooking.ListFilter{
		ListingID: domainlistings.ListingID(query.ListingID),
		GuestID:   query.GuestID,
	})
	if err != nil {
		return dto.BookingCollection{}, err
	}

	items := make([]dto.Booking, 0, len(records))
	for _, record := range records {
		if statusFilter != "" && record.EffectiveStatus(now) != statusFilter {
			continue
		}
		items = append(items, dto.MapBooking(record, now))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	return dto.BookingCollection{Items: items, Total: len(items)}, nil
}

var _ queries.Handler[ListBookingsQuery, dto.BookingCollection] = (*ListBookingsHandler)(nil)
