package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"homestay/internal/domain/listings"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/events"
	"homestay/internal/domain/shared/money"
)

var (
	// ErrInvalidDateRange mirrors the range value-type error so callers can
	// match a single kind for malformed stay intervals.
	ErrInvalidDateRange = daterange.ErrInvalidRange

	ErrPastDate           = errors.New("booking: check-in date is in the past")
	ErrNotFound           = errors.New("booking: not found")
	ErrCapacityExceeded   = errors.New("booking: guest count exceeds listing capacity")
	ErrListingUnavailable = errors.New("booking: listing is not available")
	ErrDateConflict       = errors.New("booking: listing is already booked for the selected dates")
	ErrInvalidGuest       = errors.New("booking: guest must not be the listing host")
	ErrInvalidGuests      = errors.New("booking: guest count must be positive")
	ErrInvalidTransition  = errors.New("booking: invalid state transition")
	ErrForbidden          = errors.New("booking: actor is not the guest or the listing host")
)

type BookingID string

// Status covers both stored states and the read-time COMPLETED overlay.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	// StatusCompleted is never stored; it is inferred from the check-out date
	// at every read boundary.
	StatusCompleted Status = "COMPLETED"
)

// ParseStatus maps external status strings (any case) onto known statuses.
func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, true
	case StatusConfirmed:
		return StatusConfirmed, true
	case StatusCancelled:
		return StatusCancelled, true
	case StatusCompleted:
		return StatusCompleted, true
	}
	return "", false
}

// Booking is the authoritative record of an interval claim on a listing.
// Records are never physically deleted; cancellation and completion keep them
// around for review linkage and history.
type Booking struct {
	ID         BookingID
	ListingID  listings.ListingID
	GuestID    string
	Range      daterange.DateRange
	Guests     int
	TotalPrice money.Money
	State      Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
	events.EventRecorder
}

// ListFilter restricts reads; zero values mean "any".
type ListFilter struct {
	ListingID listings.ListingID
	GuestID   string
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	// Create atomically verifies that no pending or confirmed booking on the
	// same listing overlaps the new range, then inserts. The check and the
	// insert are one unit per listing; concurrent overlapping requests yield
	// exactly one success and ErrDateConflict for the rest.
	Create(ctx context.Context, booking *Booking) error
	Save(ctx context.Context, booking *Booking) error
	List(ctx context.Context, filter ListFilter) ([]*Booking, error)
}

type CreateParams struct {
	ID         BookingID
	ListingID  listings.ListingID
	GuestID    string
	Range      daterange.DateRange
	Guests     int
	TotalPrice money.Money
	CreatedAt  time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.GuestID == "" {
		return nil, errors.New("booking: guest id required")
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.TotalPrice.Amount <= 0 {
		return nil, errors.New("booking: total price must be positive")
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:         params.ID,
		ListingID:  params.ListingID,
		GuestID:    params.GuestID,
		Range:      params.Range,
		Guests:     params.Guests,
		TotalPrice: params.TotalPrice,
		State:      StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	b.Record(BookingRequested{BookingID: b.ID, ListingID: b.ListingID, GuestID: b.GuestID, Range: b.Range, GuestsCount: b.Guests, Total: b.TotalPrice, At: now})
	return b, nil
}

// ValidateCheckIn rejects stays starting before the date of now.
func ValidateCheckIn(dr daterange.DateRange, now time.Time) error {
	if dr.BeginsBefore(now) {
		return ErrPastDate
	}
	return nil
}

// EffectiveStatus reconciles the stored state against the current date:
// a pending or confirmed booking whose check-out is past reads as completed,
// while cancellation always wins. Pure; applied at every read boundary.
func (b *Booking) EffectiveStatus(now time.Time) Status {
	if b.State == StatusCancelled {
		return StatusCancelled
	}
	if b.Range.EndedBy(now) {
		return StatusCompleted
	}
	return b.State
}

// BlocksRange reports whether this booking holds the interval claim that a new
// range would collide with. Only stored pending and confirmed states count.
func (b *Booking) BlocksRange(dr daterange.DateRange) bool {
	if b.State != StatusPending && b.State != StatusConfirmed {
		return false
	}
	return b.Range.Overlaps(dr)
}

// Confirm moves a pending booking to confirmed. Completed-inferred bookings
// accept no further transitions.
func (b *Booking) Confirm(now time.Time) error {
	if b.Range.EndedBy(now) {
		return ErrInvalidTransition
	}
	if b.State != StatusPending {
		return ErrInvalidTransition
	}
	b.State = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, ListingID: b.ListingID, Range: b.Range, Total: b.TotalPrice, At: b.UpdatedAt})
	return nil
}

// Cancel is the only explicit terminal transition; completion is date-driven
// and never requested through here.
func (b *Booking) Cancel(reason string, now time.Time) error {
	if b.Range.EndedBy(now) {
		return ErrInvalidTransition
	}
	switch b.State {
	case StatusPending, StatusConfirmed:
	default:
		return ErrInvalidTransition
	}
	b.State = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, ListingID: b.ListingID, Reason: reason, At: b.UpdatedAt})
	return nil
}
