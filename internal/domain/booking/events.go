package booking

import (
	"time"

	"homestay/internal/domain/listings"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
)

type BookingRequested struct {
	BookingID   BookingID
	ListingID   listings.ListingID
	GuestID     string
	Range       daterange.DateRange
	GuestsCount int
	Total       money.Money
	At          time.Time
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID BookingID
	ListingID listings.ListingID
	Range     daterange.DateRange
	Total     money.Money
	At        time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID BookingID
	ListingID listings.ListingID
	Reason    string
	At        time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }
