package dto

import (
	"time"

	domainbooking "homestay/internal/domain/booking"
	"homestay/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Booking is the public booking projection. Status is always the effective
// status at read time, never the raw stored state.
type Booking struct {
	ID           string    `json:"id"`
	ListingID    string    `json:"listing_id"`
	GuestID      string    `json:"guest_id"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	Guests       int       `json:"guests"`
	DurationDays int       `json:"duration_days"`
	TotalPrice   MoneyDTO  `json:"total_price"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
	Total int       `json:"total"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

// MapBooking projects a booking applying date-based status inference at now.
func MapBooking(b *domainbooking.Booking, now time.Time) Booking {
	return Booking{
		ID:           string(b.ID),
		ListingID:    string(b.ListingID),
		GuestID:      b.GuestID,
		CheckIn:      b.Range.CheckIn,
		CheckOut:     b.Range.CheckOut,
		Guests:       b.Guests,
		DurationDays: b.Range.Nights(),
		TotalPrice:   MapMoney(b.TotalPrice),
		Status:       string(b.EffectiveStatus(now)),
		CreatedAt:    b.CreatedAt,
	}
}
