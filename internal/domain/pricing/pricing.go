package pricing

import (
	"errors"

	"homestay/internal/domain/listings"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
)

var (
	ErrInvalidNights = errors.New("pricing: nights must be positive")
	ErrInvalidRate   = errors.New("pricing: nightly rate must be positive")
)

// Quote is the flat stay price: nightly rate times whole nights. The total is
// fixed when the booking is created and never recomputed afterwards.
type Quote struct {
	Nights  int
	Nightly money.Money
	Total   money.Money
}

// ForStay derives the quote for a listing over the given range.
func ForStay(listing *listings.Listing, dr daterange.DateRange, currency string) (Quote, error) {
	nights := dr.Nights()
	if nights <= 0 {
		return Quote{}, ErrInvalidNights
	}
	if listing.NightlyRateCents <= 0 {
		return Quote{}, ErrInvalidRate
	}
	nightly, err := money.New(listing.NightlyRateCents, currency)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Nights:  nights,
		Nightly: nightly,
		Total:   nightly.Multiply(int64(nights)),
	}, nil
}
