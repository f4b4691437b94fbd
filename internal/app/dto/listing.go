package dto

import (
	domainlistings "homestay/internal/domain/listings"
)

// ListingStats carries on-read aggregation results. AverageRating is nil when
// the listing has no reviews.
type ListingStats struct {
	AverageRating *float64 `json:"average_rating"`
	TotalReviews  int      `json:"total_reviews"`
}

// ListingSummary is the read-only catalog projection.
type ListingSummary struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Location         string   `json:"location"`
	PropertyType     string   `json:"property_type"`
	NightlyRateCents int64    `json:"nightly_rate_cents"`
	MaxGuests        int      `json:"max_guests"`
	HostName         string   `json:"host_name"`
	Amenities        []string `json:"amenities"`
	Available        bool     `json:"available"`
	AverageRating    *float64 `json:"average_rating"`
	TotalReviews     int      `json:"total_reviews"`
}

// Listing is the full host-facing projection.
type Listing struct {
	ID               string   `json:"id"`
	Host             string   `json:"host"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Location         string   `json:"location"`
	PropertyType     string   `json:"property_type"`
	NightlyRateCents int64    `json:"nightly_rate_cents"`
	MaxGuests        int      `json:"max_guests"`
	Bedrooms         int      `json:"bedrooms"`
	Bathrooms        int      `json:"bathrooms"`
	Amenities        []string `json:"amenities"`
	Available        bool     `json:"available"`
	Rating           float64  `json:"rating"`
}

func MapListing(l *domainlistings.Listing) Listing {
	return Listing{
		ID:               string(l.ID),
		Host:             string(l.Host),
		Title:            l.Title,
		Description:      l.Description,
		Location:         l.Location,
		PropertyType:     l.PropertyType,
		NightlyRateCents: l.NightlyRateCents,
		MaxGuests:        l.MaxGuests,
		Bedrooms:         l.Bedrooms,
		Bathrooms:        l.Bathrooms,
		Amenities:        l.AmenitiesList(),
		Available:        l.Available,
		Rating:           l.Rating,
	}
}

func MapListingSummary(l *domainlistings.Listing, hostName string, stats ListingStats) ListingSummary {
	return ListingSummary{
		ID:               string(l.ID),
		Title:            l.Title,
		Location:         l.Location,
		PropertyType:     l.PropertyType,
		NightlyRateCents: l.NightlyRateCents,
		MaxGuests:        l.MaxGuests,
		HostName:         hostName,
		Amenities:        l.AmenitiesList(),
		Available:        l.Available,
		AverageRating:    stats.AverageRating,
		TotalReviews:     stats.TotalReviews,
	}
}
