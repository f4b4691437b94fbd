package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"homestay/internal/domain/shared/events"
)

var (
	ErrNotFound      = errors.New("listings: not found")
	ErrForbidden     = errors.New("listings: actor is not the listing host")
	ErrHostRequired  = errors.New("listings: host is required")
	ErrTitleRequired = errors.New("listings: title is required")
	ErrNightlyRate   = errors.New("listings: nightly rate must be positive")
	ErrGuestsLimit   = errors.New("listings: max guests must be at least 1")
	ErrInvalidRating = errors.New("listings: rating must be between 0 and 5")
)

type ListingID string
type HostID string

// AmenitiesDelimiter separates entries in the stored amenities string.
const AmenitiesDelimiter = ","

// Listing is the catalog record bookings and reviews read against. It is
// never deleted while bookings reference it; hosts soft-disable it through
// the Available flag instead.
type Listing struct {
	ID               ListingID
	Host             HostID
	Title            string
	Description      string
	Location         string
	PropertyType     string
	NightlyRateCents int64
	MaxGuests        int
	Bedrooms         int
	Bathrooms        int
	Amenities        string
	Available        bool
	Rating           float64
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	ByHost(ctx context.Context, host HostID) ([]*Listing, error)
	Save(ctx context.Context, listing *Listing) error
}

type CreateParams struct {
	ID               ListingID
	Host             HostID
	Title            string
	Description      string
	Location         string
	PropertyType     string
	NightlyRateCents int64
	MaxGuests        int
	Bedrooms         int
	Bathrooms        int
	Amenities        string
	Available        bool
	Now              time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listings: id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.NightlyRateCents <= 0 {
		return nil, ErrNightlyRate
	}
	if params.MaxGuests < 1 {
		return nil, ErrGuestsLimit
	}
	now := params.Now.UTC()

	listing := &Listing{
		ID:               params.ID,
		Host:             params.Host,
		Title:            strings.TrimSpace(params.Title),
		Description:      strings.TrimSpace(params.Description),
		Location:         strings.TrimSpace(params.Location),
		PropertyType:     strings.TrimSpace(params.PropertyType),
		NightlyRateCents: params.NightlyRateCents,
		MaxGuests:        params.MaxGuests,
		Bedrooms:         params.Bedrooms,
		Bathrooms:        params.Bathrooms,
		Amenities:        strings.TrimSpace(params.Amenities),
		Available:        params.Available,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	listing.Record(ListingCreated{ListingID: listing.ID, HostID: listing.Host, At: now})
	return listing, nil
}

type UpdateParams struct {
	Title            string
	Description      string
	Location         string
	PropertyType     string
	NightlyRateCents int64
	MaxGuests        int
	Bedrooms         int
	Bathrooms        int
	Amenities        string
	Now              time.Time
}

func (l *Listing) UpdateAttributes(params UpdateParams) error {
	if strings.TrimSpace(params.Title) == "" {
		return ErrTitleRequired
	}
	if params.NightlyRateCents <= 0 {
		return ErrNightlyRate
	}
	if params.MaxGuests < 1 {
		return ErrGuestsLimit
	}
	l.Title = strings.TrimSpace(params.Title)
	l.Description = strings.TrimSpace(params.Description)
	l.Location = strings.TrimSpace(params.Location)
	l.PropertyType = strings.TrimSpace(params.PropertyType)
	l.NightlyRateCents = params.NightlyRateCents
	l.MaxGuests = params.MaxGuests
	l.Bedrooms = params.Bedrooms
	l.Bathrooms = params.Bathrooms
	l.Amenities = strings.TrimSpace(params.Amenities)
	l.UpdatedAt = params.Now.UTC()
	l.Record(ListingUpdated{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

// SetAvailability flips the soft-disable flag. No-op when already in the
// requested state.
func (l *Listing) SetAvailability(available bool, now time.Time) {
	if l.Available == available {
		return
	}
	l.Available = available
	l.UpdatedAt = now.UTC()
	l.Record(ListingAvailabilityChanged{ListingID: l.ID, Available: available, At: l.UpdatedAt})
}

// UpdateRating stores the denormalized average computed from the review set.
func (l *Listing) UpdateRating(average float64, now time.Time) error {
	if average < 0 || average > 5 {
		return ErrInvalidRating
	}
	l.Rating = average
	l.UpdatedAt = now.UTC()
	return nil
}

// AmenitiesList splits the stored amenities string into an ordered list,
// dropping empty entries.
func (l *Listing) AmenitiesList() []string {
	if strings.TrimSpace(l.Amenities) == "" {
		return nil
	}
	parts := strings.Split(l.Amenities, AmenitiesDelimiter)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
