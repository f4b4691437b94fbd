package memory

import (
	"context"
	"sort"
	"time"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/listings"
	"homestay/internal/domain/reviews"
)

type ListingRepository struct {
	store *Store
}

func NewListingRepository(store *Store) *ListingRepository {
	return &ListingRepository{store: store}
}

func (r *ListingRepository) ByID(_ context.Context, id listings.ListingID) (*listings.Listing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	l, ok := r.store.listings[id]
	if !ok {
		return nil, listings.ErrNotFound
	}
	return cloneListing(l), nil
}

func (r *ListingRepository) ByHost(_ context.Context, host listings.HostID) ([]*listings.Listing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*listings.Listing
	for _, l := range r.store.listings {
		if l.Host == host {
			out = append(out, cloneListing(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ListingRepository) Save(_ context.Context, listing *listings.Listing) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	listing.Version++
	r.store.listings[listing.ID] = cloneListing(listing)
	return nil
}

type BookingRepository struct {
	store *Store
}

func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

func (r *BookingRepository) ByID(_ context.Context, id booking.BookingID) (*booking.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return cloneBooking(b), nil
}

// Create takes the per-listing lock for the whole check-then-insert sequence.
// Concurrent overlapping requests for the same listing serialize here and all
// but the first see ErrDateConflict.
func (r *BookingRepository) Create(_ context.Context, b *booking.Booking) error {
	lock := r.store.listingLock(b.ListingID)
	lock.Lock()
	defer lock.Unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.bookings {
		if existing.ListingID != b.ListingID {
			continue
		}
		if existing.BlocksRange(b.Range) {
			return booking.ErrDateConflict
		}
	}
	b.Version = 1
	r.store.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (r *BookingRepository) Save(_ context.Context, b *booking.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.bookings[b.ID]; !ok {
		return booking.ErrNotFound
	}
	b.Version++
	r.store.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (r *BookingRepository) List(_ context.Context, filter booking.ListFilter) ([]*booking.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*booking.Booking
	for _, b := range r.store.bookings {
		if filter.ListingID != "" && b.ListingID != filter.ListingID {
			continue
		}
		if filter.GuestID != "" && b.GuestID != filter.GuestID {
			continue
		}
		out = append(out, cloneBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type ReviewRepository struct {
	store *Store
}

func NewReviewRepository(store *Store) *ReviewRepository {
	return &ReviewRepository{store: store}
}

func (r *ReviewRepository) ByGuestListing(_ context.Context, guestID string, listingID listings.ListingID) (*reviews.Review, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, rev := range r.store.reviews {
		if rev.GuestID == guestID && rev.ListingID == listingID {
			return cloneReview(rev), nil
		}
	}
	return nil, reviews.ErrNotFound
}

func (r *ReviewRepository) ListByListing(_ context.Context, listingID listings.ListingID, limit, offset int) ([]*reviews.Review, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*reviews.Review
	for _, rev := range r.store.reviews {
		if rev.ListingID == listingID {
			out = append(out, cloneReview(rev))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *ReviewRepository) Save(_ context.Context, review *reviews.Review) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	// One review per (guest, listing), same as the unique index in the Mongo
	// repository. The store lock makes the check and the insert one step.
	for _, existing := range r.store.reviews {
		if existing.GuestID == review.GuestID && existing.ListingID == review.ListingID && existing.ID != review.ID {
			return reviews.ErrDuplicateReview
		}
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	r.store.reviews[review.ID] = cloneReview(review)
	return nil
}
