package memory

import (
	"sync"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/listings"
	"homestay/internal/domain/reviews"
	"homestay/internal/domain/user"
)

// Store keeps every aggregate in process memory. It backs local development
// and the test suites; all repositories handed out by the unit of work share
// one store instance.
type Store struct {
	mu       sync.RWMutex
	listings map[listings.ListingID]*listings.Listing
	bookings map[booking.BookingID]*booking.Booking
	reviews  map[reviews.ReviewID]*reviews.Review
	users    map[string]*user.User

	// listingLocks serializes booking creation per listing so the overlap
	// check and the insert act as one unit.
	lockMu       sync.Mutex
	listingLocks map[listings.ListingID]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		listings:     make(map[listings.ListingID]*listings.Listing),
		bookings:     make(map[booking.BookingID]*booking.Booking),
		reviews:      make(map[reviews.ReviewID]*reviews.Review),
		users:        make(map[string]*user.User),
		listingLocks: make(map[listings.ListingID]*sync.Mutex),
	}
}

func (s *Store) listingLock(id listings.ListingID) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.listingLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.listingLocks[id] = lock
	}
	return lock
}

func cloneListing(l *listings.Listing) *listings.Listing {
	cp := *l
	cp.ClearEvents()
	return &cp
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	cp := *b
	cp.ClearEvents()
	return &cp
}

func cloneReview(r *reviews.Review) *reviews.Review {
	cp := *r
	cp.ClearEvents()
	return &cp
}

func cloneUser(u *user.User) *user.User {
	cp := *u
	return &cp
}
