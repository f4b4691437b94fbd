package memory

import (
	"context"

	"homestay/internal/app/uow"
	"homestay/internal/domain/booking"
	"homestay/internal/domain/listings"
	"homestay/internal/domain/reviews"
	"homestay/internal/domain/user"
)

// Factory hands out units of work over a shared in-memory store. Writes apply
// immediately; Commit and Rollback are bookkeeping only, so memory mode trades
// transactional isolation for zero setup.
type Factory struct {
	store *Store
}

func NewFactory(store *Store) *Factory {
	return &Factory{store: store}
}

func (f *Factory) Begin(_ context.Context, _ uow.TxOptions) (uow.UnitOfWork, error) {
	return &unit{store: f.store}, nil
}

type unit struct {
	store *Store
}

func (u *unit) Listings() listings.Repository { return NewListingRepository(u.store) }
func (u *unit) Bookings() booking.Repository  { return NewBookingRepository(u.store) }
func (u *unit) Reviews() reviews.Repository   { return NewReviewRepository(u.store) }
func (u *unit) Users() user.Repository        { return NewUserRepository(u.store) }

func (u *unit) Commit(context.Context) error   { return nil }
func (u *unit) Rollback(context.Context) error { return nil }
