package uow

import (
	"context"
	"errors"

	domainbooking "homestay/internal/domain/booking"
	domainlistings "homestay/internal/domain/listings"
	domainreviews "homestay/internal/domain/reviews"
	domainuser "homestay/internal/domain/user"
)

// ErrStorageUnavailable marks transient persistence failures (transaction
// conflict, connectivity loss). Safe to retry; every other error kind is
// terminal for the request.
var ErrStorageUnavailable = errors.New("uow: storage temporarily unavailable")

// UnitOfWork coordinates repositories inside a transaction boundary. Every
// write operation either fully applies or leaves state unchanged.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Bookings() domainbooking.Repository
	Reviews() domainreviews.Repository
	Users() domainuser.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts unit of work instances.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
