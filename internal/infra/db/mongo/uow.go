package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlistings "homestay/internal/domain/listings"
	domainreviews "homestay/internal/domain/reviews"
	domainuser "homestay/internal/domain/user"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo sessions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	ListingsRepo domainlistings.Repository
	BookingRepo  domainbooking.Repository
	ReviewsRepo  domainreviews.Repository
	UsersRepo    domainuser.Repository
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:  session,
		listings: f.ListingsRepo,
		bookings: f.BookingRepo,
		reviews:  f.ReviewsRepo,
		users:    f.UsersRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

	listings domainlistings.Repository
	bookings domainbooking.Repository
	reviews  domainreviews.Repository
	users    domainuser.Repository
}

func (u *Unit) Listings() domainlistings.Repository { return u.listings }
func (u *Unit) Bookings() domainbooking.Repository  { return u.bookings }
func (u *Unit) Reviews() domainreviews.Repository   { return u.reviews }
func (u *Unit) Users() domainuser.Repository        { return u.users }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the Mongo session visible to downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
