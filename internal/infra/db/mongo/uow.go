package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"travelnest/internal/app/uow"
	domainbooking "travelnest/internal/domain/booking"
	domaincontact "travelnest/internal/domain/contact"
	domainlistings "travelnest/internal/domain/listings"
	domainreviews "travelnest/internal/domain/reviews"
	domainuser "travelnest/internal/domain/user"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
// Repositories are stateless; the session travels in the context returned by
// Unit.InjectContext.
type Factory struct {
	DB *mongo.Database

	ListingsRepo *ListingRepository
	BookingsRepo *BookingRepository
	UsersRepo    *UserRepository
	ContactsRepo *ContactRepository
	ReviewsRepo  *ReviewRepository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:           db,
		ListingsRepo: NewListingRepository(db),
		BookingsRepo: NewBookingRepository(db),
		UsersRepo:    NewUserRepository(db),
		ContactsRepo: NewContactRepository(db),
		ReviewsRepo:  NewReviewRepository(db),
	}
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadPreference(f.DB.ReadPreference())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:  session,
		listings: f.ListingsRepo,
		bookings: f.BookingsRepo,
		users:    f.UsersRepo,
		contacts: f.ContactsRepo,
		reviews:  f.ReviewsRepo,
	}, nil
}

type Unit struct {
	session mongo.Session
	done    bool

	listings *ListingRepository
	bookings *BookingRepository
	users    *UserRepository
	contacts *ContactRepository
	reviews  *ReviewRepository
}

func (u *Unit) Listings() domainlistings.Repository { return u.listings }
func (u *Unit) Bookings() domainbooking.Repository  { return u.bookings }
func (u *Unit) Users() domainuser.Repository        { return u.users }
func (u *Unit) Contacts() domaincontact.Repository  { return u.contacts }
func (u *Unit) Reviews() domainreviews.Repository   { return u.reviews }

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	defer u.session.EndSession(ctx)
	if err := u.session.CommitTransaction(ctx); err != nil {
		if isWriteConflict(err) {
			return uow.ErrConcurrentUpdate
		}
		return err
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

func isWriteConflict(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.HasErrorLabel("TransientTransactionError") || cmdErr.Code == 112
	}
	return false
}
