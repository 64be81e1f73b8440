package uow

import (
	"context"
	"errors"

	domainbooking "travelnest/internal/domain/booking"
	domaincontact "travelnest/internal/domain/contact"
	domainlistings "travelnest/internal/domain/listings"
	domainreviews "travelnest/internal/domain/reviews"
	domainuser "travelnest/internal/domain/user"
)

// ErrConcurrentUpdate is returned by repositories when a versioned aggregate
// was modified by someone else since it was loaded.
var ErrConcurrentUpdate = errors.New("uow: concurrent update")

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Bookings() domainbooking.Repository
	Users() domainuser.Repository
	Contacts() domaincontact.Repository
	Reviews() domainreviews.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
	// Skip leaves the command without a pipeline unit; its handler opens
	// short units of its own around gateway calls.
	Skip bool
}
