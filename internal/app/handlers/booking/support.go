package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"travelnest/internal/app/outbox"
	"travelnest/internal/app/uow"
	domainbooking "travelnest/internal/domain/booking"
	domainlistings "travelnest/internal/domain/listings"
	"travelnest/internal/domain/membership"
	domainuser "travelnest/internal/domain/user"
)

var (
	ErrUnitOfWorkRequired = errors.New("booking: unit of work required")
	ErrPaymentsRequired   = errors.New("booking: payment gateway required")
	ErrListingRequired    = errors.New("booking: listing id is required")
)

// Clock returns the current time; handlers fall back to time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c != nil {
		return c().UTC()
	}
	return time.Now().UTC()
}

func loadListing(ctx context.Context, unit uow.UnitOfWork, id string) (*domainlistings.Listing, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrListingRequired
	}
	return unit.Listings().ByID(ctx, domainlistings.ListingID(id))
}

// activeMember reports whether userID holds a live membership. Anonymous
// callers and unknown users are treated as non-members.
func activeMember(ctx context.Context, unit uow.UnitOfWork, userID string, now time.Time) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, nil
	}
	u, err := unit.Users().ByID(ctx, domainuser.ID(userID))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return membership.DefaultLedger().IsActive(u.Membership, now), nil
}

func recordBookingEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, b *domainbooking.Booking) error {
	evs := b.PendingEvents()
	b.ClearEvents()
	return outbox.RecordDomainEvents(ctx, box, encoder, evs)
}
