package listings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"travelnest/internal/app/commands"
	"travelnest/internal/app/dto"
	"travelnest/internal/app/outbox"
	"travelnest/internal/app/policies"
	"travelnest/internal/app/uow"
	domainlistings "travelnest/internal/domain/listings"
	"travelnest/internal/domain/shared/money"
)

const (
	createListingKey = "manager.listings.create"
	updateListingKey = "manager.listings.update"
	deleteListingKey = "manager.listings.delete"
)

var (
	ErrListingNotOwned = errors.New("listings: listing belongs to another manager")
	ErrActorRequired   = errors.New("listings: actor id is required")
)

// Actor is the authenticated user issuing a listing command.
type Actor struct {
	ID      string
	IsAdmin bool
}

type ListingPayload struct {
	Title       string `validate:"required,max=200"`
	Description string `validate:"max=5000"`
	ImageURL    string `validate:"omitempty,url"`
	NightlyRate int64  `validate:"gt=0"`
	Currency    string `validate:"omitempty,len=3"`
	Location    string `validate:"required"`
	Country     string `validate:"required"`
}

func (p ListingPayload) details() domainlistings.Details {
	return domainlistings.Details{
		Title:       p.Title,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		NightlyRate: money.Money{Amount: p.NightlyRate, Currency: strings.ToUpper(strings.TrimSpace(p.Currency))},
		Location:    p.Location,
		Country:     p.Country,
	}
}

type CreateListingCommand struct {
	Actor   Actor
	Payload ListingPayload
}

func (c CreateListingCommand) Key() string { return createListingKey }

type CreateListingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*dto.ListingDetail, error) {
	if strings.TrimSpace(cmd.Actor.ID) == "" {
		return nil, ErrActorRequired
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:      domainlistings.ListingID(uuid.NewString()),
		Owner:   domainlistings.OwnerID(cmd.Actor.ID),
		Details: cmd.Payload.details(),
		Now:     time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := recordListingEvents(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("listing created", "listing_id", listing.ID, "owner_id", cmd.Actor.ID)
	}
	result := dto.MapListingDetail(listing)
	return &result, nil
}

type UpdateListingCommand struct {
	Actor     Actor
	ListingID string `validate:"required"`
	Payload   ListingPayload
}

func (c UpdateListingCommand) Key() string { return updateListingKey }

type UpdateListingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *UpdateListingHandler) Handle(ctx context.Context, cmd UpdateListingCommand) (*dto.ListingDetail, error) {
	unit, listing, err := loadManagedListing(ctx, cmd.Actor, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	if err := listing.Update(cmd.Payload.details(), time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := recordListingEvents(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("listing updated", "listing_id", listing.ID, "actor_id", cmd.Actor.ID)
	}
	result := dto.MapListingDetail(listing)
	return &result, nil
}

type DeleteListingCommand struct {
	Actor     Actor
	ListingID string `validate:"required"`
}

func (c DeleteListingCommand) Key() string { return deleteListingKey }

type DeleteListingHandler struct {
	Images  policies.ImageStorage
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

// Handle removes the listing and its reviews. Existing bookings keep their
// listing id and render without a snapshot afterwards.
func (h *DeleteListingHandler) Handle(ctx context.Context, cmd DeleteListingCommand) (*struct{}, error) {
	unit, listing, err := loadManagedListing(ctx, cmd.Actor, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	listing.MarkDeleted(time.Now())
	if err := unit.Listings().Delete(ctx, listing.ID); err != nil {
		return nil, err
	}
	if err := unit.Reviews().DeleteByListing(ctx, listing.ID); err != nil {
		return nil, err
	}
	if err := recordListingEvents(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return nil, err
	}
	if h.Images != nil && listing.ImageURL != domainlistings.DefaultImageURL {
		if err := h.Images.Remove(ctx, listing.ImageURL); err != nil && h.Logger != nil {
			h.Logger.Warn("listing image cleanup failed", "listing_id", listing.ID, "error", err)
		}
	}

	if h.Logger != nil {
		h.Logger.Info("listing deleted", "listing_id", listing.ID, "actor_id", cmd.Actor.ID)
	}
	return &struct{}{}, nil
}

func loadManagedListing(ctx context.Context, actor Actor, listingID string) (uow.UnitOfWork, *domainlistings.Listing, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return nil, nil, ErrActorRequired
	}
	if strings.TrimSpace(listingID) == "" {
		return nil, nil, errors.New("listing id is required")
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, nil, uow.ErrUnitOfWorkMissing
	}
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(listingID))
	if err != nil {
		return nil, nil, err
	}
	if !listing.ManageableBy(actor.ID, actor.IsAdmin) {
		return nil, nil, ErrListingNotOwned
	}
	return unit, listing, nil
}

func recordListingEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, listing *domainlistings.Listing) error {
	evs := listing.PendingEvents()
	listing.ClearEvents()
	return outbox.RecordDomainEvents(ctx, box, encoder, evs)
}

var _ commands.Handler[CreateListingCommand, *dto.ListingDetail] = (*CreateListingHandler)(nil)
var _ commands.Handler[UpdateListingCommand, *dto.ListingDetail] = (*UpdateListingHandler)(nil)
var _ commands.Handler[DeleteListingCommand, *struct{}] = (*DeleteListingHandler)(nil)
