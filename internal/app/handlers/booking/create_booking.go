package booking

import (
	"context"

	"github.com/google/uuid"

	"travelnest/internal/app/commands"
	"travelnest/internal/app/dto"
	"travelnest/internal/app/middleware"
	"travelnest/internal/app/outbox"
	"travelnest/internal/app/policies"
	"travelnest/internal/app/uow"
	domainbooking "travelnest/internal/domain/booking"
	domainpricing "travelnest/internal/domain/pricing"
)

const createBookingKey = "booking.create"

// CreateBookingCommand books a stay directly, without an online payment.
type CreateBookingCommand struct {
	CommandID       string
	ListingID       string `validate:"required"`
	GuestID         string `validate:"required"`
	CheckIn         string `validate:"required"`
	CheckOut        string `validate:"required"`
	Guests          int    `validate:"gte=0,lte=50"`
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &dto.BookingSummary{} }

type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Policies   policies.PricingPolicies
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        Clock
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*dto.BookingSummary, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	now := h.Now.now()
	listing, err := loadListing(ctx, unit, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	member, err := activeMember(ctx, unit, cmd.GuestID, now)
	if err != nil {
		return nil, err
	}
	quote, stay := h.Policies.Direct.QuoteStay(domainpricing.StayRequest{
		Nightly:  listing.NightlyRate,
		CheckIn:  cmd.CheckIn,
		CheckOut: cmd.CheckOut,
		Guests:   cmd.Guests,
	}, member)
	if quote.IsZero() {
		return nil, domainbooking.ErrZeroTotal
	}
	if err := domainbooking.ValidateDateRange(stay.Range(), now); err != nil {
		return nil, err
	}

	id := cmd.CommandID
	if id == "" {
		id = uuid.NewString()
	}
	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:          domainbooking.BookingID(id),
		ListingID:   listing.ID,
		GuestID:     cmd.GuestID,
		RawCheckIn:  cmd.CheckIn,
		RawCheckOut: cmd.CheckOut,
		Stay:        stay,
		Quote:       quote,
		Channel:     domainbooking.ChannelDirect,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}
	if err := recordBookingEvents(ctx, h.Outbox, h.encoder(), booking); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	result := dto.MapBookingSummary(booking, listing)
	return &result, nil
}

func (h *CreateBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateBookingCommand, *dto.BookingSummary] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateBookingCommand)(nil)
