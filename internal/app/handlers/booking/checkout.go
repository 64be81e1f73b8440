package booking

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"travelnest/internal/app/commands"
	"travelnest/internal/app/dto"
	handlersupport "travelnest/internal/app/handlers/support"
	"travelnest/internal/app/middleware"
	"travelnest/internal/app/outbox"
	"travelnest/internal/app/policies"
	"travelnest/internal/app/uow"
	domainbooking "travelnest/internal/domain/booking"
	domainlistings "travelnest/internal/domain/listings"
	domainpricing "travelnest/internal/domain/pricing"
	"travelnest/internal/domain/shared/daterange"
)

const (
	startCheckoutKey   = "booking.checkout.start"
	confirmCheckoutKey = "booking.checkout.confirm"

	purposeBooking = "booking"
)

// StartCheckoutCommand opens a gateway order for a stay priced with the
// gateway policy. Nothing is persisted until the payment is confirmed.
type StartCheckoutCommand struct {
	ListingID string `validate:"required"`
	GuestID   string `validate:"required"`
	CheckIn   string `validate:"required"`
	CheckOut  string `validate:"required"`
	Guests    int    `validate:"gte=0,lte=50"`
}

func (c StartCheckoutCommand) Key() string { return startCheckoutKey }

type StartCheckoutHandler struct {
	UoWFactory uow.UoWFactory
	Policies   policies.PricingPolicies
	Payments   policies.PaymentsPort
	Now        Clock
}

func (h *StartCheckoutHandler) Handle(ctx context.Context, cmd StartCheckoutCommand) (*dto.CheckoutOrder, error) {
	if h.Payments == nil {
		return nil, ErrPaymentsRequired
	}
	listing, quote, stay, err := h.quote(ctx, cmd)
	if err != nil {
		return nil, err
	}

	// the read unit is closed before the gateway round trip
	receipt := "booking_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	order, err := h.Payments.CreateOrder(ctx, quote.TotalAmount, receipt, checkoutNotes(string(listing.ID), cmd.GuestID, stay, quote.Guests))
	if err != nil {
		return nil, err
	}

	quoteDTO := dto.MapQuote(string(listing.ID), quote, stay)
	return &dto.CheckoutOrder{
		OrderID:  order.ID,
		KeyID:    h.Payments.PublicKey(),
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  order.Receipt,
		Quote:    &quoteDTO,
	}, nil
}

func (h *StartCheckoutHandler) quote(ctx context.Context, cmd StartCheckoutCommand) (*domainlistings.Listing, domainpricing.Quote, daterange.Stay, error) {
	var (
		quote domainpricing.Quote
		stay  daterange.Stay
	)
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, quote, stay, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	now := h.Now.now()
	listing, err := loadListing(execCtx, unit, cmd.ListingID)
	if err != nil {
		return nil, quote, stay, err
	}
	member, err := activeMember(execCtx, unit, cmd.GuestID, now)
	if err != nil {
		return nil, quote, stay, err
	}
	quote, stay = h.Policies.Gateway.QuoteStay(domainpricing.StayRequest{
		Nightly:  listing.NightlyRate,
		CheckIn:  cmd.CheckIn,
		CheckOut: cmd.CheckOut,
		Guests:   cmd.Guests,
	}, member)
	if quote.IsZero() {
		return nil, quote, stay, domainbooking.ErrZeroTotal
	}
	if quote.TotalAmount.MinorUnits() < policies.MinimumChargeMinorUnits {
		return nil, quote, stay, policies.ErrAmountTooSmall
	}
	if err := domainbooking.ValidateDateRange(stay.Range(), now); err != nil {
		return nil, quote, stay, err
	}
	return listing, quote, stay, nil
}

// checkoutNotes ties a gateway order to one stay. Dates are stored normalized
// so the confirmation may spell them differently.
func checkoutNotes(listingID, guestID string, stay daterange.Stay, guests int) map[string]string {
	return map[string]string{
		policies.NotePurpose:   purposeBooking,
		policies.NoteListingID: listingID,
		policies.NoteGuestID:   strings.TrimSpace(guestID),
		policies.NoteCheckIn:   stay.CheckIn.Format(time.RFC3339),
		policies.NoteCheckOut:  stay.CheckOut.Format(time.RFC3339),
		policies.NoteGuests:    strconv.Itoa(guests),
	}
}

// ConfirmCheckoutCommand turns a verified gateway payment into a booking.
// Client supplied totals are never trusted: the stay is quoted again and must
// match the order that was paid.
type ConfirmCheckoutCommand struct {
	ListingID       string `validate:"required"`
	GuestID         string `validate:"required"`
	CheckIn         string `validate:"required"`
	CheckOut        string `validate:"required"`
	Guests          int    `validate:"gte=0,lte=50"`
	OrderID         string `validate:"required"`
	PaymentID       string `validate:"required"`
	Signature       string `validate:"required"`
	IdempotencyKeyV string
}

func (c ConfirmCheckoutCommand) Key() string { return confirmCheckoutKey }

// IdempotencyKey falls back to the payment id so a replayed verification
// cannot book the same payment twice.
func (c ConfirmCheckoutCommand) IdempotencyKey() string {
	if c.IdempotencyKeyV != "" {
		return c.IdempotencyKeyV
	}
	if c.PaymentID == "" {
		return ""
	}
	return "checkout:" + c.PaymentID
}

func (c ConfirmCheckoutCommand) ResultPrototype() any { return &dto.BookingSummary{} }

type ConfirmCheckoutHandler struct {
	UoWFactory uow.UoWFactory
	Policies   policies.PricingPolicies
	Payments   policies.PaymentsPort
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        Clock
}

func (h *ConfirmCheckoutHandler) Handle(ctx context.Context, cmd ConfirmCheckoutCommand) (*dto.BookingSummary, error) {
	if h.Payments == nil {
		return nil, ErrPaymentsRequired
	}
	paid, err := h.Payments.VerifyPayment(ctx, policies.PaymentConfirmation{
		OrderID:   cmd.OrderID,
		PaymentID: cmd.PaymentID,
		Signature: cmd.Signature,
	})
	if err != nil {
		return nil, err
	}

	unit, execCtx, finish, cleanup, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		if errors.Is(err, uow.ErrUnitOfWorkMissing) {
			return nil, ErrUnitOfWorkRequired
		}
		return nil, err
	}
	defer cleanup()

	now := h.Now.now()
	listing, err := loadListing(execCtx, unit, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	member, err := activeMember(execCtx, unit, cmd.GuestID, now)
	if err != nil {
		return nil, err
	}
	quote, stay := h.Policies.Gateway.QuoteStay(domainpricing.StayRequest{
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
	if err := policies.MatchOrder(paid, quote.TotalAmount, checkoutNotes(string(listing.ID), cmd.GuestID, stay, quote.Guests)); err != nil {
		return nil, err
	}

	// one booking per captured payment; a concurrent replay loses on version
	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:          domainbooking.BookingID("bk_" + cmd.PaymentID),
		ListingID:   listing.ID,
		GuestID:     cmd.GuestID,
		RawCheckIn:  cmd.CheckIn,
		RawCheckOut: cmd.CheckOut,
		Stay:        stay,
		Quote:       quote,
		Channel:     domainbooking.ChannelGateway,
		Payment:     domainbooking.Payment{OrderID: cmd.OrderID, PaymentID: cmd.PaymentID},
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(execCtx, booking); err != nil {
		return nil, err
	}
	encoder := h.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	if err := recordBookingEvents(execCtx, h.Outbox, encoder, booking); err != nil {
		return nil, err
	}
	if err := finish(execCtx); err != nil {
		return nil, err
	}

	result := dto.MapBookingSummary(booking, listing)
	return &result, nil
}

var _ commands.Handler[StartCheckoutCommand, *dto.CheckoutOrder] = (*StartCheckoutHandler)(nil)
var _ commands.Handler[ConfirmCheckoutCommand, *dto.BookingSummary] = (*ConfirmCheckoutHandler)(nil)
var _ middleware.IdempotentCommand = (*ConfirmCheckoutCommand)(nil)
