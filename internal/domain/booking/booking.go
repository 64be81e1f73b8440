package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"travelnest/internal/domain/listings"
	"travelnest/internal/domain/pricing"
	"travelnest/internal/domain/shared/daterange"
	"travelnest/internal/domain/shared/events"
	"travelnest/internal/domain/shared/money"
)

var (
	ErrInvalidGuests   = errors.New("booking: guests count must be positive")
	ErrGuestRequired   = errors.New("booking: guest id required")
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrZeroTotal       = errors.New("booking: total must be positive")
	ErrPaymentRequired = errors.New("booking: payment reference required for gateway bookings")
	ErrBookingNotFound = errors.New("booking: not found")
	ErrNotOwner        = errors.New("booking: booking belongs to another guest")
)

type BookingID string

type BookingState string

const (
	StateConfirmed BookingState = "CONFIRMED"
	StateCancelled BookingState = "CANCELLED"
)

// Channel tells which pricing policy produced the stored total.
type Channel string

const (
	ChannelDirect  Channel = "direct"
	ChannelGateway Channel = "gateway"
)

type Payment struct {
	OrderID   string
	PaymentID string
}

type Booking struct {
	ID          BookingID
	ListingID   listings.ListingID
	GuestID     string
	RawCheckIn  string
	RawCheckOut string
	Range       daterange.DateRange
	Nights      int
	Guests      int
	Total       money.Money
	Channel     Channel
	Payment     Payment
	State       BookingState

	CancellationFee      money.Money
	FreeCancellationUsed bool
	CancelledAt          time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

type Summary struct {
	Confirmed        int
	Cancelled        int
	ConfirmedRevenue money.Money
	RetainedFees     money.Money
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	Summarize(ctx context.Context) (Summary, error)
}

type CreateParams struct {
	ID          BookingID
	ListingID   listings.ListingID
	GuestID     string
	RawCheckIn  string
	RawCheckOut string
	Stay        daterange.Stay
	Quote       pricing.Quote
	Channel     Channel
	Payment     Payment
	CreatedAt   time.Time
}

// NewBooking stores a priced stay as a confirmed booking. A zero quote means
// the stay could not be priced and is rejected here.
func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(params.GuestID) == "" {
		return nil, ErrGuestRequired
	}
	if params.Quote.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if err := params.Stay.Range().Validate(); err != nil {
		return nil, err
	}
	if !params.Quote.TotalAmount.IsPositive() {
		return nil, ErrZeroTotal
	}
	channel := params.Channel
	if channel == "" {
		channel = ChannelDirect
	}
	if channel == ChannelGateway && strings.TrimSpace(params.Payment.PaymentID) == "" {
		return nil, ErrPaymentRequired
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:              params.ID,
		ListingID:       params.ListingID,
		GuestID:         params.GuestID,
		RawCheckIn:      params.RawCheckIn,
		RawCheckOut:     params.RawCheckOut,
		Range:           params.Stay.Range(),
		Nights:          params.Stay.Nights,
		Guests:          params.Quote.Guests,
		Total:           params.Quote.TotalAmount,
		Channel:         channel,
		Payment:         params.Payment,
		State:           StateConfirmed,
		CancellationFee: money.Zero(params.Quote.TotalAmount.Currency),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	b.Record(BookingConfirmed{
		BookingID: b.ID,
		ListingID: b.ListingID,
		GuestID:   b.GuestID,
		Channel:   b.Channel,
		Nights:    b.Nights,
		Total:     b.Total,
		At:        now,
	})
	return b, nil
}

// Cancel applies a decision taken by CancellationPolicy.
func (b *Booking) Cancel(decision CancellationDecision, now time.Time) error {
	if b.State != StateConfirmed {
		return ErrInvalidState
	}
	now = now.UTC()
	b.State = StateCancelled
	b.CancellationFee = decision.Fee
	b.FreeCancellationUsed = decision.UsedFreeCancellation
	b.CancelledAt = now
	b.UpdatedAt = now
	b.Record(BookingCancelled{
		BookingID:        b.ID,
		ListingID:        b.ListingID,
		GuestID:          b.GuestID,
		Total:            b.Total,
		Fee:              decision.Fee,
		Refund:           decision.Refund,
		FreeCancellation: decision.UsedFreeCancellation,
		At:               now,
	})
	return nil
}

func (b *Booking) OwnedBy(guestID string) bool {
	return b.GuestID != "" && b.GuestID == guestID
}
