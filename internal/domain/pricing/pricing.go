package pricing

import (
	"errors"

	"travelnest/internal/domain/shared/daterange"
	"travelnest/internal/domain/shared/money"
)

var (
	ErrFeeRate   = errors.New("pricing: fee rate must be between 0 and 10000 basis points")
	ErrSurcharge = errors.New("pricing: surcharge must be non-negative")
)

const (
	// SurchargePerExtraGuestPerNight is charged for every guest above IncludedGuests.
	SurchargePerExtraGuestPerNight int64 = 500
	// IncludedGuests are covered by the nightly rate.
	IncludedGuests = 2

	ServiceFeeBps int64 = 1000
	AdminFeeBps   int64 = 500
)

// Policy is a named set of rates. Call sites pick a policy explicitly; the
// direct booking flow and the payment gateway flow charge different fees.
type Policy struct {
	Name                           string
	FeeBps                         int64
	SurchargePerExtraGuestPerNight int64
	IncludedGuests                 int
}

// DirectBooking charges the 10% service fee.
var DirectBooking = Policy{
	Name:                           "direct",
	FeeBps:                         ServiceFeeBps,
	SurchargePerExtraGuestPerNight: SurchargePerExtraGuestPerNight,
	IncludedGuests:                 IncludedGuests,
}

// GatewayCheckout charges the 5% admin fee used when paying online.
var GatewayCheckout = Policy{
	Name:                           "gateway",
	FeeBps:                         AdminFeeBps,
	SurchargePerExtraGuestPerNight: SurchargePerExtraGuestPerNight,
	IncludedGuests:                 IncludedGuests,
}

func (p Policy) Validate() error {
	if p.FeeBps < 0 || p.FeeBps > 10000 {
		return ErrFeeRate
	}
	if p.SurchargePerExtraGuestPerNight < 0 {
		return ErrSurcharge
	}
	return nil
}

// WithFee returns a copy with a different fee rate.
func (p Policy) WithFee(bps int64) Policy {
	p.FeeBps = bps
	return p
}

// WithSurcharge returns a copy with a different extra guest surcharge.
func (p Policy) WithSurcharge(amount int64) Policy {
	p.SurchargePerExtraGuestPerNight = amount
	return p
}

// Quote is the price breakdown of one stay. It is derived on demand and only
// its total is stored with a booking.
type Quote struct {
	Policy         string
	Nights         int
	Guests         int
	Nightly        money.Money
	BaseAmount     money.Money
	GuestSurcharge money.Money
	ServiceFee     money.Money
	TotalAmount    money.Money
	FeeWaived      bool
}

// Subtotal is the amount the service fee is computed from.
func (q Quote) Subtotal() money.Money {
	return money.Money{Amount: q.BaseAmount.Amount + q.GuestSurcharge.Amount, Currency: q.TotalAmount.Currency}
}

// IsZero reports an inert quote produced for an unpriceable stay.
func (q Quote) IsZero() bool {
	return q.TotalAmount.Amount == 0
}

// Quote prices a stay. A stay without nights yields a zero quote rather than
// an error so callers can render it and refuse to book further down. Nightly
// rate and guests are taken as given.
func (p Policy) Quote(nightly money.Money, nights, guests int, activeMember bool) Quote {
	currency := nightly.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}
	zero := money.Zero(currency)
	q := Quote{
		Policy:         p.Name,
		Nights:         nights,
		Guests:         guests,
		Nightly:        money.Money{Amount: nightly.Amount, Currency: currency},
		BaseAmount:     zero,
		GuestSurcharge: zero,
		ServiceFee:     zero,
		TotalAmount:    zero,
	}
	if nights <= 0 {
		q.Nights = 0
		return q
	}

	n := int64(nights)
	q.BaseAmount = money.Money{Amount: nightly.Amount * n, Currency: currency}
	if extra := guests - p.IncludedGuests; extra > 0 {
		q.GuestSurcharge = money.Money{Amount: int64(extra) * p.SurchargePerExtraGuestPerNight * n, Currency: currency}
	}
	subtotal := q.Subtotal()
	if activeMember {
		q.FeeWaived = true
	} else {
		q.ServiceFee = subtotal.PercentBps(p.FeeBps)
	}
	q.TotalAmount = money.Money{Amount: subtotal.Amount + q.ServiceFee.Amount, Currency: currency}
	return q
}

// StayRequest is the raw input of a booking form.
type StayRequest struct {
	Nightly  money.Money
	CheckIn  string
	CheckOut string
	Guests   int
}

// QuoteStay runs the whole chain: normalize dates, count nights, price.
// Missing guest counts are treated as a single guest.
func (p Policy) QuoteStay(req StayRequest, activeMember bool) (Quote, daterange.Stay) {
	stay := daterange.NormalizeStay(req.CheckIn, req.CheckOut)
	guests := req.Guests
	if guests < 1 {
		guests = 1
	}
	return p.Quote(req.Nightly, stay.Nights, guests, activeMember), stay
}
