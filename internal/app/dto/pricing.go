package dto

import (
	"time"

	domainpricing "travelnest/internal/domain/pricing"
	"travelnest/internal/domain/shared/daterange"
)

// Quote is the price breakdown shown before booking.
type Quote struct {
	ListingID      string    `json:"listing_id"`
	Policy         string    `json:"policy"`
	CheckIn        time.Time `json:"check_in,omitzero"`
	CheckOut       time.Time `json:"check_out,omitzero"`
	Nights         int       `json:"nights"`
	Guests         int       `json:"guests"`
	Nightly        MoneyDTO  `json:"nightly"`
	BaseAmount     MoneyDTO  `json:"base_amount"`
	GuestSurcharge MoneyDTO  `json:"guest_surcharge"`
	ServiceFee     MoneyDTO  `json:"service_fee"`
	Total          MoneyDTO  `json:"total"`
	FeeWaived      bool      `json:"fee_waived"`
	Bookable       bool      `json:"bookable"`
}

func MapQuote(listingID string, q domainpricing.Quote, stay daterange.Stay) Quote {
	return Quote{
		ListingID:      listingID,
		Policy:         q.Policy,
		CheckIn:        stay.CheckIn,
		CheckOut:       stay.CheckOut,
		Nights:         q.Nights,
		Guests:         q.Guests,
		Nightly:        MapMoney(q.Nightly),
		BaseAmount:     MapMoney(q.BaseAmount),
		GuestSurcharge: MapMoney(q.GuestSurcharge),
		ServiceFee:     MapMoney(q.ServiceFee),
		Total:          MapMoney(q.TotalAmount),
		FeeWaived:      q.FeeWaived,
		Bookable:       !q.IsZero(),
	}
}
