package booking

import (
	"time"

	"travelnest/internal/domain/listings"
	"travelnest/internal/domain/shared/money"
)

const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

type BookingConfirmed struct {
	BookingID BookingID          `json:"booking_id"`
	ListingID listings.ListingID `json:"listing_id"`
	GuestID   string             `json:"guest_id"`
	Channel   Channel            `json:"channel"`
	Nights    int                `json:"nights"`
	Total     money.Money        `json:"total"`
	At        time.Time          `json:"at"`
}

func (e BookingConfirmed) EventName() string     { return EventBookingConfirmed }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID        BookingID          `json:"booking_id"`
	ListingID        listings.ListingID `json:"listing_id"`
	GuestID          string             `json:"guest_id"`
	Total            money.Money        `json:"total"`
	Fee              money.Money        `json:"fee"`
	Refund           money.Money        `json:"refund"`
	FreeCancellation bool               `json:"free_cancellation"`
	At               time.Time          `json:"at"`
}

func (e BookingCancelled) EventName() string     { return EventBookingCancelled }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }
