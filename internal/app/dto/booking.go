package dto

import (
	"time"

	domainbooking "travelnest/internal/domain/booking"
	domainlistings "travelnest/internal/domain/listings"
	"travelnest/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type BookingListingSnapshot struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Country  string `json:"country"`
	ImageURL string `json:"image_url"`
}

type BookingSummary struct {
	ID                   string                 `json:"id"`
	Listing              BookingListingSnapshot `json:"listing"`
	GuestID              string                 `json:"guest_id"`
	CheckIn              string                 `json:"check_in"`
	CheckOut             string                 `json:"check_out"`
	Nights               int                    `json:"nights"`
	Guests               int                    `json:"guests"`
	Channel              string                 `json:"channel"`
	Status               string                 `json:"status"`
	Total                MoneyDTO               `json:"total"`
	PaymentID            string                 `json:"payment_id,omitempty"`
	CancellationFee      MoneyDTO               `json:"cancellation_fee"`
	FreeCancellationUsed bool                   `json:"free_cancellation_used"`
	CancelledAt          *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
}

type GuestBookingCollection struct {
	Items []BookingSummary `json:"items"`
}

type CheckoutOrder struct {
	OrderID  string `json:"order_id"`
	KeyID    string `json:"key_id,omitempty"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Quote    *Quote `json:"quote,omitempty"`
}

type CancellationResult struct {
	Booking               BookingSummary `json:"booking"`
	Fee                   MoneyDTO       `json:"fee"`
	Refund                MoneyDTO       `json:"refund"`
	FreeCancellationUsed  bool           `json:"free_cancellation_used"`
	FreeCancellationsLeft int            `json:"free_cancellations_left"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   value.Amount,
		Currency: value.Currency,
	}
}

// MapBookingSummary keeps the raw date strings the guest submitted.
func MapBookingSummary(booking *domainbooking.Booking, listing *domainlistings.Listing) BookingSummary {
	snapshot := BookingListingSnapshot{
		ID: string(booking.ListingID),
	}
	if listing != nil {
		snapshot.Title = listing.Title
		snapshot.Location = listing.Location
		snapshot.Country = listing.Country
		snapshot.ImageURL = listing.ImageURL
	}
	summary := BookingSummary{
		ID:                   string(booking.ID),
		Listing:              snapshot,
		GuestID:              booking.GuestID,
		CheckIn:              booking.RawCheckIn,
		CheckOut:             booking.RawCheckOut,
		Nights:               booking.Nights,
		Guests:               booking.Guests,
		Channel:              string(booking.Channel),
		Status:               string(booking.State),
		Total:                MapMoney(booking.Total),
		PaymentID:            booking.Payment.PaymentID,
		CancellationFee:      MapMoney(booking.CancellationFee),
		FreeCancellationUsed: booking.FreeCancellationUsed,
		CreatedAt:            booking.CreatedAt,
	}
	if !booking.CancelledAt.IsZero() {
		at := booking.CancelledAt
		summary.CancelledAt = &at
	}
	return summary
}
