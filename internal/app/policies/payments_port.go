package policies

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"travelnest/internal/domain/shared/money"
)

var (
	ErrPaymentVerification = errors.New("payments: payment verification failed")
	ErrGatewayUnavailable  = errors.New("payments: gateway unavailable")
	ErrAmountTooSmall      = errors.New("payments: amount below gateway minimum")
)

// MinimumChargeMinorUnits is the smallest order the gateway accepts (1 rupee).
const MinimumChargeMinorUnits int64 = 100

// Order note keys written when an order is opened and checked when it is paid.
const (
	NotePurpose   = "purpose"
	NoteListingID = "listing_id"
	NoteGuestID   = "guest_id"
	NoteUserID    = "user_id"
	NoteCheckIn   = "check_in"
	NoteCheckOut  = "check_out"
	NoteGuests    = "guests"
)

type PaymentOrder struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

type PaymentConfirmation struct {
	OrderID   string
	PaymentID string
	Signature string
}

// PaymentsPort creates gateway orders and checks the signature the gateway
// hands back to the browser after payment.
type PaymentsPort interface {
	CreateOrder(ctx context.Context, amount money.Money, receipt string, notes map[string]string) (PaymentOrder, error)
	// VerifyPayment checks the signature and returns the order as the gateway
	// recorded it.
	VerifyPayment(ctx context.Context, confirmation PaymentConfirmation) (PaymentOrder, error)
	// PublicKey is shown to the checkout widget.
	PublicKey() string
}

// MatchOrder rejects a paid order that was opened for a different amount or
// with different notes than the purchase being confirmed.
func MatchOrder(order PaymentOrder, amount money.Money, notes map[string]string) error {
	if order.Amount != amount.MinorUnits() {
		return fmt.Errorf("%w: order %s paid %d, expected %d", ErrPaymentVerification, order.ID, order.Amount, amount.MinorUnits())
	}
	if order.Currency != "" && amount.Currency != "" && !strings.EqualFold(order.Currency, amount.Currency) {
		return fmt.Errorf("%w: order %s currency %s, expected %s", ErrPaymentVerification, order.ID, order.Currency, amount.Currency)
	}
	for key, want := range notes {
		if order.Notes[key] != want {
			return fmt.Errorf("%w: order %s %s mismatch", ErrPaymentVerification, order.ID, key)
		}
	}
	return nil
}
