package razorpay

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/google/uuid"

	"travelnest/internal/app/policies"
	"travelnest/internal/domain/shared/money"
)

// Sandbox issues orders locally and verifies signatures with its own secret.
// It stands in for Razorpay when no API keys are configured; tests and the
// local frontend sign payments with Sign. Orders live only as long as the
// process.
type Sandbox struct {
	Secret string

	mu     sync.RWMutex
	orders map[string]policies.PaymentOrder
}

func NewSandbox(secret string) *Sandbox {
	return &Sandbox{Secret: secret, orders: make(map[string]policies.PaymentOrder)}
}

func (s *Sandbox) CreateOrder(ctx context.Context, amount money.Money, receipt string, notes map[string]string) (policies.PaymentOrder, error) {
	minor := amount.MinorUnits()
	if minor < policies.MinimumChargeMinorUnits {
		return policies.PaymentOrder{}, policies.ErrAmountTooSmall
	}
	currency := amount.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}
	order := policies.PaymentOrder{
		ID:       "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14],
		Amount:   minor,
		Currency: currency,
		Receipt:  receipt,
		Notes:    maps.Clone(notes),
	}
	s.mu.Lock()
	if s.orders == nil {
		s.orders = make(map[string]policies.PaymentOrder)
	}
	s.orders[order.ID] = order
	s.mu.Unlock()
	return order, nil
}

func (s *Sandbox) VerifyPayment(ctx context.Context, confirmation policies.PaymentConfirmation) (policies.PaymentOrder, error) {
	if err := Verify(s.Secret, confirmation); err != nil {
		return policies.PaymentOrder{}, err
	}
	s.mu.RLock()
	order, ok := s.orders[confirmation.OrderID]
	s.mu.RUnlock()
	if !ok {
		return policies.PaymentOrder{}, policies.ErrPaymentVerification
	}
	order.Notes = maps.Clone(order.Notes)
	return order, nil
}

func (s *Sandbox) PublicKey() string {
	return "rzp_sandbox"
}

var _ policies.PaymentsPort = (*Sandbox)(nil)
