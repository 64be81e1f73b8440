package policies

import (
	"testing"

	"github.com/stretchr/testify/require"

	"travelnest/internal/domain/shared/money"
)

func TestMatchOrder(t *testing.T) {
	order := PaymentOrder{
		ID:       "order_1",
		Amount:   99900,
		Currency: "INR",
		Notes:    map[string]string{NotePurpose: "membership", NoteUserID: "usr-1"},
	}
	price := money.Money{Amount: 999, Currency: "INR"}

	require.NoError(t, MatchOrder(order, price, map[string]string{NotePurpose: "membership", NoteUserID: "usr-1"}))
	require.ErrorIs(t, MatchOrder(order, money.Money{Amount: 1000, Currency: "INR"}, nil), ErrPaymentVerification)
	require.ErrorIs(t, MatchOrder(order, money.Money{Amount: 999, Currency: "USD"}, nil), ErrPaymentVerification)
	require.ErrorIs(t, MatchOrder(order, price, map[string]string{NoteUserID: "usr-2"}), ErrPaymentVerification)
	require.ErrorIs(t, MatchOrder(order, price, map[string]string{NotePurpose: "booking"}), ErrPaymentVerification)
}
