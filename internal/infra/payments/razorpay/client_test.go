package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"travelnest/internal/app/policies"
	"travelnest/internal/domain/shared/money"
)

func TestCreateOrderSendsMinorUnits(t *testing.T) {
	var got createOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "rzp_test", user)
		require.Equal(t, "secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(orderResponse{ID: "order_1", Amount: got.Amount, Currency: got.Currency, Receipt: got.Receipt, Status: "created"})
	}))
	defer srv.Close()

	client, err := NewClient("rzp_test", "secret", srv.URL, nil)
	require.NoError(t, err)
	order, err := client.CreateOrder(context.Background(), money.Money{Amount: 9450, Currency: "INR"}, "booking_1", map[string]string{"listing_id": "l1"})
	require.NoError(t, err)
	require.Equal(t, int64(945000), got.Amount)
	require.Equal(t, "l1", got.Notes["listing_id"])
	require.Equal(t, "order_1", order.ID)
	require.Equal(t, int64(945000), order.Amount)
}

func TestCreateOrderMapsGatewayErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`))
	}))
	defer srv.Close()

	client, err := NewClient("k", "s", srv.URL, nil)
	require.NoError(t, err)
	_, err = client.CreateOrder(context.Background(), money.Money{Amount: 100, Currency: "INR"}, "r", nil)
	require.ErrorIs(t, err, policies.ErrGatewayUnavailable)
	require.Contains(t, err.Error(), "Authentication failed")
}

func TestCreateOrderRejectsZeroAmount(t *testing.T) {
	client, err := NewClient("k", "s", "http://127.0.0.1:1", nil)
	require.NoError(t, err)
	_, err = client.CreateOrder(context.Background(), money.Money{Currency: "INR"}, "r", nil)
	require.ErrorIs(t, err, policies.ErrAmountTooSmall)
}

func TestVerify(t *testing.T) {
	sig := Sign("secret", "order_1", "pay_1")
	require.Len(t, sig, 64)
	require.NoError(t, Verify("secret", policies.PaymentConfirmation{OrderID: "order_1", PaymentID: "pay_1", Signature: sig}))
	require.ErrorIs(t, Verify("secret", policies.PaymentConfirmation{OrderID: "order_1", PaymentID: "pay_2", Signature: sig}), policies.ErrPaymentVerification)
	require.ErrorIs(t, Verify("other", policies.PaymentConfirmation{OrderID: "order_1", PaymentID: "pay_1", Signature: sig}), policies.ErrPaymentVerification)
	require.ErrorIs(t, Verify("secret", policies.PaymentConfirmation{OrderID: "order_1", PaymentID: "pay_1"}), policies.ErrPaymentVerification)
}

func TestVerifyPaymentFetchesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/orders/order_7", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"order_7","entity":"order","amount":99900,"currency":"INR","receipt":"membership_1","status":"paid","notes":{"purpose":"membership","user_id":"usr-1"}}`))
	}))
	defer srv.Close()

	client, err := NewClient("rzp_test", "secret", srv.URL, nil)
	require.NoError(t, err)

	_, err = client.VerifyPayment(context.Background(), policies.PaymentConfirmation{OrderID: "order_7", PaymentID: "pay_1", Signature: "bad"})
	require.ErrorIs(t, err, policies.ErrPaymentVerification)

	order, err := client.VerifyPayment(context.Background(), policies.PaymentConfirmation{
		OrderID:   "order_7",
		PaymentID: "pay_1",
		Signature: Sign("secret", "order_7", "pay_1"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(99900), order.Amount)
	require.Equal(t, "membership", order.Notes["purpose"])
	require.Equal(t, "usr-1", order.Notes["user_id"])
}

func TestOrderNotesAcceptEmptyArray(t *testing.T) {
	var order orderResponse
	require.NoError(t, json.Unmarshal([]byte(`{"id":"order_1","amount":100,"notes":[]}`), &order))
	require.Nil(t, order.toOrder().Notes)
}

func TestSandboxRoundTrip(t *testing.T) {
	sb := NewSandbox("dev")
	order, err := sb.CreateOrder(context.Background(), money.Money{Amount: 999, Currency: "INR"}, "membership_1", map[string]string{"purpose": "membership"})
	require.NoError(t, err)
	require.Equal(t, int64(99900), order.Amount)

	paid, err := sb.VerifyPayment(context.Background(), policies.PaymentConfirmation{
		OrderID:   order.ID,
		PaymentID: "pay_x",
		Signature: Sign("dev", order.ID, "pay_x"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(99900), paid.Amount)
	require.Equal(t, "membership", paid.Notes["purpose"])

	// a correctly signed id the sandbox never issued is not a payment
	_, err = sb.VerifyPayment(context.Background(), policies.PaymentConfirmation{
		OrderID:   "order_unknown",
		PaymentID: "pay_x",
		Signature: Sign("dev", "order_unknown", "pay_x"),
	})
	require.ErrorIs(t, err, policies.ErrPaymentVerification)
}
