package membership_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	membershipapp "travelnest/internal/app/handlers/membership"
	"travelnest/internal/app/policies"
	domainmembership "travelnest/internal/domain/membership"
	"travelnest/internal/domain/shared/money"
	domainuser "travelnest/internal/domain/user"
	"travelnest/internal/infra/payments/razorpay"
	"travelnest/internal/infra/storage/memory"
)

const secret = "sandbox-secret"

func setup(t *testing.T) (*memory.Store, memory.Factory) {
	t.Helper()
	store := memory.NewStore()
	u, err := domainuser.NewUser(domainuser.CreateParams{ID: "usr-1", Email: "asha@example.com", Name: "Asha", PasswordHash: "hash"})
	require.NoError(t, err)
	require.NoError(t, store.Users().Save(context.Background(), u))
	return store, memory.Factory{Store: store}
}

func TestMembershipPurchaseFlow(t *testing.T) {
	ctx := context.Background()
	store, factory := setup(t)
	gateway := razorpay.NewSandbox(secret)
	now := time.Date(2030, 5, 20, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	start := &membershipapp.StartMembershipCheckoutHandler{UoWFactory: factory, Payments: gateway}
	order, err := start.Handle(ctx, membershipapp.StartMembershipCheckoutCommand{UserID: "usr-1"})
	require.NoError(t, err)
	require.Equal(t, int64(99900), order.Amount)
	require.Equal(t, "INR", order.Currency)

	activate := &membershipapp.ActivateMembershipHandler{
		UoWFactory: factory,
		Payments:   gateway,
		Ledger:     domainmembership.DefaultLedger(),
		Outbox:     memory.NewOutbox(nil),
		Now:        clock,
	}
	_, err = activate.Handle(ctx, membershipapp.ActivateMembershipCommand{UserID: "usr-1", OrderID: order.OrderID, PaymentID: "pay_9", Signature: "nope"})
	require.ErrorIs(t, err, policies.ErrPaymentVerification)

	status, err := activate.Handle(ctx, membershipapp.ActivateMembershipCommand{
		UserID:    "usr-1",
		OrderID:   order.OrderID,
		PaymentID: "pay_9",
		Signature: razorpay.Sign(secret, order.OrderID, "pay_9"),
	})
	require.NoError(t, err)
	require.True(t, status.Active)
	require.Equal(t, 2, status.FreeCancellationsLeft)
	require.Equal(t, now.Add(30*24*time.Hour), *status.ExpiresAt)
	require.Equal(t, time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC), *status.ResetAt)

	user, err := store.Users().ByID(ctx, "usr-1")
	require.NoError(t, err)
	require.True(t, user.Membership.IsMember)
}

func TestGetMembershipRollsQuotaInView(t *testing.T) {
	ctx := context.Background()
	store, factory := setup(t)
	user, err := store.Users().ByID(ctx, "usr-1")
	require.NoError(t, err)
	user.Membership = domainmembership.State{
		IsMember:              true,
		ExpiresAt:             time.Date(2030, 6, 10, 0, 0, 0, 0, time.UTC),
		FreeCancellationsUsed: 2,
		ResetAt:               time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Users().Save(ctx, user))

	h := &membershipapp.GetMembershipHandler{
		UoWFactory: factory,
		Ledger:     domainmembership.DefaultLedger(),
		Now:        func() time.Time { return time.Date(2030, 6, 2, 0, 0, 0, 0, time.UTC) },
	}
	status, err := h.Handle(ctx, membershipapp.GetMembershipQuery{UserID: "usr-1"})
	require.NoError(t, err)
	require.Equal(t, "active", status.Status)
	require.Equal(t, 0, status.FreeCancellationsUsed)
	require.Equal(t, 2, status.FreeCancellationsLeft)

	stored, err := store.Users().ByID(ctx, "usr-1")
	require.NoError(t, err)
	require.Equal(t, 2, stored.Membership.FreeCancellationsUsed)
}

func TestStartCheckoutUnknownUser(t *testing.T) {
	_, factory := setup(t)
	start := &membershipapp.StartMembershipCheckoutHandler{UoWFactory: factory, Payments: razorpay.NewSandbox(secret)}
	_, err := start.Handle(context.Background(), membershipapp.StartMembershipCheckoutCommand{UserID: "ghost"})
	require.ErrorIs(t, err, domainuser.ErrNotFound)
}

func activation(orderID, paymentID, userID string) membershipapp.ActivateMembershipCommand {
	return membershipapp.ActivateMembershipCommand{
		UserID:    userID,
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: razorpay.Sign(secret, orderID, paymentID),
	}
}

func TestActivateRejectsOrdersNotOpenedForMembership(t *testing.T) {
	ctx := context.Background()
	store, factory := setup(t)
	other, err := domainuser.NewUser(domainuser.CreateParams{ID: "usr-2", Email: "ravi@example.com", Name: "Ravi", PasswordHash: "hash"})
	require.NoError(t, err)
	require.NoError(t, store.Users().Save(ctx, other))

	gateway := razorpay.NewSandbox(secret)
	activate := &membershipapp.ActivateMembershipHandler{
		UoWFactory: factory,
		Payments:   gateway,
		Ledger:     domainmembership.DefaultLedger(),
		Outbox:     memory.NewOutbox(nil),
	}

	// a booking order for exactly the membership price
	bookingOrder, err := gateway.CreateOrder(ctx, membershipapp.DefaultPrice, "booking_1", map[string]string{
		policies.NotePurpose: "booking",
		policies.NoteGuestID: "usr-1",
	})
	require.NoError(t, err)
	_, err = activate.Handle(ctx, activation(bookingOrder.ID, "pay_1", "usr-1"))
	require.ErrorIs(t, err, policies.ErrPaymentVerification)

	// usr-2 cannot activate with the order usr-1 paid for
	start := &membershipapp.StartMembershipCheckoutHandler{UoWFactory: factory, Payments: gateway}
	order, err := start.Handle(ctx, membershipapp.StartMembershipCheckoutCommand{UserID: "usr-1"})
	require.NoError(t, err)
	_, err = activate.Handle(ctx, activation(order.OrderID, "pay_2", "usr-2"))
	require.ErrorIs(t, err, policies.ErrPaymentVerification)

	// a cheaper order with the right notes is not the membership price
	cheap, err := gateway.CreateOrder(ctx, money.Money{Amount: 10, Currency: "INR"}, "membership_x", map[string]string{
		policies.NotePurpose: "membership",
		policies.NoteUserID:  "usr-1",
	})
	require.NoError(t, err)
	_, err = activate.Handle(ctx, activation(cheap.ID, "pay_3", "usr-1"))
	require.ErrorIs(t, err, policies.ErrPaymentVerification)

	for _, id := range []domainuser.ID{"usr-1", "usr-2"} {
		u, err := store.Users().ByID(ctx, id)
		require.NoError(t, err)
		require.False(t, u.Membership.IsMember)
	}
}
