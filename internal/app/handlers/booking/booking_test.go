package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"travelnest/internal/app/dto"
	bookingapp "travelnest/internal/app/handlers/booking"
	"travelnest/internal/app/policies"
	"travelnest/internal/app/uow"
	domainbooking "travelnest/internal/domain/booking"
	domainlistings "travelnest/internal/domain/listings"
	"travelnest/internal/domain/membership"
	"travelnest/internal/domain/shared/money"
	domainuser "travelnest/internal/domain/user"
	"travelnest/internal/infra/payments/razorpay"
	"travelnest/internal/infra/storage/memory"
)

var fixedNow = time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	factory memory.Factory
	box     *memory.Outbox
	clock   bookingapp.Clock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	f := fixture{
		store:   store,
		factory: memory.Factory{Store: store},
		box:     memory.NewOutbox(nil),
		clock:   func() time.Time { return fixedNow },
	}
	ctx := context.Background()
	unit, err := f.factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:    "lst-1",
		Owner: "mgr-1",
		Details: domainlistings.Details{
			Title:       "Sea view flat",
			NightlyRate: money.Money{Amount: 4950, Currency: "INR"},
			Location:    "Panaji",
			Country:     "India",
		},
		Now: fixedNow,
	})
	require.NoError(t, err)
	listing.ClearEvents()
	require.NoError(t, unit.Listings().Save(ctx, listing))
	require.NoError(t, unit.Commit(ctx))
	return f
}

func (f fixture) addGuest(t *testing.T, id string, member bool) {
	t.Helper()
	u, err := domainuser.NewUser(domainuser.CreateParams{ID: domainuser.ID(id), Email: id + "@example.com", Name: id, PasswordHash: "hash", CreatedAt: fixedNow})
	require.NoError(t, err)
	if member {
		u.Membership = membership.DefaultLedger().Activate(u.Membership, fixedNow.Add(-24*time.Hour))
	}
	require.NoError(t, f.store.Users().Save(context.Background(), u))
}

func (f fixture) book(t *testing.T, guestID, checkIn, checkOut string, guests int) *dto.BookingSummary {
	t.Helper()
	h := &bookingapp.CreateBookingHandler{
		UoWFactory: f.factory,
		Policies:   policies.DefaultPricingPolicies(),
		Outbox:     f.box,
		Now:        f.clock,
	}
	res, err := h.Handle(context.Background(), bookingapp.CreateBookingCommand{
		ListingID: "lst-1",
		GuestID:   guestID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    guests,
	})
	require.NoError(t, err)
	return res
}

func TestQuoteAddsServiceFeeForNonMembers(t *testing.T) {
	f := newFixture(t)
	f.addGuest(t, "guest", false)
	h := &bookingapp.QuoteStayHandler{UoWFactory: f.factory, Policies: policies.DefaultPricingPolicies(), Now: f.clock}

	quote, err := h.Handle(context.Background(), bookingapp.QuoteStayQuery{
		ListingID: "lst-1",
		UserID:    "guest",
		CheckIn:   "01/02/2030",
		CheckOut:  "2030-02-04",
		Guests:    3,
	})
	require.NoError(t, err)
	require.Equal(t, 3, quote.Nights)
	require.Equal(t, int64(14850), quote.BaseAmount.Amount)
	require.Equal(t, int64(1500), quote.GuestSurcharge.Amount)
	require.Equal(t, int64(1635), quote.ServiceFee.Amount)
	require.Equal(t, int64(17985), quote.Total.Amount)
	require.False(t, quote.FeeWaived)
}

func TestQuoteWaivesFeeForMembers(t *testing.T) {
	f := newFixture(t)
	f.addGuest(t, "member", true)
	h := &bookingapp.QuoteStayHandler{UoWFactory: f.factory, Policies: policies.DefaultPricingPolicies(), Now: f.clock}

	quote, err := h.Handle(context.Background(), bookingapp.QuoteStayQuery{
		ListingID: "lst-1",
		UserID:    "member",
		CheckIn:   "2030-02-01",
		CheckOut:  "2030-02-03",
	})
	require.NoError(t, err)
	require.True(t, quote.FeeWaived)
	require.Equal(t, int64(9900), quote.Total.Amount)
}

func TestCreateBookingRejectsPastCheckIn(t *testing.T) {
	f := newFixture(t)
	f.addGuest(t, "guest", false)
	h := &bookingapp.CreateBookingHandler{UoWFactory: f.factory, Policies: policies.DefaultPricingPolicies(), Outbox: f.box, Now: f.clock}

	_, err := h.Handle(context.Background(), bookingapp.CreateBookingCommand{
		ListingID: "lst-1",
		GuestID:   "guest",
		CheckIn:   "2029-12-01",
		CheckOut:  "2029-12-03",
	})
	require.ErrorIs(t, err, domainbooking.ErrCheckInInPast)
}

func TestCreateBookingRejectsUnpriceableStay(t *testing.T) {
	f := newFixture(t)
	f.addGuest(t, "guest", false)
	h := &bookingapp.CreateBookingHandler{UoWFactory: f.factory, Policies: policies.DefaultPricingPolicies(), Outbox: f.box, Now: f.clock}

	_, err := h.Handle(context.Background(), bookingapp.CreateBookingCommand{
		ListingID: "lst-1",
		GuestID:   "guest",
		CheckIn:   "2030-02-03",
		CheckOut:  "2030-02-01",
	})
	require.ErrorIs(t, err, domainbooking.ErrZeroTotal)
}

func TestMemberCancellationsUseMonthlyQuota(t *testing.T) {
	f := newFixture(t)
	f.addGuest(t, "member", true)
	cancel := &bookingapp.CancelBookingHandler{UoWFactory: f.factory, Outbox: f.box, Now: f.clock}

	var fees []int64
	for i := 0; i < 3; i++ {
		booked := f.book(t, "member", "2030-02-01", "2030-02-03", 2)
		require.Equal(t, int64(9900), booked.Total.Amount)

		res, err := cancel.Handle(context.Background(), bookingapp.CancelBookingCommand{BookingID: booked.ID, GuestID: "member"})
		require.NoError(t, err)
		require.Equal(t, "CANCELLED", res.Booking.Status)
		fees = append(fees, res.Fee.Amount)
	}
	require.Equal(t, []int64{0, 0, 990}, fees)

	user, err := f.store.Users().ByID(context.Background(), "member")
	require.NoError(t, err)
	require.Equal(t, 2, user.Membership.FreeCancellationsUsed)
}

func TestCancelTwiceFails(t *testing.T) {
	f := newFixture(t)
	f.addGuest(t, "guest", false)
	booked := f.book(t, "guest", "2030-02-01", "2030-02-03", 1)
	cancel := &bookingapp.CancelBookingHandler{UoWFactory: f.factory, Outbox: f.box, Now: f.clock}

	res, err := cancel.Handle(context.Background(), bookingapp.CancelBookingCommand{BookingID: booked.ID, GuestID: "guest"})
	require.NoError(t, err)
	require.Equal(t, int64(1089), res.Fee.Amount)
	require.Equal(t, int64(9801), res.Refund.Amount)

	_, err = cancel.Handle(context.Background(), bookingapp.CancelBookingCommand{BookingID: booked.ID, GuestID: "guest"})
	require.ErrorIs(t, err, domainbooking.ErrInvalidState)
}

func TestCancelOtherGuestsBookingForbidden(t *testing.T) {
	f := newFixture(t)
	f.addGuest(t, "guest", false)
	f.addGuest(t, "intruder", false)
	booked := f.book(t, "guest", "2030-02-01", "2030-02-03", 1)
	cancel := &bookingapp.CancelBookingHandler{UoWFactory: f.factory, Outbox: f.box, Now: f.clock}

	_, err := cancel.Handle(context.Background(), bookingapp.CancelBookingCommand{BookingID: booked.ID, GuestID: "intruder"})
	require.ErrorIs(t, err, domainbooking.ErrNotOwner)
}

func TestGatewayCheckoutRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.addGuest(t, "guest", false)
	gateway := razorpay.NewSandbox("test-secret")
	start := &bookingapp.StartCheckoutHandler{UoWFactory: f.factory, Policies: policies.DefaultPricingPolicies(), Payments: gateway, Now: f.clock}
	confirm := &bookingapp.ConfirmCheckoutHandler{UoWFactory: f.factory, Policies: policies.DefaultPricingPolicies(), Payments: gateway, Outbox: f.box, Now: f.clock}

	order, err := start.Handle(context.Background(), bookingapp.StartCheckoutCommand{
		ListingID: "lst-1",
		GuestID:   "guest",
		CheckIn:   "2030-02-01",
		CheckOut:  "2030-02-03",
		Guests:    1,
	})
	require.NoError(t, err)
	// 9900 + 5% gateway fee, in paise
	require.Equal(t, int64(1039500), order.Amount)
	require.Equal(t, "gateway", order.Quote.Policy)

	cmd := bookingapp.ConfirmCheckoutCommand{
		ListingID: "lst-1",
		GuestID:   "guest",
		CheckIn:   "2030-02-01",
		CheckOut:  "2030-02-03",
		Guests:    1,
		OrderID:   order.OrderID,
		PaymentID: "pay_1",
		Signature: "forged",
	}
	_, err = confirm.Handle(context.Background(), cmd)
	require.ErrorIs(t, err, policies.ErrPaymentVerification)

	cmd.Signature = razorpay.Sign("test-secret", order.OrderID, "pay_1")
	booked, err := confirm.Handle(context.Background(), cmd)
	require.NoError(t, err)
	require.Equal(t, "bk_pay_1", booked.ID)
	require.Equal(t, int64(10395), booked.Total.Amount)
	require.Equal(t, "gateway", booked.Channel)

	// replaying the same payment cannot create a second booking
	_, err = confirm.Handle(context.Background(), cmd)
	require.ErrorIs(t, err, uow.ErrConcurrentUpdate)
}

type checkoutRig struct {
	gateway *razorpay.Sandbox
	start   *bookingapp.StartCheckoutHandler
	confirm *bookingapp.ConfirmCheckoutHandler
}

func (f fixture) checkoutRig() checkoutRig {
	gateway := razorpay.NewSandbox("test-secret")
	return checkoutRig{
		gateway: gateway,
		start:   &bookingapp.StartCheckoutHandler{UoWFactory: f.factory, Policies: policies.DefaultPricingPolicies(), Payments: gateway, Now: f.clock},
		confirm: &bookingapp.ConfirmCheckoutHandler{UoWFactory: f.factory, Policies: policies.DefaultPricingPolicies(), Payments: gateway, Outbox: f.box, Now: f.clock},
	}
}

func signed(orderID, paymentID string, cmd bookingapp.ConfirmCheckoutCommand) bookingapp.ConfirmCheckoutCommand {
	cmd.OrderID = orderID
	cmd.PaymentID = paymentID
	cmd.Signature = razorpay.Sign("test-secret", orderID, paymentID)
	return cmd
}

func requireNoBooking(t *testing.T, f fixture, id string) {
	t.Helper()
	unit, err := f.factory.Begin(context.Background(), uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	_, err = unit.Bookings().ByID(context.Background(), domainbooking.BookingID(id))
	require.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestConfirmCheckoutRejectsStayOtherThanPaid(t *testing.T) {
	f := newFixture(t)
	f.addGuest(t, "guest", false)
	rig := f.checkoutRig()

	order, err := rig.start.Handle(context.Background(), bookingapp.StartCheckoutCommand{
		ListingID: "lst-1", GuestID: "guest", CheckIn: "2030-02-01", CheckOut: "2030-02-02", Guests: 1,
	})
	require.NoError(t, err)

	longer := signed(order.OrderID, "pay_long", bookingapp.ConfirmCheckoutCommand{
		ListingID: "lst-1", GuestID: "guest", CheckIn: "2030-02-01", CheckOut: "2030-03-31", Guests: 10,
	})
	_, err = rig.confirm.Handle(context.Background(), longer)
	require.ErrorIs(t, err, policies.ErrPaymentVerification)
	requireNoBooking(t, f, "bk_pay_long")

	// same nights and amount, different guest count
	moreGuests := signed(order.OrderID, "pay_guests", bookingapp.ConfirmCheckoutCommand{
		ListingID: "lst-1", GuestID: "guest", CheckIn: "2030-02-01", CheckOut: "2030-02-02", Guests: 2,
	})
	_, err = rig.confirm.Handle(context.Background(), moreGuests)
	require.ErrorIs(t, err, policies.ErrPaymentVerification)

	// the paid stay written day-first still matches
	same := signed(order.OrderID, "pay_ok", bookingapp.ConfirmCheckoutCommand{
		ListingID: "lst-1", GuestID: "guest", CheckIn: "01-02-2030", CheckOut: "02-02-2030", Guests: 1,
	})
	booked, err := rig.confirm.Handle(context.Background(), same)
	require.NoError(t, err)
	require.Equal(t, "bk_pay_ok", booked.ID)
}

func TestConfirmCheckoutRejectsAnotherGuestsOrder(t *testing.T) {
	f := newFixture(t)
	f.addGuest(t, "guest", false)
	f.addGuest(t, "other", false)
	rig := f.checkoutRig()

	order, err := rig.start.Handle(context.Background(), bookingapp.StartCheckoutCommand{
		ListingID: "lst-1", GuestID: "guest", CheckIn: "2030-02-01", CheckOut: "2030-02-03", Guests: 1,
	})
	require.NoError(t, err)

	_, err = rig.confirm.Handle(context.Background(), signed(order.OrderID, "pay_1", bookingapp.ConfirmCheckoutCommand{
		ListingID: "lst-1", GuestID: "other", CheckIn: "2030-02-01", CheckOut: "2030-02-03", Guests: 1,
	}))
	require.ErrorIs(t, err, policies.ErrPaymentVerification)
	requireNoBooking(t, f, "bk_pay_1")
}

func TestConfirmCheckoutRejectsMembershipOrder(t *testing.T) {
	f := newFixture(t)
	f.addGuest(t, "guest", false)
	rig := f.checkoutRig()

	// an order for the right amount opened by the membership checkout
	order, err := rig.gateway.CreateOrder(context.Background(), money.Money{Amount: 10395, Currency: "INR"}, "membership_1", map[string]string{
		policies.NotePurpose: "membership",
		policies.NoteUserID:  "guest",
	})
	require.NoError(t, err)

	_, err = rig.confirm.Handle(context.Background(), signed(order.ID, "pay_1", bookingapp.ConfirmCheckoutCommand{
		ListingID: "lst-1", GuestID: "guest", CheckIn: "2030-02-01", CheckOut: "2030-02-03", Guests: 1,
	}))
	require.ErrorIs(t, err, policies.ErrPaymentVerification)
}

func TestConfirmCheckoutRejectsPastCheckIn(t *testing.T) {
	f := newFixture(t)
	f.addGuest(t, "guest", false)
	rig := f.checkoutRig()

	order, err := rig.start.Handle(context.Background(), bookingapp.StartCheckoutCommand{
		ListingID: "lst-1", GuestID: "guest", CheckIn: "2030-02-01", CheckOut: "2030-02-03", Guests: 1,
	})
	require.NoError(t, err)

	rig.confirm.Now = func() time.Time { return time.Date(2030, 2, 2, 8, 0, 0, 0, time.UTC) }
	_, err = rig.confirm.Handle(context.Background(), signed(order.OrderID, "pay_1", bookingapp.ConfirmCheckoutCommand{
		ListingID: "lst-1", GuestID: "guest", CheckIn: "2030-02-01", CheckOut: "2030-02-03", Guests: 1,
	}))
	require.ErrorIs(t, err, domainbooking.ErrCheckInInPast)
}

type unitlessGateway struct {
	policies.PaymentsPort
	t *testing.T
}

func (g unitlessGateway) CreateOrder(ctx context.Context, amount money.Money, receipt string, notes map[string]string) (policies.PaymentOrder, error) {
	_, open := uow.FromContext(ctx)
	require.False(g.t, open, "gateway called inside a unit of work")
	return g.PaymentsPort.CreateOrder(ctx, amount, receipt, notes)
}

func TestStartCheckoutCallsGatewayOutsideUnit(t *testing.T) {
	f := newFixture(t)
	f.addGuest(t, "guest", false)
	start := &bookingapp.StartCheckoutHandler{
		UoWFactory: f.factory,
		Policies:   policies.DefaultPricingPolicies(),
		Payments:   unitlessGateway{PaymentsPort: razorpay.NewSandbox("test-secret"), t: t},
		Now:        f.clock,
	}
	_, err := start.Handle(context.Background(), bookingapp.StartCheckoutCommand{
		ListingID: "lst-1", GuestID: "guest", CheckIn: "2030-02-01", CheckOut: "2030-02-03", Guests: 1,
	})
	require.NoError(t, err)
}
