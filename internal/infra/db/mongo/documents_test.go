package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	domainbooking "travelnest/internal/domain/booking"
	domainlistings "travelnest/internal/domain/listings"
	domainreviews "travelnest/internal/domain/reviews"
	"travelnest/internal/domain/membership"
	"travelnest/internal/domain/shared/daterange"
	"travelnest/internal/domain/shared/money"
	domainuser "travelnest/internal/domain/user"
)

func TestBookingDocumentKeepsCancellation(t *testing.T) {
	in := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	b := &domainbooking.Booking{
		ID:                   "b1",
		ListingID:            "l1",
		GuestID:              "g1",
		RawCheckIn:           "01/12/2025",
		RawCheckOut:          "04/12/2025",
		Range:                daterange.DateRange{CheckIn: in, CheckOut: in.AddDate(0, 0, 3)},
		Nights:               3,
		Guests:               2,
		Total:                money.Money{Amount: 9900, Currency: "INR"},
		Channel:              domainbooking.ChannelGateway,
		Payment:              domainbooking.Payment{OrderID: "order_1", PaymentID: "pay_1"},
		State:                domainbooking.StateCancelled,
		CancellationFee:      money.Money{Amount: 990, Currency: "INR"},
		FreeCancellationUsed: false,
		CancelledAt:          in.Add(-time.Hour),
		CreatedAt:            in.Add(-48 * time.Hour),
		UpdatedAt:            in.Add(-time.Hour),
		Version:              2,
	}
	got := newBookingDocument(b).toAggregate()
	require.Equal(t, b.Range, got.Range)
	require.Equal(t, b.Payment, got.Payment)
	require.Equal(t, b.CancellationFee, got.CancellationFee)
	require.Equal(t, b.CancelledAt, got.CancelledAt)
	require.Equal(t, int64(2), got.Version)
}

func TestUserDocumentZeroMembershipTimes(t *testing.T) {
	u := &domainuser.User{ID: "u1", Email: "a@b.c", Roles: []domainuser.Role{domainuser.RoleTraveller}}
	doc := newUserDocument(u)
	require.Zero(t, doc.Membership.ExpiresAt)
	got := doc.toAggregate()
	require.True(t, got.Membership.ExpiresAt.IsZero())
	require.Equal(t, membership.State{}, got.Membership)
}

func TestSearchFilter(t *testing.T) {
	f := searchFilter(domainlistings.SearchParams{Country: "India", Query: "goa (north)", PriceMin: 1000, Owner: "m1"}.Normalized())
	require.Equal(t, "m1", f["owner_id"])
	require.Contains(t, f, "$or")
	price := f["nightly_rate.amount"].(bson.M)
	require.Equal(t, int64(1000), price["$gte"])
	require.NotContains(t, price, "$lte")
}

func TestReviewDocumentRoundTrip(t *testing.T) {
	r := &domainreviews.Review{
		ID:         "rv-1",
		ListingID:  "l1",
		AuthorID:   "u1",
		AuthorName: "Asha",
		Rating:     5,
		Comment:    "Quiet and clean",
		CreatedAt:  time.Date(2030, time.March, 3, 10, 0, 0, 0, time.UTC),
	}
	raw, err := bson.Marshal(newReviewDocument(r))
	require.NoError(t, err)
	var doc reviewDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))

	got := doc.toReview()
	require.Equal(t, r.ListingID, got.ListingID)
	require.Equal(t, r.Rating, got.Rating)
	require.Equal(t, r.Comment, got.Comment)
	require.True(t, r.CreatedAt.Equal(got.CreatedAt))
}
