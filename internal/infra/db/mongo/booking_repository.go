package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "travelnest/internal/domain/booking"
	"travelnest/internal/domain/listings"
	"travelnest/internal/domain/shared/daterange"
	"travelnest/internal/domain/shared/money"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "guest_id", Value: 1}, {Key: "created_at", Value: -1}}})
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, notFound(err, domainbooking.ErrBookingNotFound)
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	doc.Version = b.Version + 1
	if err := saveVersioned(ctx, r.col, doc.ID, b.Version, doc); err != nil {
		return err
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"guest_id": guestID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := make([]*domainbooking.Booking, 0)
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toAggregate())
	}
	return items, cur.Err()
}

// Summarize totals confirmed revenue and retained cancellation fees per state.
func (r *BookingRepository) Summarize(ctx context.Context) (domainbooking.Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$state"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$total.amount"}}},
			{Key: "fees", Value: bson.D{{Key: "$sum", Value: "$cancellation_fee.amount"}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return domainbooking.Summary{}, err
	}
	defer cur.Close(ctx)

	summary := domainbooking.Summary{
		ConfirmedRevenue: money.Zero(money.DefaultCurrency),
		RetainedFees:     money.Zero(money.DefaultCurrency),
	}
	for cur.Next(ctx) {
		var row struct {
			State string `bson:"_id"`
			Count int    `bson:"count"`
			Total int64  `bson:"total"`
			Fees  int64  `bson:"fees"`
		}
		if err := cur.Decode(&row); err != nil {
			return domainbooking.Summary{}, err
		}
		switch domainbooking.BookingState(row.State) {
		case domainbooking.StateConfirmed:
			summary.Confirmed = row.Count
			summary.ConfirmedRevenue.Amount = row.Total
		case domainbooking.StateCancelled:
			summary.Cancelled = row.Count
			summary.RetainedFees.Amount = row.Fees
		}
	}
	return summary, cur.Err()
}

type bookingDocument struct {
	ID                   string        `bson:"_id"`
	ListingID            string        `bson:"listing_id"`
	GuestID              string        `bson:"guest_id"`
	RawCheckIn           string        `bson:"raw_check_in"`
	RawCheckOut          string        `bson:"raw_check_out"`
	Range                rangeDocument `bson:"range"`
	Nights               int           `bson:"nights"`
	Guests               int           `bson:"guests"`
	Total                moneyDocument `bson:"total"`
	Channel              string        `bson:"channel"`
	OrderID              string        `bson:"order_id,omitempty"`
	PaymentID            string        `bson:"payment_id,omitempty"`
	State                string        `bson:"state"`
	CancellationFee      moneyDocument `bson:"cancellation_fee"`
	FreeCancellationUsed bool          `bson:"free_cancellation_used"`
	CancelledAt          int64         `bson:"cancelled_at"`
	CreatedAt            int64         `bson:"created_at"`
	UpdatedAt            int64         `bson:"updated_at"`
	Version              int64         `bson:"version"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:                   string(b.ID),
		ListingID:            string(b.ListingID),
		GuestID:              b.GuestID,
		RawCheckIn:           b.RawCheckIn,
		RawCheckOut:          b.RawCheckOut,
		Range:                rangeDocument{CheckIn: timeToMillis(b.Range.CheckIn), CheckOut: timeToMillis(b.Range.CheckOut)},
		Nights:               b.Nights,
		Guests:               b.Guests,
		Total:                newMoneyDocument(b.Total),
		Channel:              string(b.Channel),
		OrderID:              b.Payment.OrderID,
		PaymentID:            b.Payment.PaymentID,
		State:                string(b.State),
		CancellationFee:      newMoneyDocument(b.CancellationFee),
		FreeCancellationUsed: b.FreeCancellationUsed,
		CancelledAt:          timeToMillis(b.CancelledAt),
		CreatedAt:            timeToMillis(b.CreatedAt),
		UpdatedAt:            timeToMillis(b.UpdatedAt),
		Version:              b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:                   domainbooking.BookingID(d.ID),
		ListingID:            listings.ListingID(d.ListingID),
		GuestID:              d.GuestID,
		RawCheckIn:           d.RawCheckIn,
		RawCheckOut:          d.RawCheckOut,
		Range:                daterange.DateRange{CheckIn: millisToTime(d.Range.CheckIn), CheckOut: millisToTime(d.Range.CheckOut)},
		Nights:               d.Nights,
		Guests:               d.Guests,
		Total:                d.Total.toMoney(),
		Channel:              domainbooking.Channel(d.Channel),
		Payment:              domainbooking.Payment{OrderID: d.OrderID, PaymentID: d.PaymentID},
		State:                domainbooking.BookingState(d.State),
		CancellationFee:      d.CancellationFee.toMoney(),
		FreeCancellationUsed: d.FreeCancellationUsed,
		CancelledAt:          millisToTime(d.CancelledAt),
		CreatedAt:            millisToTime(d.CreatedAt),
		UpdatedAt:            millisToTime(d.UpdatedAt),
		Version:              d.Version,
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
