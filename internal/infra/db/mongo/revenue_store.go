package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"travelnest/internal/app/projections"
	"travelnest/internal/domain/shared/money"
)

// RevenueStore keeps the monthly revenue read model, one document per month.
type RevenueStore struct {
	col *mongo.Collection
}

func NewRevenueStore(db *mongo.Database) *RevenueStore {
	return &RevenueStore{col: db.Collection("read_revenue_monthly")}
}

func (s *RevenueStore) Apply(ctx context.Context, month string, delta projections.RevenueDelta) error {
	currency := delta.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}
	update := bson.M{
		"$inc": bson.M{
			"bookings":      delta.Bookings,
			"cancellations": delta.Cancellations,
			"gross":         delta.Gross,
			"refunded":      delta.Refunded,
		},
		"$setOnInsert": bson.M{"currency": currency},
	}
	_, err := s.col.UpdateByID(ctx, month, update, options.Update().SetUpsert(true))
	return err
}

func (s *RevenueStore) Monthly(ctx context.Context, limit int) ([]projections.MonthlyRevenue, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]projections.MonthlyRevenue, 0)
	for cur.Next(ctx) {
		var doc revenueDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, projections.MonthlyRevenue{
			Month:         doc.Month,
			Bookings:      doc.Bookings,
			Cancellations: doc.Cancellations,
			Gross:         money.Money{Amount: doc.Gross, Currency: doc.Currency},
			Refunded:      money.Money{Amount: doc.Refunded, Currency: doc.Currency},
		})
	}
	return out, cur.Err()
}

type revenueDocument struct {
	Month         string `bson:"_id"`
	Currency      string `bson:"currency"`
	Bookings      int    `bson:"bookings"`
	Cancellations int    `bson:"cancellations"`
	Gross         int64  `bson:"gross"`
	Refunded      int64  `bson:"refunded"`
}

var _ projections.RevenueStore = (*RevenueStore)(nil)
