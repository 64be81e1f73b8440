package projections

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainbooking "travelnest/internal/domain/booking"
	"travelnest/internal/domain/shared/money"
)

const monthLayout = "2006-01"

var ErrStoreRequired = errors.New("projections: revenue store required")

// MonthlyRevenue aggregates booking money by the month the event happened in.
type MonthlyRevenue struct {
	Month         string
	Bookings      int
	Cancellations int
	Gross         money.Money
	Refunded      money.Money
}

// Net is what the platform keeps: gross bookings minus refunds.
func (m MonthlyRevenue) Net() money.Money {
	return money.Money{Amount: m.Gross.Amount - m.Refunded.Amount, Currency: m.Gross.Currency}
}

type RevenueDelta struct {
	Bookings      int
	Cancellations int
	Gross         int64
	Refunded      int64
	Currency      string
}

type RevenueStore interface {
	Apply(ctx context.Context, month string, delta RevenueDelta) error
	// Monthly returns the most recent months first; limit <= 0 means all.
	Monthly(ctx context.Context, limit int) ([]MonthlyRevenue, error)
}

// Inbox reports whether an event id was already processed and marks it otherwise.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// RevenueProjector folds booking events into monthly revenue totals. It is
// fed by the Kafka consumer in production and by the in-memory outbox when
// running without a broker.
type RevenueProjector struct {
	Store  RevenueStore
	Inbox  Inbox
	Logger *slog.Logger
}

// Project applies a single event. Unknown event names are skipped.
func (p *RevenueProjector) Project(ctx context.Context, eventID, name string, data []byte) error {
	if p.Store == nil {
		return ErrStoreRequired
	}
	name = strings.TrimSuffix(name, ".v1")
	if name != domainbooking.EventBookingConfirmed && name != domainbooking.EventBookingCancelled {
		return nil
	}
	if p.Inbox != nil && eventID != "" {
		seen, err := p.Inbox.Seen(ctx, eventID)
		if err != nil {
			return err
		}
		if seen {
			if p.Logger != nil {
				p.Logger.Debug("duplicate event skipped", "event_id", eventID, "type", name)
			}
			return nil
		}
	}

	month, delta, err := decodeDelta(name, data)
	if err != nil {
		return fmt.Errorf("projections: decode %s: %w", name, err)
	}
	if err := p.Store.Apply(ctx, month, delta); err != nil {
		return err
	}
	if p.Logger != nil {
		p.Logger.Debug("revenue projected", "event_id", eventID, "type", name, "month", month)
	}
	return nil
}

func (p *RevenueProjector) Monthly(ctx context.Context, limit int) ([]MonthlyRevenue, error) {
	if p.Store == nil {
		return nil, ErrStoreRequired
	}
	return p.Store.Monthly(ctx, limit)
}

func decodeDelta(name string, data []byte) (string, RevenueDelta, error) {
	switch name {
	case domainbooking.EventBookingConfirmed:
		var ev domainbooking.BookingConfirmed
		if err := json.Unmarshal(data, &ev); err != nil {
			return "", RevenueDelta{}, err
		}
		return monthOf(ev.At), RevenueDelta{
			Bookings: 1,
			Gross:    ev.Total.Amount,
			Currency: ev.Total.Currency,
		}, nil
	default:
		var ev domainbooking.BookingCancelled
		if err := json.Unmarshal(data, &ev); err != nil {
			return "", RevenueDelta{}, err
		}
		return monthOf(ev.At), RevenueDelta{
			Cancellations: 1,
			Refunded:      ev.Refund.Amount,
			Currency:      ev.Total.Currency,
		}, nil
	}
}

func monthOf(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(monthLayout)
}
