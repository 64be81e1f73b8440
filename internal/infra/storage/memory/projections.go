package memory

import (
	"context"
	"sort"
	"sync"

	"travelnest/internal/app/projections"
	"travelnest/internal/domain/shared/money"
)

// Inbox remembers processed event ids for the lifetime of the process.
type Inbox struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewInbox() *Inbox {
	return &Inbox{seen: make(map[string]struct{})}
}

func (i *Inbox) Seen(ctx context.Context, eventID string) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.seen[eventID]; ok {
		return true, nil
	}
	i.seen[eventID] = struct{}{}
	return false, nil
}

type RevenueStore struct {
	mu     sync.RWMutex
	months map[string]projections.MonthlyRevenue
}

func NewRevenueStore() *RevenueStore {
	return &RevenueStore{months: make(map[string]projections.MonthlyRevenue)}
}

func (s *RevenueStore) Apply(ctx context.Context, month string, delta projections.RevenueDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	currency := delta.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}
	row, ok := s.months[month]
	if !ok {
		row = projections.MonthlyRevenue{
			Month:    month,
			Gross:    money.Zero(currency),
			Refunded: money.Zero(currency),
		}
	}
	row.Bookings += delta.Bookings
	row.Cancellations += delta.Cancellations
	row.Gross.Amount += delta.Gross
	row.Refunded.Amount += delta.Refunded
	s.months[month] = row
	return nil
}

func (s *RevenueStore) Monthly(ctx context.Context, limit int) ([]projections.MonthlyRevenue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]projections.MonthlyRevenue, 0, len(s.months))
	for _, row := range s.months {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ projections.RevenueStore = (*RevenueStore)(nil)
var _ projections.Inbox = (*Inbox)(nil)
