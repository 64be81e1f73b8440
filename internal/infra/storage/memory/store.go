package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"travelnest/internal/app/uow"
	domainbooking "travelnest/internal/domain/booking"
	domaincontact "travelnest/internal/domain/contact"
	domainlistings "travelnest/internal/domain/listings"
	domainreviews "travelnest/internal/domain/reviews"
	"travelnest/internal/domain/shared/money"
	domainuser "travelnest/internal/domain/user"
)

// ErrUnitClosed is returned when a unit is used after commit or rollback.
var ErrUnitClosed = errors.New("memory: unit of work already finished")

// Store keeps every aggregate in process memory. Units stage their writes and
// apply them under a single lock on commit, checking aggregate versions the
// same way the Mongo repositories do.
type Store struct {
	mu       sync.RWMutex
	listings map[domainlistings.ListingID]*domainlistings.Listing
	bookings map[domainbooking.BookingID]*domainbooking.Booking
	users    map[domainuser.ID]*domainuser.User
	emails   map[string]domainuser.ID
	contacts map[domaincontact.MessageID]*domaincontact.Message
	reviews  map[domainreviews.ReviewID]*domainreviews.Review
}

func NewStore() *Store {
	return &Store{
		listings: make(map[domainlistings.ListingID]*domainlistings.Listing),
		bookings: make(map[domainbooking.BookingID]*domainbooking.Booking),
		users:    make(map[domainuser.ID]*domainuser.User),
		emails:   make(map[string]domainuser.ID),
		contacts: make(map[domaincontact.MessageID]*domaincontact.Message),
		reviews:  make(map[domainreviews.ReviewID]*domainreviews.Review),
	}
}

// Factory starts units of work over a Store.
type Factory struct {
	Store *Store
}

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Store == nil {
		return nil, ErrFactoryMisconfigured
	}
	return newUnit(f.Store, opts.ReadOnly), nil
}

// Users returns a repository that commits every Save immediately. The auth
// service uses it outside of the command bus.
func (s *Store) Users() domainuser.Repository {
	return autoCommitUsers{store: s}
}

type autoCommitUsers struct {
	store *Store
}

func (r autoCommitUsers) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	return r.store.userByID(id)
}

func (r autoCommitUsers) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	return r.store.userByEmail(email)
}

func (r autoCommitUsers) List(ctx context.Context, params domainuser.ListParams) ([]*domainuser.User, int, error) {
	return r.store.listUsers(params, nil)
}

func (r autoCommitUsers) Save(ctx context.Context, user *domainuser.User) error {
	unit := newUnit(r.store, false)
	if err := unit.Users().Save(ctx, user); err != nil {
		return err
	}
	return unit.Commit(ctx)
}

func (s *Store) userByID(id domainuser.ID) (*domainuser.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domainuser.ErrNotFound
}

func (s *Store) userByEmail(email string) (*domainuser.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[domainuser.NormalizeEmail(email)]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	if u, ok := s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domainuser.ErrNotFound
}

// listUsers merges staged users over the committed ones.
func (s *Store) listUsers(params domainuser.ListParams, staged map[domainuser.ID]*domainuser.User) ([]*domainuser.User, int, error) {
	s.mu.RLock()
	merged := make(map[domainuser.ID]*domainuser.User, len(s.users)+len(staged))
	for id, u := range s.users {
		merged[id] = u
	}
	s.mu.RUnlock()
	for id, u := range staged {
		merged[id] = u
	}

	query := strings.ToLower(strings.TrimSpace(params.Query))
	matches := make([]*domainuser.User, 0, len(merged))
	for _, u := range merged {
		if params.Role != "" && !u.HasRole(params.Role) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(u.Name+" "+u.Email), query) {
			continue
		}
		matches = append(matches, u)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	total := len(matches)
	page := paginate(matches, params.Limit, params.Offset)
	out := make([]*domainuser.User, 0, len(page))
	for _, u := range page {
		out = append(out, cloneUser(u))
	}
	return out, total, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func sumMoney(acc *money.Money, add money.Money) {
	if acc.Currency == "" {
		acc.Currency = add.Currency
	}
	acc.Amount += add.Amount
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	if l == nil {
		return nil
	}
	c := *l
	c.ClearEvents()
	return &c
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	if b == nil {
		return nil
	}
	c := *b
	c.ClearEvents()
	return &c
}

func cloneUser(u *domainuser.User) *domainuser.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = append([]domainuser.Role(nil), u.Roles...)
	c.ClearEvents()
	return &c
}

func cloneContact(m *domaincontact.Message) *domaincontact.Message {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

func cloneReview(r *domainreviews.Review) *domainreviews.Review {
	if r == nil {
		return nil
	}
	c := *r
	c.ClearEvents()
	return &c
}
