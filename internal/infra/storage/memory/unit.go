package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	appoutbox "travelnest/internal/app/outbox"
	"travelnest/internal/app/uow"
	domainbooking "travelnest/internal/domain/booking"
	domaincontact "travelnest/internal/domain/contact"
	domainlistings "travelnest/internal/domain/listings"
	domainreviews "travelnest/internal/domain/reviews"
	"travelnest/internal/domain/shared/money"
	domainuser "travelnest/internal/domain/user"
)

var ErrReadOnlyUnit = errors.New("memory: write in read-only unit of work")

type stagedWrite[T any] struct {
	value    *T
	original *T
	expected int64
	deleted  bool
}

// Unit is a uow.UnitOfWork over a Store. Reads see the unit's own staged
// writes first.
type Unit struct {
	store    *Store
	readOnly bool
	done     bool

	listings map[domainlistings.ListingID]*stagedWrite[domainlistings.Listing]
	bookings map[domainbooking.BookingID]*stagedWrite[domainbooking.Booking]
	users    map[domainuser.ID]*stagedWrite[domainuser.User]
	contacts map[domaincontact.MessageID]*domaincontact.Message
	reviews  map[domainreviews.ReviewID]*domainreviews.Review // nil marks a staged delete
	events   []stagedEvent
}

type stagedEvent struct {
	box    *Outbox
	record appoutbox.EventRecord
}

func newUnit(store *Store, readOnly bool) *Unit {
	return &Unit{
		store:    store,
		readOnly: readOnly,
		listings: make(map[domainlistings.ListingID]*stagedWrite[domainlistings.Listing]),
		bookings: make(map[domainbooking.BookingID]*stagedWrite[domainbooking.Booking]),
		users:    make(map[domainuser.ID]*stagedWrite[domainuser.User]),
		contacts: make(map[domaincontact.MessageID]*domaincontact.Message),
		reviews:  make(map[domainreviews.ReviewID]*domainreviews.Review),
	}
}

func (u *Unit) Listings() domainlistings.Repository { return listingRepo{u} }
func (u *Unit) Bookings() domainbooking.Repository  { return bookingRepo{u} }
func (u *Unit) Users() domainuser.Repository        { return userRepo{u} }
func (u *Unit) Contacts() domaincontact.Repository  { return contactRepo{u} }
func (u *Unit) Reviews() domainreviews.Repository   { return reviewRepo{u} }

// Commit verifies every staged version against the store and applies all
// writes, or none of them.
func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return ErrUnitClosed
	}
	u.done = true
	if u.readOnly {
		return nil
	}
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, w := range u.listings {
		if listingVersion(s.listings[id]) != w.expected {
			return uow.ErrConcurrentUpdate
		}
	}
	for id, w := range u.bookings {
		if bookingVersion(s.bookings[id]) != w.expected {
			return uow.ErrConcurrentUpdate
		}
	}
	for id, w := range u.users {
		if userVersion(s.users[id]) != w.expected {
			return uow.ErrConcurrentUpdate
		}
		if owner, ok := s.emails[w.value.Email]; ok && owner != id {
			return domainuser.ErrEmailAlreadyUsed
		}
	}

	for id, w := range u.listings {
		if w.deleted {
			delete(s.listings, id)
			continue
		}
		w.value.Version = w.expected + 1
		s.listings[id] = w.value
		w.original.Version = w.value.Version
	}
	for id, w := range u.bookings {
		w.value.Version = w.expected + 1
		s.bookings[id] = w.value
		w.original.Version = w.value.Version
	}
	for id, w := range u.users {
		if prev, ok := s.users[id]; ok && prev.Email != w.value.Email {
			delete(s.emails, prev.Email)
		}
		w.value.Version = w.expected + 1
		s.users[id] = w.value
		s.emails[w.value.Email] = id
		w.original.Version = w.value.Version
	}
	for id, m := range u.contacts {
		s.contacts[id] = m
	}
	for id, r := range u.reviews {
		if r == nil {
			delete(s.reviews, id)
			continue
		}
		s.reviews[id] = r
	}
	for _, ev := range u.events {
		ev.box.append(ev.record)
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	clear(u.listings)
	clear(u.bookings)
	clear(u.users)
	clear(u.contacts)
	clear(u.reviews)
	u.events = nil
	return nil
}

func (u *Unit) stageEvent(box *Outbox, record appoutbox.EventRecord) error {
	if err := u.writable(); err != nil {
		return err
	}
	u.events = append(u.events, stagedEvent{box: box, record: record})
	return nil
}

func (u *Unit) writable() error {
	if u.done {
		return ErrUnitClosed
	}
	if u.readOnly {
		return ErrReadOnlyUnit
	}
	return nil
}

type listingRepo struct{ u *Unit }

func (r listingRepo) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	if w, ok := r.u.listings[id]; ok {
		if w.deleted {
			return nil, domainlistings.ErrNotFound
		}
		return cloneListing(w.value), nil
	}
	s := r.u.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.listings[id]; ok {
		return cloneListing(l), nil
	}
	return nil, domainlistings.ErrNotFound
}

func (r listingRepo) Save(ctx context.Context, listing *domainlistings.Listing) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if listing == nil || strings.TrimSpace(string(listing.ID)) == "" {
		return domainlistings.ErrIDRequired
	}
	expected := listing.Version
	if w, ok := r.u.listings[listing.ID]; ok {
		expected = w.expected
	}
	r.u.listings[listing.ID] = &stagedWrite[domainlistings.Listing]{value: cloneListing(listing), original: listing, expected: expected}
	return nil
}

func (r listingRepo) Delete(ctx context.Context, id domainlistings.ListingID) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if w, ok := r.u.listings[id]; ok {
		if w.deleted {
			return domainlistings.ErrNotFound
		}
		w.deleted = true
		return nil
	}
	current, err := r.ByID(ctx, id)
	if err != nil {
		return err
	}
	r.u.listings[id] = &stagedWrite[domainlistings.Listing]{value: current, original: current, expected: current.Version, deleted: true}
	return nil
}

func (r listingRepo) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	opts := params.Normalized()
	s := r.u.store
	s.mu.RLock()
	merged := make(map[domainlistings.ListingID]*domainlistings.Listing, len(s.listings))
	for id, l := range s.listings {
		merged[id] = l
	}
	s.mu.RUnlock()
	for id, w := range r.u.listings {
		if w.deleted {
			delete(merged, id)
			continue
		}
		merged[id] = w.value
	}

	matches := make([]*domainlistings.Listing, 0, len(merged))
	for _, l := range merged {
		if err := ctx.Err(); err != nil {
			return domainlistings.SearchResult{}, err
		}
		if opts.Matches(l) {
			matches = append(matches, l)
		}
	}
	sortListings(matches, opts.Sort)

	total := len(matches)
	page := paginate(matches, opts.Limit, opts.Offset)
	items := make([]*domainlistings.Listing, 0, len(page))
	for _, l := range page {
		items = append(items, cloneListing(l))
	}
	return domainlistings.SearchResult{Items: items, Total: total}, nil
}

func sortListings(items []*domainlistings.Listing, order domainlistings.CatalogSort) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch order {
		case domainlistings.SortByPriceAsc:
			if a.NightlyRate.Amount != b.NightlyRate.Amount {
				return a.NightlyRate.Amount < b.NightlyRate.Amount
			}
		case domainlistings.SortByPriceDesc:
			if a.NightlyRate.Amount != b.NightlyRate.Amount {
				return a.NightlyRate.Amount > b.NightlyRate.Amount
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

type bookingRepo struct{ u *Unit }

func (r bookingRepo) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	if w, ok := r.u.bookings[id]; ok {
		return cloneBooking(w.value), nil
	}
	s := r.u.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.bookings[id]; ok {
		return cloneBooking(b), nil
	}
	return nil, domainbooking.ErrBookingNotFound
}

func (r bookingRepo) Save(ctx context.Context, booking *domainbooking.Booking) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if booking == nil || strings.TrimSpace(string(booking.ID)) == "" {
		return domainbooking.ErrBookingNotFound
	}
	expected := booking.Version
	if w, ok := r.u.bookings[booking.ID]; ok {
		expected = w.expected
	}
	r.u.bookings[booking.ID] = &stagedWrite[domainbooking.Booking]{value: cloneBooking(booking), original: booking, expected: expected}
	return nil
}

func (r bookingRepo) merged() map[domainbooking.BookingID]*domainbooking.Booking {
	s := r.u.store
	s.mu.RLock()
	out := make(map[domainbooking.BookingID]*domainbooking.Booking, len(s.bookings))
	for id, b := range s.bookings {
		out[id] = b
	}
	s.mu.RUnlock()
	for id, w := range r.u.bookings {
		out[id] = w.value
	}
	return out
}

func (r bookingRepo) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	items := make([]*domainbooking.Booking, 0)
	for _, b := range r.merged() {
		if b.GuestID == guestID {
			items = append(items, cloneBooking(b))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (r bookingRepo) Summarize(ctx context.Context) (domainbooking.Summary, error) {
	summary := domainbooking.Summary{
		ConfirmedRevenue: money.Zero(money.DefaultCurrency),
		RetainedFees:     money.Zero(money.DefaultCurrency),
	}
	for _, b := range r.merged() {
		switch b.State {
		case domainbooking.StateConfirmed:
			summary.Confirmed++
			sumMoney(&summary.ConfirmedRevenue, b.Total)
		case domainbooking.StateCancelled:
			summary.Cancelled++
			sumMoney(&summary.RetainedFees, b.CancellationFee)
		}
	}
	return summary, nil
}

type userRepo struct{ u *Unit }

func (r userRepo) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	if w, ok := r.u.users[id]; ok {
		return cloneUser(w.value), nil
	}
	return r.u.store.userByID(id)
}

func (r userRepo) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	key := domainuser.NormalizeEmail(email)
	for _, w := range r.u.users {
		if w.value.Email == key {
			return cloneUser(w.value), nil
		}
	}
	return r.u.store.userByEmail(key)
}

func (r userRepo) Save(ctx context.Context, user *domainuser.User) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if user == nil || strings.TrimSpace(string(user.ID)) == "" {
		return domainuser.ErrIDRequired
	}
	if domainuser.NormalizeEmail(user.Email) == "" {
		return domainuser.ErrEmailRequired
	}
	expected := user.Version
	if w, ok := r.u.users[user.ID]; ok {
		expected = w.expected
	}
	value := cloneUser(user)
	value.Email = domainuser.NormalizeEmail(value.Email)
	r.u.users[user.ID] = &stagedWrite[domainuser.User]{value: value, original: user, expected: expected}
	return nil
}

func (r userRepo) List(ctx context.Context, params domainuser.ListParams) ([]*domainuser.User, int, error) {
	staged := make(map[domainuser.ID]*domainuser.User, len(r.u.users))
	for id, w := range r.u.users {
		staged[id] = w.value
	}
	return r.u.store.listUsers(params, staged)
}

type contactRepo struct{ u *Unit }

func (r contactRepo) ByID(ctx context.Context, id domaincontact.MessageID) (*domaincontact.Message, error) {
	if m, ok := r.u.contacts[id]; ok {
		return cloneContact(m), nil
	}
	s := r.u.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.contacts[id]; ok {
		return cloneContact(m), nil
	}
	return nil, domaincontact.ErrNotFound
}

func (r contactRepo) Save(ctx context.Context, msg *domaincontact.Message) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if msg == nil || strings.TrimSpace(string(msg.ID)) == "" {
		return domaincontact.ErrNotFound
	}
	r.u.contacts[msg.ID] = cloneContact(msg)
	return nil
}

func (r contactRepo) List(ctx context.Context, params domaincontact.ListParams) ([]*domaincontact.Message, int, error) {
	s := r.u.store
	s.mu.RLock()
	merged := make(map[domaincontact.MessageID]*domaincontact.Message, len(s.contacts))
	for id, m := range s.contacts {
		merged[id] = m
	}
	s.mu.RUnlock()
	for id, m := range r.u.contacts {
		merged[id] = m
	}

	matches := make([]*domaincontact.Message, 0, len(merged))
	for _, m := range merged {
		if params.Status != "" && m.Status != params.Status {
			continue
		}
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	total := len(matches)
	page := paginate(matches, params.Limit, params.Offset)
	out := make([]*domaincontact.Message, 0, len(page))
	for _, m := range page {
		out = append(out, cloneContact(m))
	}
	return out, total, nil
}

type reviewRepo struct{ u *Unit }

func (r reviewRepo) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	if staged, ok := r.u.reviews[id]; ok {
		if staged == nil {
			return nil, domainreviews.ErrNotFound
		}
		return cloneReview(staged), nil
	}
	s := r.u.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rv, ok := s.reviews[id]; ok {
		return cloneReview(rv), nil
	}
	return nil, domainreviews.ErrNotFound
}

func (r reviewRepo) Save(ctx context.Context, review *domainreviews.Review) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if review == nil || strings.TrimSpace(string(review.ID)) == "" {
		return domainreviews.ErrNotFound
	}
	r.u.reviews[review.ID] = cloneReview(review)
	return nil
}

func (r reviewRepo) Delete(ctx context.Context, id domainreviews.ReviewID) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if _, err := r.ByID(ctx, id); err != nil {
		return err
	}
	r.u.reviews[id] = nil
	return nil
}

func (r reviewRepo) DeleteByListing(ctx context.Context, listingID domainlistings.ListingID) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	for _, rv := range r.merged() {
		if rv.ListingID == listingID {
			r.u.reviews[rv.ID] = nil
		}
	}
	return nil
}

// ListByListing returns the newest reviews first.
func (r reviewRepo) ListByListing(ctx context.Context, listingID domainlistings.ListingID, limit, offset int) ([]*domainreviews.Review, int, error) {
	matches := make([]*domainreviews.Review, 0)
	for _, rv := range r.merged() {
		if rv.ListingID == listingID {
			matches = append(matches, rv)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	total := len(matches)
	page := paginate(matches, limit, offset)
	out := make([]*domainreviews.Review, 0, len(page))
	for _, rv := range page {
		out = append(out, cloneReview(rv))
	}
	return out, total, nil
}

func (r reviewRepo) merged() map[domainreviews.ReviewID]*domainreviews.Review {
	s := r.u.store
	s.mu.RLock()
	merged := make(map[domainreviews.ReviewID]*domainreviews.Review, len(s.reviews))
	for id, rv := range s.reviews {
		merged[id] = rv
	}
	s.mu.RUnlock()
	for id, rv := range r.u.reviews {
		if rv == nil {
			delete(merged, id)
			continue
		}
		merged[id] = rv
	}
	return merged
}

func listingVersion(l *domainlistings.Listing) int64 {
	if l == nil {
		return 0
	}
	return l.Version
}

func bookingVersion(b *domainbooking.Booking) int64 {
	if b == nil {
		return 0
	}
	return b.Version
}

func userVersion(u *domainuser.User) int64 {
	if u == nil {
		return 0
	}
	return u.Version
}

var _ uow.UnitOfWork = (*Unit)(nil)
var _ uow.UoWFactory = Factory{}
