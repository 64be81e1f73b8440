package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appoutbox "travelnest/internal/app/outbox"
	"travelnest/internal/app/uow"
	domainbooking "travelnest/internal/domain/booking"
	domaincontact "travelnest/internal/domain/contact"
	domainlistings "travelnest/internal/domain/listings"
	domainreviews "travelnest/internal/domain/reviews"
	"travelnest/internal/domain/shared/money"
	domainuser "travelnest/internal/domain/user"
)

func seedUser(t *testing.T, store *Store, id, email string) *domainuser.User {
	t.Helper()
	u, err := domainuser.NewUser(domainuser.CreateParams{ID: domainuser.ID(id), Email: email, Name: id, PasswordHash: "hash"})
	require.NoError(t, err)
	require.NoError(t, store.Users().Save(context.Background(), u))
	return u
}

func begin(t *testing.T, store *Store) uow.UnitOfWork {
	t.Helper()
	unit, err := Factory{Store: store}.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	return unit
}

func TestSaveBumpsVersion(t *testing.T) {
	store := NewStore()
	u := seedUser(t, store, "u1", "a@example.com")
	require.Equal(t, int64(1), u.Version)

	loaded, err := store.Users().ByID(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, int64(1), loaded.Version)
}

func TestConcurrentUpdateRejected(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seedUser(t, store, "u1", "a@example.com")

	first := begin(t, store)
	second := begin(t, store)

	a, err := first.Users().ByID(ctx, "u1")
	require.NoError(t, err)
	b, err := second.Users().ByID(ctx, "u1")
	require.NoError(t, err)

	a.Name = "first"
	b.Name = "second"
	require.NoError(t, first.Users().Save(ctx, a))
	require.NoError(t, second.Users().Save(ctx, b))

	require.NoError(t, first.Commit(ctx))
	require.ErrorIs(t, second.Commit(ctx), uow.ErrConcurrentUpdate)

	stored, err := store.Users().ByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "first", stored.Name)
	require.Equal(t, int64(2), stored.Version)
}

func TestFailedCommitAppliesNothing(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seedUser(t, store, "u1", "a@example.com")

	stale := begin(t, store)
	user, err := stale.Users().ByID(ctx, "u1")
	require.NoError(t, err)

	// bump the stored version behind the unit's back
	other, err := store.Users().ByID(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, store.Users().Save(ctx, other))

	booking := &domainbooking.Booking{ID: "b1", GuestID: "u1", State: domainbooking.StateConfirmed}
	require.NoError(t, stale.Bookings().Save(ctx, booking))
	require.NoError(t, stale.Users().Save(ctx, user))
	require.ErrorIs(t, stale.Commit(ctx), uow.ErrConcurrentUpdate)

	fresh := begin(t, store)
	_, err = fresh.Bookings().ByID(ctx, "b1")
	require.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestDuplicateEmailRejected(t *testing.T) {
	store := NewStore()
	seedUser(t, store, "u1", "a@example.com")
	u, err := domainuser.NewUser(domainuser.CreateParams{ID: "u2", Email: "A@example.com", Name: "x", PasswordHash: "h"})
	require.NoError(t, err)
	require.ErrorIs(t, store.Users().Save(context.Background(), u), domainuser.ErrEmailAlreadyUsed)
}

func TestUnitSeesOwnWritesAndRollbackDiscards(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	unit := begin(t, store)

	l, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:    "l1",
		Owner: "m1",
		Details: domainlistings.Details{
			Title:       "Loft",
			NightlyRate: money.Money{Amount: 2000},
			Location:    "Pune",
			Country:     "India",
		},
		Now: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, unit.Listings().Save(ctx, l))

	got, err := unit.Listings().ByID(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, "Loft", got.Title)

	res, err := unit.Listings().Search(ctx, domainlistings.SearchParams{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)

	require.NoError(t, unit.Rollback(ctx))
	other := begin(t, store)
	_, err = other.Listings().ByID(ctx, "l1")
	require.ErrorIs(t, err, domainlistings.ErrNotFound)
}

func TestListingDeleteAndSearchOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	unit := begin(t, store)
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, rate := range []int64{3000, 1000, 2000} {
		l, err := domainlistings.NewListing(domainlistings.CreateListingParams{
			ID:    domainlistings.ListingID(string(rune('a' + i))),
			Owner: "m1",
			Details: domainlistings.Details{
				Title:       "Stay",
				NightlyRate: money.Money{Amount: rate},
				Location:    "Goa",
				Country:     "India",
			},
			Now: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
		require.NoError(t, unit.Listings().Save(ctx, l))
	}
	require.NoError(t, unit.Commit(ctx))

	read := begin(t, store)
	res, err := read.Listings().Search(ctx, domainlistings.SearchParams{Sort: domainlistings.SortByPriceAsc})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	require.Equal(t, int64(1000), res.Items[0].NightlyRate.Amount)

	res, err = read.Listings().Search(ctx, domainlistings.SearchParams{})
	require.NoError(t, err)
	require.Equal(t, domainlistings.ListingID("c"), res.Items[0].ID)

	del := begin(t, store)
	require.NoError(t, del.Listings().Delete(ctx, "a"))
	require.NoError(t, del.Commit(ctx))

	res, err = begin(t, store).Listings().Search(ctx, domainlistings.SearchParams{})
	require.NoError(t, err)
	require.Equal(t, 2, res.Total)
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	unit := begin(t, store)
	require.NoError(t, unit.Bookings().Save(ctx, &domainbooking.Booking{ID: "b1", GuestID: "g", State: domainbooking.StateConfirmed, Total: money.Money{Amount: 9900, Currency: "INR"}}))
	require.NoError(t, unit.Bookings().Save(ctx, &domainbooking.Booking{ID: "b2", GuestID: "g", State: domainbooking.StateCancelled, Total: money.Money{Amount: 9455, Currency: "INR"}, CancellationFee: money.Money{Amount: 946, Currency: "INR"}}))
	require.NoError(t, unit.Commit(ctx))

	summary, err := begin(t, store).Bookings().Summarize(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Confirmed)
	require.Equal(t, 1, summary.Cancelled)
	require.Equal(t, int64(9900), summary.ConfirmedRevenue.Amount)
	require.Equal(t, int64(946), summary.RetainedFees.Amount)
}

func TestOutboxRecordsFollowCommit(t *testing.T) {
	var delivered []string
	box := NewOutbox(func(ctx context.Context, rec appoutbox.EventRecord) error {
		delivered = append(delivered, rec.ID)
		return nil
	})
	store := NewStore()

	rolledBack := begin(t, store)
	ctx := uow.ContextWithUnitOfWork(context.Background(), rolledBack)
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "e1"}))
	require.NoError(t, rolledBack.Rollback(ctx))

	committed := begin(t, store)
	ctx = uow.ContextWithUnitOfWork(context.Background(), committed)
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "e2"}))
	require.Empty(t, box.Pending())
	require.NoError(t, committed.Commit(ctx))

	require.NoError(t, box.Flush(context.Background()))
	require.Equal(t, []string{"e2"}, delivered)
}

func TestContactListFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	unit := begin(t, store)
	now := time.Now()
	for i, status := range []domaincontact.Status{domaincontact.StatusUnread, domaincontact.StatusRead, domaincontact.StatusUnread} {
		require.NoError(t, unit.Contacts().Save(ctx, &domaincontact.Message{
			ID:        domaincontact.MessageID(string(rune('a' + i))),
			Status:    status,
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, unit.Commit(ctx))

	items, total, err := begin(t, store).Contacts().List(ctx, domaincontact.ListParams{Status: domaincontact.StatusUnread, Limit: 1})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, items, 1)
	require.Equal(t, domaincontact.MessageID("c"), items[0].ID)
}

func TestReviewDeletesStageUntilCommit(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	now := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)
	seed := begin(t, store)
	for i, listing := range []domainlistings.ListingID{"lst-1", "lst-1", "lst-2"} {
		require.NoError(t, seed.Reviews().Save(ctx, &domainreviews.Review{
			ID:        domainreviews.ReviewID(string(rune('a' + i))),
			ListingID: listing,
			Rating:    4,
			CreatedAt: now.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, seed.Commit(ctx))

	unit := begin(t, store)
	require.NoError(t, unit.Reviews().Delete(ctx, "a"))
	_, err := unit.Reviews().ByID(ctx, "a")
	require.ErrorIs(t, err, domainreviews.ErrNotFound)

	// other units still see the review until commit
	_, err = begin(t, store).Reviews().ByID(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, unit.Commit(ctx))

	items, total, err := begin(t, store).Reviews().ListByListing(ctx, "lst-1", 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, domainreviews.ReviewID("b"), items[0].ID)

	cascade := begin(t, store)
	require.NoError(t, cascade.Reviews().DeleteByListing(ctx, "lst-1"))
	require.NoError(t, cascade.Commit(ctx))
	_, total, err = begin(t, store).Reviews().ListByListing(ctx, "lst-1", 0, 0)
	require.NoError(t, err)
	require.Zero(t, total)
	_, total, err = begin(t, store).Reviews().ListByListing(ctx, "lst-2", 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)

	require.ErrorIs(t, begin(t, store).Reviews().Delete(ctx, "missing"), domainreviews.ErrNotFound)
}
