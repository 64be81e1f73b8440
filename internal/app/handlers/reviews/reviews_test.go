package reviews_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	listingapp "travelnest/internal/app/handlers/listings"
	reviewsapp "travelnest/internal/app/handlers/reviews"
	"travelnest/internal/app/uow"
	domainlistings "travelnest/internal/domain/listings"
	domainreviews "travelnest/internal/domain/reviews"
	"travelnest/internal/domain/shared/money"
	domainuser "travelnest/internal/domain/user"
	"travelnest/internal/infra/storage/memory"
)

var postedAt = time.Date(2030, 3, 3, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	factory memory.Factory
	box     *memory.Outbox
	submit  *reviewsapp.SubmitReviewHandler
	remove  *reviewsapp.DeleteReviewHandler
	list    *reviewsapp.ListListingReviewsHandler
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	factory := memory.Factory{Store: store}
	box := memory.NewOutbox(nil)
	clock := func() time.Time { return postedAt }

	ctx := context.Background()
	unit, err := factory.Begin(ctx, uow.TxOptions{})
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
		Now: postedAt,
	})
	require.NoError(t, err)
	listing.ClearEvents()
	require.NoError(t, unit.Listings().Save(ctx, listing))
	require.NoError(t, unit.Commit(ctx))

	for _, u := range []struct {
		id   string
		role domainuser.Role
	}{{"asha", domainuser.RoleTraveller}, {"ravi", domainuser.RoleTraveller}, {"mgr-1", domainuser.RoleManager}} {
		user, err := domainuser.NewUser(domainuser.CreateParams{
			ID:           domainuser.ID(u.id),
			Email:        u.id + "@example.com",
			Name:         u.id,
			PasswordHash: "hash",
			Roles:        []domainuser.Role{u.role},
			CreatedAt:    postedAt,
		})
		require.NoError(t, err)
		require.NoError(t, store.Users().Save(ctx, user))
	}

	return fixture{
		store:   store,
		factory: factory,
		box:     box,
		submit:  &reviewsapp.SubmitReviewHandler{UoWFactory: factory, Outbox: box, Now: clock},
		remove:  &reviewsapp.DeleteReviewHandler{UoWFactory: factory, Outbox: box, Now: clock},
		list:    &reviewsapp.ListListingReviewsHandler{UoWFactory: factory},
	}
}

func (f fixture) post(t *testing.T, author string, rating int, comment string) string {
	t.Helper()
	review, err := f.submit.Handle(context.Background(), reviewsapp.SubmitReviewCommand{
		ListingID: "lst-1",
		AuthorID:  author,
		Rating:    rating,
		Comment:   comment,
	})
	require.NoError(t, err)
	return review.ID
}

func TestSubmitReview(t *testing.T) {
	f := newFixture(t)

	review, err := f.submit.Handle(context.Background(), reviewsapp.SubmitReviewCommand{
		ListingID: "lst-1",
		AuthorID:  "asha",
		Rating:    5,
		Comment:   " Great host ",
	})
	require.NoError(t, err)
	require.Equal(t, "lst-1", review.ListingID)
	require.Equal(t, "asha", review.AuthorName)
	require.Equal(t, "Great host", review.Comment)
	require.Equal(t, postedAt, review.CreatedAt)

	pending := f.box.Pending()
	require.Len(t, pending, 1)
	require.Equal(t, domainreviews.EventReviewPosted, pending[0].Name)
}

func TestSubmitReviewRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.submit.Handle(ctx, reviewsapp.SubmitReviewCommand{ListingID: "lst-1", AuthorID: "asha", Rating: 6})
	require.ErrorIs(t, err, domainreviews.ErrInvalidRating)

	_, err = f.submit.Handle(ctx, reviewsapp.SubmitReviewCommand{ListingID: "missing", AuthorID: "asha", Rating: 4})
	require.ErrorIs(t, err, domainlistings.ErrNotFound)

	_, err = f.submit.Handle(ctx, reviewsapp.SubmitReviewCommand{ListingID: "lst-1", AuthorID: "ghost", Rating: 4})
	require.ErrorIs(t, err, domainuser.ErrNotFound)

	_, err = f.submit.Handle(ctx, reviewsapp.SubmitReviewCommand{ListingID: "lst-1", AuthorID: "mgr-1", Rating: 4})
	require.ErrorIs(t, err, reviewsapp.ErrTravellerOnly)

	page, err := f.list.Handle(ctx, reviewsapp.ListListingReviewsQuery{ListingID: "lst-1"})
	require.NoError(t, err)
	require.Zero(t, page.Total)
	require.Empty(t, f.box.Pending())
}

func TestDeleteReviewOnlyByAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.post(t, "asha", 4, "Nice")

	_, err := f.remove.Handle(ctx, reviewsapp.DeleteReviewCommand{ReviewID: id, ActorID: "ravi"})
	require.ErrorIs(t, err, domainreviews.ErrNotAuthor)
	// the listing manager is not the author either
	_, err = f.remove.Handle(ctx, reviewsapp.DeleteReviewCommand{ReviewID: id, ActorID: "mgr-1"})
	require.ErrorIs(t, err, domainreviews.ErrNotAuthor)

	page, err := f.list.Handle(ctx, reviewsapp.ListListingReviewsQuery{ListingID: "lst-1"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	_, err = f.remove.Handle(ctx, reviewsapp.DeleteReviewCommand{ReviewID: id, ActorID: "asha"})
	require.NoError(t, err)
	page, err = f.list.Handle(ctx, reviewsapp.ListListingReviewsQuery{ListingID: "lst-1"})
	require.NoError(t, err)
	require.Zero(t, page.Total)

	_, err = f.remove.Handle(ctx, reviewsapp.DeleteReviewCommand{ReviewID: id, ActorID: "asha"})
	require.ErrorIs(t, err, domainreviews.ErrNotFound)

	names := make([]string, 0)
	for _, rec := range f.box.Pending() {
		names = append(names, rec.Name)
	}
	require.Equal(t, []string{domainreviews.EventReviewPosted, domainreviews.EventReviewRemoved}, names)
}

func TestListListingReviewsPagesAndAverages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ratings := []int{5, 4, 3}
	for i, rating := range ratings {
		f.submit.Now = func() time.Time { return postedAt.Add(time.Duration(i) * time.Hour) }
		f.post(t, "asha", rating, "")
	}

	page, err := f.list.Handle(ctx, reviewsapp.ListListingReviewsQuery{ListingID: "lst-1", Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	// newest first
	require.Equal(t, 3, page.Items[0].Rating)
	require.InDelta(t, 4.0, page.AverageRating, 0.0001)

	page, err = f.list.Handle(ctx, reviewsapp.ListListingReviewsQuery{ListingID: "lst-1", Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, 5, page.Items[0].Rating)

	page, err = f.list.Handle(ctx, reviewsapp.ListListingReviewsQuery{ListingID: "lst-1", Offset: 10})
	require.NoError(t, err)
	require.Empty(t, page.Items)

	_, err = f.list.Handle(ctx, reviewsapp.ListListingReviewsQuery{ListingID: "missing"})
	require.ErrorIs(t, err, domainlistings.ErrNotFound)
}

func TestDeletingListingRemovesItsReviews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.post(t, "asha", 5, "")
	f.post(t, "ravi", 2, "")

	unit, err := f.factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	del := &listingapp.DeleteListingHandler{}
	_, err = del.Handle(uow.ContextWithUnitOfWork(ctx, unit), listingapp.DeleteListingCommand{
		Actor:     listingapp.Actor{ID: "mgr-1"},
		ListingID: "lst-1",
	})
	require.NoError(t, err)
	require.NoError(t, unit.Commit(ctx))

	check, err := f.factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	_, total, err := check.Reviews().ListByListing(ctx, "lst-1", 0, 0)
	require.NoError(t, err)
	require.Zero(t, total)
}
