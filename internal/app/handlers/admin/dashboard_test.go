package admin_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	adminapp "travelnest/internal/app/handlers/admin"
	"travelnest/internal/app/projections"
	"travelnest/internal/app/uow"
	domaincontact "travelnest/internal/domain/contact"
	domainlistings "travelnest/internal/domain/listings"
	domainmembership "travelnest/internal/domain/membership"
	"travelnest/internal/domain/shared/money"
	domainuser "travelnest/internal/domain/user"
	"travelnest/internal/infra/storage/memory"
)

var now = time.Date(2030, 4, 15, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	users := []struct {
		id     string
		roles  []domainuser.Role
		member bool
	}{
		{"u1", nil, true},
		{"u2", []domainuser.Role{domainuser.RoleTraveller, domainuser.RoleManager}, false},
		{"u3", []domainuser.Role{domainuser.RoleAdmin}, false},
	}
	for _, seed := range users {
		u, err := domainuser.NewUser(domainuser.CreateParams{ID: domainuser.ID(seed.id), Email: seed.id + "@example.com", Name: seed.id, PasswordHash: "hash", Roles: seed.roles})
		require.NoError(t, err)
		if seed.member {
			u.Membership = domainmembership.DefaultLedger().Activate(u.Membership, now)
		}
		require.NoError(t, store.Users().Save(ctx, u))
	}

	unit, err := memory.Factory{Store: store}.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:      "lst-1",
		Owner:   "u2",
		Details: domainlistings.Details{Title: "Hill cabin", NightlyRate: money.Money{Amount: 3000}, Location: "Manali", Country: "India"},
		Now:     now,
	})
	require.NoError(t, err)
	require.NoError(t, unit.Listings().Save(ctx, listing))
	msg, err := domaincontact.NewMessage(domaincontact.SubmitParams{ID: "m1", Name: "Kiran", Email: "kiran@example.com", Subject: "Hi", Body: "Question", Now: now})
	require.NoError(t, err)
	require.NoError(t, unit.Contacts().Save(ctx, msg))
	require.NoError(t, unit.Commit(ctx))
	return store
}

func TestDashboardAggregates(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	revenue := memory.NewRevenueStore()
	require.NoError(t, revenue.Apply(ctx, "2030-04", projections.RevenueDelta{Bookings: 2, Gross: 20000, Currency: "INR"}))

	h := &adminapp.DashboardHandler{
		UoWFactory: memory.Factory{Store: store},
		Revenue:    revenue,
		Ledger:     domainmembership.DefaultLedger(),
		Now:        func() time.Time { return now },
	}
	out, err := h.Handle(ctx, adminapp.DashboardQuery{})
	require.NoError(t, err)

	require.Equal(t, 3, out.TotalUsers)
	require.Equal(t, 2, out.UsersByRole["traveller"])
	require.Equal(t, 1, out.UsersByRole["manager"])
	require.Equal(t, 1, out.UsersByRole["admin"])
	require.Equal(t, 1, out.ActiveMembers)
	require.Equal(t, 1, out.Listings)
	require.Equal(t, 1, out.UnreadMessages)
	require.Zero(t, out.ConfirmedBookings)
	require.Equal(t, "INR", out.BookingRevenue.Currency)
	require.Len(t, out.Monthly, 1)
	require.Equal(t, int64(20000), out.Monthly[0].Net.Amount)
}

func TestDashboardWithoutRevenueReader(t *testing.T) {
	h := &adminapp.DashboardHandler{UoWFactory: memory.Factory{Store: seed(t)}}
	out, err := h.Handle(context.Background(), adminapp.DashboardQuery{})
	require.NoError(t, err)
	require.NotNil(t, out.Monthly)
	require.Empty(t, out.Monthly)
}

func TestListUsersFiltersByRole(t *testing.T) {
	h := &adminapp.ListUsersHandler{UoWFactory: memory.Factory{Store: seed(t)}}
	out, err := h.Handle(context.Background(), adminapp.ListUsersQuery{Role: "manager"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Total)
	require.Equal(t, "u2", out.Items[0].ID)
}
