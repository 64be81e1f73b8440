package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"travelnest/internal/domain/membership"
)

func TestNewUserDefaultsToTraveller(t *testing.T) {
	u, err := NewUser(CreateParams{ID: "u1", Email: " Asha@Example.com ", Name: "Asha", PasswordHash: "hash"})
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", u.Email)
	require.Equal(t, []Role{RoleTraveller}, u.Roles)
	require.False(t, u.Membership.IsMember)
}

func TestNewUserValidation(t *testing.T) {
	_, err := NewUser(CreateParams{Email: "a@b.c", Name: "A", PasswordHash: "h"})
	require.ErrorIs(t, err, ErrIDRequired)

	_, err = NewUser(CreateParams{ID: "u", Name: "A", PasswordHash: "h"})
	require.ErrorIs(t, err, ErrEmailRequired)

	_, err = NewUser(CreateParams{ID: "u", Email: "a@b.c", Name: "A", PasswordHash: "h", Roles: []Role{"superuser"}})
	require.ErrorIs(t, err, ErrInvalidRole)

	u, err := NewUser(CreateParams{ID: "u", Email: "a@b.c", Name: "A", PasswordHash: "h", Roles: []Role{"Manager", "host", "traveller"}})
	require.NoError(t, err)
	require.Equal(t, []Role{RoleManager, RoleTraveller}, u.Roles)
}

func TestActivateMembershipRecordsEvent(t *testing.T) {
	now := time.Date(2025, time.October, 14, 0, 0, 0, 0, time.UTC)
	u, err := NewUser(CreateParams{ID: "u1", Email: "a@b.c", Name: "A", PasswordHash: "h", CreatedAt: now})
	require.NoError(t, err)

	u.ActivateMembership(membership.DefaultLedger(), "pay_1", now)
	require.True(t, u.Membership.IsMember)
	require.Equal(t, now.Add(membership.DefaultPeriod), u.Membership.ExpiresAt)

	evs := u.PendingEvents()
	require.Len(t, evs, 1)
	require.Equal(t, EventMembershipActivated, evs[0].EventName())
	require.Equal(t, "u1", evs[0].AggregateID())
}

func TestEnsureRole(t *testing.T) {
	u, err := NewUser(CreateParams{ID: "u1", Email: "a@b.c", Name: "A", PasswordHash: "h"})
	require.NoError(t, err)
	require.NoError(t, u.EnsureRole(RoleAdmin, time.Now()))
	require.True(t, u.HasRole("ADMIN"))
	require.ErrorIs(t, u.EnsureRole("root", time.Now()), ErrInvalidRole)
}
