package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"travelnest/internal/app/services/auth"
	domainauth "travelnest/internal/domain/auth"
	domainuser "travelnest/internal/domain/user"
	"travelnest/internal/infra/security"
	"travelnest/internal/infra/storage/memory"
)

func newService() (*auth.Service, *memory.Store) {
	store := memory.NewStore()
	return &auth.Service{
		Users:     store.Users(),
		Sessions:  memory.NewSessionStore(),
		Passwords: security.BcryptHasher{Cost: 4},
		Tokens:    security.SessionTokens{},
	}, store
}

func TestRegisterLoginLogout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	reg, err := svc.Register(ctx, auth.RegisterParams{Email: " Ravi@Example.com ", Name: "Ravi", Password: "correct-horse", AsManager: true})
	require.NoError(t, err)
	require.Equal(t, "ravi@example.com", reg.User.Email)
	require.True(t, reg.User.HasRole(domainuser.RoleManager))
	require.True(t, reg.User.HasRole(domainuser.RoleTraveller))

	_, err = svc.Register(ctx, auth.RegisterParams{Email: "ravi@example.com", Name: "Other", Password: "another-pass"})
	require.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)

	_, err = svc.Login(ctx, auth.LoginParams{Email: "ravi@example.com", Password: "wrong-password"})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	login, err := svc.Login(ctx, auth.LoginParams{Email: "RAVI@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	resolved, err := svc.ResolveToken(ctx, login.Token)
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, resolved.User.ID)

	require.NoError(t, svc.Logout(ctx, login.Token))
	_, err = svc.ResolveToken(ctx, login.Token)
	require.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Register(context.Background(), auth.RegisterParams{Email: "a@example.com", Name: "A", Password: "short"})
	require.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()

	first, err := svc.EnsureAdmin(ctx, "admin@travelnest.test", "admin-password", "")
	require.NoError(t, err)
	require.True(t, first.HasRole(domainuser.RoleAdmin))
	require.Equal(t, "Admin", first.Name)

	second, err := svc.EnsureAdmin(ctx, "ADMIN@travelnest.test", "ignored-password", "Someone")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	users, total, err := store.Users().List(ctx, domainuser.ListParams{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, users, 1)
}

func TestEnsureAdminPromotesExistingAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	reg, err := svc.Register(ctx, auth.RegisterParams{Email: "ops@example.com", Name: "Ops", Password: "ops-password"})
	require.NoError(t, err)

	admin, err := svc.EnsureAdmin(ctx, "ops@example.com", "", "")
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, admin.ID)
	require.True(t, admin.HasRole(domainuser.RoleAdmin))

	_, err = svc.Login(ctx, auth.LoginParams{Email: "ops@example.com", Password: "ops-password"})
	require.NoError(t, err)
}
