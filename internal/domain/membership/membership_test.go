package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.October, 14, 10, 0, 0, 0, time.UTC)

func TestActivateFromZeroState(t *testing.T) {
	l := DefaultLedger()
	s := l.Activate(State{}, now)

	require.True(t, s.IsMember)
	require.Equal(t, now.Add(30*24*time.Hour), s.ExpiresAt)
	require.Equal(t, time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC), s.ResetAt)
	require.Zero(t, s.FreeCancellationsUsed)
	require.True(t, l.IsActive(s, now))
	require.Equal(t, StatusActive, l.Status(s, now))
}

func TestActivateKeepsExistingWindow(t *testing.T) {
	l := DefaultLedger()
	reset := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	lapsed := State{IsMember: true, ExpiresAt: now.Add(-time.Hour), FreeCancellationsUsed: 1, ResetAt: reset}
	require.Equal(t, StatusExpired, l.Status(lapsed, now))

	renewed := l.Activate(lapsed, now)
	require.True(t, l.IsActive(renewed, now))
	require.Equal(t, 1, renewed.FreeCancellationsUsed)
	require.Equal(t, reset, renewed.ResetAt)
}

func TestIsActiveBoundaries(t *testing.T) {
	l := DefaultLedger()
	require.False(t, l.IsActive(State{}, now))
	require.False(t, l.IsActive(State{IsMember: true}, now))
	require.False(t, l.IsActive(State{IsMember: true, ExpiresAt: now}, now))
	require.True(t, l.IsActive(State{IsMember: true, ExpiresAt: now.Add(time.Nanosecond)}, now))
	require.False(t, l.IsActive(State{ExpiresAt: now.Add(time.Hour)}, now))
	require.Equal(t, StatusNonMember, l.Status(State{}, now))
}

func TestEnsureResetWindow(t *testing.T) {
	l := DefaultLedger()
	reset := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	s := State{IsMember: true, ExpiresAt: reset.Add(48 * time.Hour), FreeCancellationsUsed: 2, ResetAt: reset}

	before := l.EnsureResetWindow(s, reset.Add(-time.Second))
	require.Equal(t, s, before)

	at := l.EnsureResetWindow(s, reset)
	require.Zero(t, at.FreeCancellationsUsed)
	require.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), at.ResetAt)

	late := l.EnsureResetWindow(s, time.Date(2026, time.February, 20, 0, 0, 0, 0, time.UTC))
	require.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), late.ResetAt)

	unset := l.EnsureResetWindow(State{FreeCancellationsUsed: 1}, now)
	require.Equal(t, 1, unset.FreeCancellationsUsed)
}

func TestConsumeFreeCancellationRollsWindowFirst(t *testing.T) {
	l := DefaultLedger()
	s := State{IsMember: true, ExpiresAt: now.Add(time.Hour), FreeCancellationsUsed: 2, ResetAt: now.Add(-time.Minute)}

	require.True(t, l.CanCancelFree(s, now))
	next := l.ConsumeFreeCancellation(s, now)
	require.Equal(t, 1, next.FreeCancellationsUsed)
	require.Equal(t, 1, l.FreeCancellationsLeft(next, now))
}

func TestConsumeDoesNotGuardQuota(t *testing.T) {
	l := DefaultLedger()
	s := l.Activate(State{}, now)
	for i := 0; i < 3; i++ {
		s = l.ConsumeFreeCancellation(s, now)
	}
	require.Equal(t, 3, s.FreeCancellationsUsed)
	require.False(t, l.CanCancelFree(s, now))
	require.Zero(t, l.FreeCancellationsLeft(s, now))
}

func TestFreeCancellationsLeftForNonMember(t *testing.T) {
	require.Zero(t, DefaultLedger().FreeCancellationsLeft(State{}, now))
	require.Equal(t, 2, Ledger{}.Quota())
}

func TestNextMonthStartRollsYear(t *testing.T) {
	got := NextMonthStart(time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC))
	require.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), got)
}
