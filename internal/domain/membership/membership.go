package membership

import (
	"time"
)

const (
	DefaultPeriod                = 30 * 24 * time.Hour
	DefaultFreeCancellationQuota = 2
)

type Status string

const (
	StatusNonMember Status = "non_member"
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
)

// State is the membership record stored on a user. Zero times mean "never set".
type State struct {
	IsMember              bool
	ExpiresAt             time.Time
	FreeCancellationsUsed int
	ResetAt               time.Time
}

// Ledger holds the membership rules. All methods take a state by value and
// return the next one; persisting it is up to the caller.
type Ledger struct {
	Period                    time.Duration
	FreeCancellationsPerMonth int
}

func DefaultLedger() Ledger {
	return Ledger{Period: DefaultPeriod, FreeCancellationsPerMonth: DefaultFreeCancellationQuota}
}

func (l Ledger) IsActive(s State, now time.Time) bool {
	return s.IsMember && !s.ExpiresAt.IsZero() && s.ExpiresAt.After(now)
}

func (l Ledger) Status(s State, now time.Time) Status {
	switch {
	case l.IsActive(s, now):
		return StatusActive
	case s.IsMember:
		return StatusExpired
	default:
		return StatusNonMember
	}
}

// Activate starts or renews a membership period from now. Usage is only
// initialised when no reset window exists yet, so a renewal keeps whatever
// quota was consumed this month.
func (l Ledger) Activate(s State, now time.Time) State {
	s.IsMember = true
	s.ExpiresAt = now.UTC().Add(l.period())
	if s.ResetAt.IsZero() {
		s.ResetAt = NextMonthStart(now)
		s.FreeCancellationsUsed = 0
	}
	return s
}

// EnsureResetWindow zeroes usage once the reset instant has been reached and
// moves the window to the first day of the following month.
func (l Ledger) EnsureResetWindow(s State, now time.Time) State {
	if s.ResetAt.IsZero() || now.Before(s.ResetAt) {
		return s
	}
	s.FreeCancellationsUsed = 0
	s.ResetAt = NextMonthStart(now)
	return s
}

// CanCancelFree reports whether the member still has a free cancellation in
// the current window. It rolls the window first.
func (l Ledger) CanCancelFree(s State, now time.Time) bool {
	s = l.EnsureResetWindow(s, now)
	return l.IsActive(s, now) && s.FreeCancellationsUsed < l.quota()
}

// ConsumeFreeCancellation records one free cancellation. It does not check the
// quota; call CanCancelFree first.
func (l Ledger) ConsumeFreeCancellation(s State, now time.Time) State {
	s = l.EnsureResetWindow(s, now)
	s.FreeCancellationsUsed++
	return s
}

// FreeCancellationsLeft is the remaining quota for display. Inactive members
// have none.
func (l Ledger) FreeCancellationsLeft(s State, now time.Time) int {
	s = l.EnsureResetWindow(s, now)
	if !l.IsActive(s, now) {
		return 0
	}
	left := l.quota() - s.FreeCancellationsUsed
	if left < 0 {
		return 0
	}
	return left
}

func (l Ledger) Quota() int {
	return l.quota()
}

func (l Ledger) period() time.Duration {
	if l.Period > 0 {
		return l.Period
	}
	return DefaultPeriod
}

func (l Ledger) quota() int {
	if l.FreeCancellationsPerMonth > 0 {
		return l.FreeCancellationsPerMonth
	}
	return DefaultFreeCancellationQuota
}

// NextMonthStart is midnight UTC on the first day of the month after t.
func NextMonthStart(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC)
}
