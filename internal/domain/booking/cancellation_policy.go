package booking

import (
	"time"

	"travelnest/internal/domain/membership"
	"travelnest/internal/domain/shared/money"
)

const DefaultCancellationFeeBps int64 = 1000

// CancellationPolicy decides what a guest pays to cancel. The fee depends only
// on membership and the monthly free cancellation quota, not on how close the
// check-in date is.
type CancellationPolicy struct {
	Ledger membership.Ledger
	FeeBps int64
}

func DefaultCancellationPolicy() CancellationPolicy {
	return CancellationPolicy{Ledger: membership.DefaultLedger(), FeeBps: DefaultCancellationFeeBps}
}

type CancellationDecision struct {
	Fee                  money.Money
	Refund               money.Money
	UsedFreeCancellation bool
}

// Decide rolls the quota window, then either spends a free cancellation or
// charges the fee. The returned state already contains the rollover and the
// consumed cancellation and must be saved together with the booking.
func (p CancellationPolicy) Decide(total money.Money, state membership.State, now time.Time) (CancellationDecision, membership.State) {
	state = p.Ledger.EnsureResetWindow(state, now)
	if p.Ledger.IsActive(state, now) && state.FreeCancellationsUsed < p.Ledger.Quota() {
		state = p.Ledger.ConsumeFreeCancellation(state, now)
		return CancellationDecision{
			Fee:                  money.Zero(total.Currency),
			Refund:               total,
			UsedFreeCancellation: true,
		}, state
	}
	fee := total.PercentBps(p.feeBps())
	return CancellationDecision{
		Fee:    fee,
		Refund: money.Money{Amount: total.Amount - fee.Amount, Currency: total.Currency},
	}, state
}

func (p CancellationPolicy) feeBps() int64 {
	if p.FeeBps > 0 {
		return p.FeeBps
	}
	return DefaultCancellationFeeBps
}
