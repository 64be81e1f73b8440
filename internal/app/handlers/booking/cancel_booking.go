package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"travelnest/internal/app/commands"
	"travelnest/internal/app/dto"
	handlersupport "travelnest/internal/app/handlers/support"
	"travelnest/internal/app/outbox"
	"travelnest/internal/app/uow"
	domainbooking "travelnest/internal/domain/booking"
	domainuser "travelnest/internal/domain/user"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID string `validate:"required"`
	GuestID   string `validate:"required"`
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

// CancelBookingHandler charges the cancellation fee or spends a free member
// cancellation. The guest's membership and the booking are saved in the same
// unit of work; a concurrent change to either fails the whole cancellation.
type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Policy     domainbooking.CancellationPolicy
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        Clock
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*dto.CancellationResult, error) {
	guestID := strings.TrimSpace(cmd.GuestID)
	if guestID == "" {
		return nil, domainbooking.ErrGuestRequired
	}
	unit, execCtx, finish, cleanup, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		if errors.Is(err, uow.ErrUnitOfWorkMissing) {
			return nil, ErrUnitOfWorkRequired
		}
		return nil, err
	}
	defer cleanup()

	booking, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if !booking.OwnedBy(guestID) {
		return nil, domainbooking.ErrNotOwner
	}
	if booking.State != domainbooking.StateConfirmed {
		return nil, domainbooking.ErrInvalidState
	}
	guest, err := unit.Users().ByID(execCtx, domainuser.ID(guestID))
	if err != nil {
		return nil, err
	}

	now := h.Now.now()
	policy := h.policy()
	decision, state := policy.Decide(booking.Total, guest.Membership, now)
	if err := booking.Cancel(decision, now); err != nil {
		return nil, err
	}
	guest.ApplyMembership(state, now)

	if err := unit.Users().Save(execCtx, guest); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(execCtx, booking); err != nil {
		return nil, err
	}
	encoder := h.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	if err := recordBookingEvents(execCtx, h.Outbox, encoder, booking); err != nil {
		return nil, err
	}

	listing, err := unit.Listings().ByID(execCtx, booking.ListingID)
	if err != nil {
		listing = nil
		if h.Logger != nil {
			h.Logger.Warn("listing snapshot missing for cancelled booking", "booking_id", booking.ID, "listing_id", booking.ListingID, "error", err)
		}
	}
	if err := finish(execCtx); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking cancelled",
			"booking_id", booking.ID,
			"guest_id", guestID,
			"fee", decision.Fee.Amount,
			"free_cancellation", decision.UsedFreeCancellation,
		)
	}

	return &dto.CancellationResult{
		Booking:               dto.MapBookingSummary(booking, listing),
		Fee:                   dto.MapMoney(decision.Fee),
		Refund:                dto.MapMoney(decision.Refund),
		FreeCancellationUsed:  decision.UsedFreeCancellation,
		FreeCancellationsLeft: policy.Ledger.FreeCancellationsLeft(state, now),
	}, nil
}

func (h *CancelBookingHandler) policy() domainbooking.CancellationPolicy {
	if h.Policy == (domainbooking.CancellationPolicy{}) {
		return domainbooking.DefaultCancellationPolicy()
	}
	return h.Policy
}

var _ commands.Handler[CancelBookingCommand, *dto.CancellationResult] = (*CancelBookingHandler)(nil)
