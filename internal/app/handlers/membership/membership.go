package membership

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"travelnest/internal/app/commands"
	"travelnest/internal/app/dto"
	handlersupport "travelnest/internal/app/handlers/support"
	"travelnest/internal/app/middleware"
	"travelnest/internal/app/outbox"
	"travelnest/internal/app/policies"
	"travelnest/internal/app/queries"
	"travelnest/internal/app/uow"
	domainmembership "travelnest/internal/domain/membership"
	"travelnest/internal/domain/shared/money"
	domainuser "travelnest/internal/domain/user"
)

const (
	startMembershipCheckoutKey = "membership.checkout.start"
	activateMembershipKey      = "membership.activate"
	getMembershipKey           = "membership.get"

	purposeMembership = "membership"
)

// DefaultPrice is the monthly membership fee in whole rupees.
var DefaultPrice = money.Money{Amount: 999, Currency: money.DefaultCurrency}

var (
	ErrUserRequired     = errors.New("membership: user id is required")
	ErrPaymentsRequired = errors.New("membership: payment gateway required")
)

type StartMembershipCheckoutCommand struct {
	UserID string `validate:"required"`
}

func (c StartMembershipCheckoutCommand) Key() string { return startMembershipCheckoutKey }

type StartMembershipCheckoutHandler struct {
	UoWFactory uow.UoWFactory
	Payments   policies.PaymentsPort
	Price      money.Money
}

func (h *StartMembershipCheckoutHandler) Handle(ctx context.Context, cmd StartMembershipCheckoutCommand) (*dto.CheckoutOrder, error) {
	if h.Payments == nil {
		return nil, ErrPaymentsRequired
	}
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return nil, ErrUserRequired
	}
	if err := h.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	receipt := "membership_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	order, err := h.Payments.CreateOrder(ctx, priceOrDefault(h.Price), receipt, orderNotes(userID))
	if err != nil {
		return nil, err
	}
	return &dto.CheckoutOrder{
		OrderID:  order.ID,
		KeyID:    h.Payments.PublicKey(),
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  order.Receipt,
	}, nil
}

func (h *StartMembershipCheckoutHandler) ensureUser(ctx context.Context, userID string) error {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}
	_, err = unit.Users().ByID(execCtx, domainuser.ID(userID))
	return err
}

func priceOrDefault(price money.Money) money.Money {
	if price.IsPositive() {
		return price
	}
	return DefaultPrice
}

func orderNotes(userID string) map[string]string {
	return map[string]string{
		policies.NotePurpose: purposeMembership,
		policies.NoteUserID:  userID,
	}
}

type ActivateMembershipCommand struct {
	UserID    string `validate:"required"`
	OrderID   string `validate:"required"`
	PaymentID string `validate:"required"`
	Signature string `validate:"required"`
}

func (c ActivateMembershipCommand) Key() string { return activateMembershipKey }

// IdempotencyKey keeps a replayed verification from extending the period twice.
func (c ActivateMembershipCommand) IdempotencyKey() string {
	if c.PaymentID == "" {
		return ""
	}
	return "membership:" + c.PaymentID
}

func (c ActivateMembershipCommand) ResultPrototype() any { return &dto.MembershipStatus{} }

// ActivateMembershipHandler only accepts orders opened by the membership
// checkout for the same user and the current price.
type ActivateMembershipHandler struct {
	UoWFactory uow.UoWFactory
	Payments   policies.PaymentsPort
	Price      money.Money
	Ledger     domainmembership.Ledger
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *ActivateMembershipHandler) Handle(ctx context.Context, cmd ActivateMembershipCommand) (*dto.MembershipStatus, error) {
	if h.Payments == nil {
		return nil, ErrPaymentsRequired
	}
	paid, err := h.Payments.VerifyPayment(ctx, policies.PaymentConfirmation{
		OrderID:   cmd.OrderID,
		PaymentID: cmd.PaymentID,
		Signature: cmd.Signature,
	})
	if err != nil {
		return nil, err
	}
	if err := policies.MatchOrder(paid, priceOrDefault(h.Price), orderNotes(strings.TrimSpace(cmd.UserID))); err != nil {
		return nil, err
	}

	unit, execCtx, finish, cleanup, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	user, err := unit.Users().ByID(execCtx, domainuser.ID(cmd.UserID))
	if err != nil {
		return nil, err
	}
	now := h.now()
	ledger := h.Ledger
	user.ActivateMembership(ledger, cmd.PaymentID, now)
	if err := unit.Users().Save(execCtx, user); err != nil {
		return nil, err
	}
	evs := user.PendingEvents()
	user.ClearEvents()
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.Encoder, evs); err != nil {
		return nil, err
	}
	if err := finish(execCtx); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("membership activated", "user_id", user.ID, "expires_at", user.Membership.ExpiresAt)
	}
	status := dto.MapMembership(ledger, user.Membership, now)
	return &status, nil
}

func (h *ActivateMembershipHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

type GetMembershipQuery struct {
	UserID string `validate:"required"`
}

func (q GetMembershipQuery) Key() string { return getMembershipKey }

type GetMembershipHandler struct {
	UoWFactory uow.UoWFactory
	Ledger     domainmembership.Ledger
	Now        func() time.Time
}

// Handle reports the status as of now. The quota rollover is applied to the
// view only; it is persisted by the next cancellation.
func (h *GetMembershipHandler) Handle(ctx context.Context, q GetMembershipQuery) (dto.MembershipStatus, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.MembershipStatus{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	user, err := unit.Users().ByID(execCtx, domainuser.ID(q.UserID))
	if err != nil {
		return dto.MembershipStatus{}, err
	}
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now().UTC()
	}
	return dto.MapMembership(h.Ledger, user.Membership, now), nil
}

var _ commands.Handler[StartMembershipCheckoutCommand, *dto.CheckoutOrder] = (*StartMembershipCheckoutHandler)(nil)
var _ commands.Handler[ActivateMembershipCommand, *dto.MembershipStatus] = (*ActivateMembershipHandler)(nil)
var _ middleware.IdempotentCommand = (*ActivateMembershipCommand)(nil)
var _ queries.Handler[GetMembershipQuery, dto.MembershipStatus] = (*GetMembershipHandler)(nil)
