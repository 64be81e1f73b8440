package admin

import (
	"context"
	"log/slog"
	"time"

	"travelnest/internal/app/dto"
	handlersupport "travelnest/internal/app/handlers/support"
	"travelnest/internal/app/projections"
	"travelnest/internal/app/queries"
	"travelnest/internal/app/uow"
	domaincontact "travelnest/internal/domain/contact"
	domainlistings "travelnest/internal/domain/listings"
	domainmembership "travelnest/internal/domain/membership"
	"travelnest/internal/domain/shared/money"
	domainuser "travelnest/internal/domain/user"
)

const (
	dashboardKey = "admin.dashboard"

	userPageSize         = 200
	defaultRevenueMonths = 12
)

type DashboardQuery struct {
	Months int `validate:"gte=0,lte=120"`
}

func (q DashboardQuery) Key() string { return dashboardKey }

type RevenueReader interface {
	Monthly(ctx context.Context, limit int) ([]projections.MonthlyRevenue, error)
}

// DashboardHandler builds the admin statistics from the repositories on every
// request. Monthly revenue comes from the projection and is omitted when no
// reader is configured.
type DashboardHandler struct {
	UoWFactory uow.UoWFactory
	Revenue    RevenueReader
	Ledger     domainmembership.Ledger
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *DashboardHandler) Handle(ctx context.Context, q DashboardQuery) (dto.Dashboard, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Dashboard{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now().UTC()
	}
	out := dto.Dashboard{UsersByRole: map[string]int{}}

	for offset := 0; ; offset += userPageSize {
		users, total, err := unit.Users().List(execCtx, domainuser.ListParams{Limit: userPageSize, Offset: offset})
		if err != nil {
			return dto.Dashboard{}, err
		}
		out.TotalUsers = total
		for _, u := range users {
			for _, role := range u.Roles {
				out.UsersByRole[string(role)]++
			}
			if h.Ledger.IsActive(u.Membership, now) {
				out.ActiveMembers++
			}
		}
		if len(users) < userPageSize || offset+len(users) >= total {
			break
		}
	}

	listings, err := unit.Listings().Search(execCtx, domainlistings.SearchParams{Limit: 1}.Normalized())
	if err != nil {
		return dto.Dashboard{}, err
	}
	out.Listings = listings.Total

	summary, err := unit.Bookings().Summarize(execCtx)
	if err != nil {
		return dto.Dashboard{}, err
	}
	out.ConfirmedBookings = summary.Confirmed
	out.CancelledBookings = summary.Cancelled
	out.BookingRevenue = dto.MapMoney(withCurrency(summary.ConfirmedRevenue))
	out.RetainedFees = dto.MapMoney(withCurrency(summary.RetainedFees))

	_, unread, err := unit.Contacts().List(execCtx, domaincontact.ListParams{Status: domaincontact.StatusUnread, Limit: 1})
	if err != nil {
		return dto.Dashboard{}, err
	}
	out.UnreadMessages = unread

	out.Monthly = []dto.MonthlyRevenue{}
	if h.Revenue != nil {
		months := q.Months
		if months <= 0 {
			months = defaultRevenueMonths
		}
		monthly, err := h.Revenue.Monthly(execCtx, months)
		if err != nil {
			if h.Logger != nil {
				h.Logger.Warn("revenue projection unavailable", "error", err)
			}
		} else {
			for _, m := range monthly {
				out.Monthly = append(out.Monthly, dto.MonthlyRevenue{
					Month:         m.Month,
					Bookings:      m.Bookings,
					Cancellations: m.Cancellations,
					Gross:         dto.MapMoney(withCurrency(m.Gross)),
					Refunded:      dto.MapMoney(withCurrency(m.Refunded)),
					Net:           dto.MapMoney(withCurrency(m.Net())),
				})
			}
		}
	}
	return out, nil
}

func withCurrency(m money.Money) money.Money {
	if m.Currency == "" {
		m.Currency = money.DefaultCurrency
	}
	return m
}

var _ queries.Handler[DashboardQuery, dto.Dashboard] = (*DashboardHandler)(nil)
