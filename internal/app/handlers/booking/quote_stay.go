package booking

import (
	"context"

	"travelnest/internal/app/dto"
	handlersupport "travelnest/internal/app/handlers/support"
	"travelnest/internal/app/policies"
	"travelnest/internal/app/queries"
	"travelnest/internal/app/uow"
	domainpricing "travelnest/internal/domain/pricing"
)

const quoteStayKey = "booking.quote"

// QuoteStayQuery prices a stay with the direct booking policy. UserID is
// optional; an active membership waives the service fee.
type QuoteStayQuery struct {
	ListingID string `validate:"required"`
	UserID    string
	CheckIn   string
	CheckOut  string
	Guests    int `validate:"gte=0,lte=50"`
}

func (q QuoteStayQuery) Key() string { return quoteStayKey }

type QuoteStayHandler struct {
	UoWFactory uow.UoWFactory
	Policies   policies.PricingPolicies
	Now        Clock
}

func (h *QuoteStayHandler) Handle(ctx context.Context, q QuoteStayQuery) (dto.Quote, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Quote{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := loadListing(execCtx, unit, q.ListingID)
	if err != nil {
		return dto.Quote{}, err
	}
	member, err := activeMember(execCtx, unit, q.UserID, h.Now.now())
	if err != nil {
		return dto.Quote{}, err
	}
	quote, stay := h.Policies.Direct.QuoteStay(domainpricing.StayRequest{
		Nightly:  listing.NightlyRate,
		CheckIn:  q.CheckIn,
		CheckOut: q.CheckOut,
		Guests:   q.Guests,
	}, member)
	return dto.MapQuote(string(listing.ID), quote, stay), nil
}

var _ queries.Handler[QuoteStayQuery, dto.Quote] = (*QuoteStayHandler)(nil)
