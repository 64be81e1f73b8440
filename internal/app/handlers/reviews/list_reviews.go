package reviews

import (
	"context"
	"log/slog"

	"travelnest/internal/app/dto"
	handlersupport "travelnest/internal/app/handlers/support"
	"travelnest/internal/app/queries"
	"travelnest/internal/app/uow"
	domainlistings "travelnest/internal/domain/listings"
	domainreviews "travelnest/internal/domain/reviews"
)

const listListingReviewsKey = "reviews.listing.list"

type ListListingReviewsQuery struct {
	ListingID string `validate:"required"`
	Limit     int    `validate:"gte=0"`
	Offset    int    `validate:"gte=0"`
}

func (q ListListingReviewsQuery) Key() string { return listListingReviewsKey }

// ListListingReviewsHandler pages through a listing's reviews, newest first.
// The average covers every review, not just the page.
type ListListingReviewsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListListingReviewsHandler) Handle(ctx context.Context, q ListListingReviewsQuery) (dto.ReviewCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listingID := domainlistings.ListingID(q.ListingID)
	if _, err := unit.Listings().ByID(execCtx, listingID); err != nil {
		return dto.ReviewCollection{}, err
	}
	all, total, err := unit.Reviews().ListByListing(execCtx, listingID, 0, 0)
	if err != nil {
		return dto.ReviewCollection{}, err
	}

	limit := normalizeLimit(q.Limit)
	offset := min(max(q.Offset, 0), len(all))
	end := min(offset+limit, len(all))
	items := make([]dto.Review, 0, end-offset)
	for _, review := range all[offset:end] {
		items = append(items, dto.MapReview(review))
	}

	if h.Logger != nil {
		h.Logger.Debug("listing reviews listed", "listing_id", listingID, "count", len(items), "total", total)
	}
	return dto.ReviewCollection{
		Items:         items,
		Total:         total,
		AverageRating: domainreviews.Summarize(all).Average,
	}, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

var _ queries.Handler[ListListingReviewsQuery, dto.ReviewCollection] = (*ListListingReviewsHandler)(nil)
