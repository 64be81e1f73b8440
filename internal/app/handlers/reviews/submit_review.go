package reviews

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
	"travelnest/internal/app/outbox"
	"travelnest/internal/app/uow"
	domainlistings "travelnest/internal/domain/listings"
	domainreviews "travelnest/internal/domain/reviews"
	domainuser "travelnest/internal/domain/user"
)

const submitReviewKey = "reviews.submit"

// ErrTravellerOnly is returned when a manager or admin account without the
// traveller role tries to post a review.
var ErrTravellerOnly = errors.New("reviews: only travellers can post reviews")

type SubmitReviewCommand struct {
	ListingID string `validate:"required"`
	AuthorID  string `validate:"required"`
	Rating    int    `validate:"gte=1,lte=5"`
	Comment   string `validate:"max=2000"`
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

// SubmitReviewHandler posts a review on a listing for the calling traveller.
type SubmitReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (dto.Review, error) {
	unit, execCtx, finish, cleanup, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Review{}, err
	}
	defer cleanup()

	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(strings.TrimSpace(cmd.ListingID)))
	if err != nil {
		return dto.Review{}, err
	}
	author, err := unit.Users().ByID(execCtx, domainuser.ID(strings.TrimSpace(cmd.AuthorID)))
	if err != nil {
		return dto.Review{}, err
	}
	if !author.HasRole(domainuser.RoleTraveller) {
		return dto.Review{}, ErrTravellerOnly
	}

	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:         domainreviews.ReviewID(uuid.NewString()),
		ListingID:  listing.ID,
		AuthorID:   string(author.ID),
		AuthorName: author.Name,
		Rating:     cmd.Rating,
		Comment:    cmd.Comment,
		CreatedAt:  now(h.Now),
	})
	if err != nil {
		return dto.Review{}, err
	}
	if err := unit.Reviews().Save(execCtx, review); err != nil {
		return dto.Review{}, err
	}
	if err := recordReviewEvents(execCtx, h.Outbox, h.Encoder, review); err != nil {
		return dto.Review{}, err
	}
	if err := finish(execCtx); err != nil {
		return dto.Review{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("review posted", "review_id", review.ID, "listing_id", listing.ID, "author_id", author.ID, "rating", review.Rating)
	}
	return dto.MapReview(review), nil
}

var _ commands.Handler[SubmitReviewCommand, dto.Review] = (*SubmitReviewHandler)(nil)
