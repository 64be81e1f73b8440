package reviews

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"travelnest/internal/app/commands"
	handlersupport "travelnest/internal/app/handlers/support"
	"travelnest/internal/app/outbox"
	"travelnest/internal/app/uow"
	domainreviews "travelnest/internal/domain/reviews"
)

const deleteReviewKey = "reviews.delete"

type DeleteReviewCommand struct {
	ReviewID string `validate:"required"`
	ActorID  string `validate:"required"`
}

func (c DeleteReviewCommand) Key() string { return deleteReviewKey }

// DeleteReviewHandler removes a review. Only its author may do so; admins and
// listing managers get ErrNotAuthor like anyone else.
type DeleteReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *DeleteReviewHandler) Handle(ctx context.Context, cmd DeleteReviewCommand) (*struct{}, error) {
	unit, execCtx, finish, cleanup, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	review, err := unit.Reviews().ByID(execCtx, domainreviews.ReviewID(strings.TrimSpace(cmd.ReviewID)))
	if err != nil {
		return nil, err
	}
	if err := review.Remove(cmd.ActorID, now(h.Now)); err != nil {
		return nil, err
	}
	if err := unit.Reviews().Delete(execCtx, review.ID); err != nil {
		return nil, err
	}
	if err := recordReviewEvents(execCtx, h.Outbox, h.Encoder, review); err != nil {
		return nil, err
	}
	if err := finish(execCtx); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("review removed", "review_id", review.ID, "listing_id", review.ListingID)
	}
	return &struct{}{}, nil
}

var _ commands.Handler[DeleteReviewCommand, *struct{}] = (*DeleteReviewHandler)(nil)
