package reviews

import (
	"context"
	"time"

	"travelnest/internal/app/outbox"
	domainreviews "travelnest/internal/domain/reviews"
)

func recordReviewEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, review *domainreviews.Review) error {
	evs := review.PendingEvents()
	review.ClearEvents()
	return outbox.RecordDomainEvents(ctx, box, encoder, evs)
}

func now(clock func() time.Time) time.Time {
	if clock != nil {
		return clock().UTC()
	}
	return time.Now().UTC()
}
