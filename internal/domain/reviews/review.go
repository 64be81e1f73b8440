package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"travelnest/internal/domain/listings"
	"travelnest/internal/domain/shared/events"
)

const MaxCommentLength = 2000

var (
	ErrInvalidRating   = errors.New("reviews: rating must be between 1 and 5")
	ErrAuthorRequired  = errors.New("reviews: author is required")
	ErrListingRequired = errors.New("reviews: listing is required")
	ErrCommentTooLong  = errors.New("reviews: comment is too long")
	ErrNotAuthor       = errors.New("reviews: only the author can remove a review")
	ErrNotFound        = errors.New("reviews: not found")
)

type ReviewID string

// Review is a traveller's rating of a listing. AuthorName is a snapshot taken
// when the review is posted.
type Review struct {
	ID         ReviewID
	ListingID  listings.ListingID
	AuthorID   string
	AuthorName string
	Rating     int
	Comment    string
	CreatedAt  time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ReviewID) (*Review, error)
	ListByListing(ctx context.Context, listingID listings.ListingID, limit, offset int) ([]*Review, int, error)
	Save(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id ReviewID) error
	DeleteByListing(ctx context.Context, listingID listings.ListingID) error
}

type SubmitParams struct {
	ID         ReviewID
	ListingID  listings.ListingID
	AuthorID   string
	AuthorName string
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	authorID := strings.TrimSpace(params.AuthorID)
	if authorID == "" {
		return nil, ErrAuthorRequired
	}
	if strings.TrimSpace(string(params.ListingID)) == "" {
		return nil, ErrListingRequired
	}
	comment := strings.TrimSpace(params.Comment)
	if len([]rune(comment)) > MaxCommentLength {
		return nil, ErrCommentTooLong
	}
	review := &Review{
		ID:         params.ID,
		ListingID:  params.ListingID,
		AuthorID:   authorID,
		AuthorName: strings.TrimSpace(params.AuthorName),
		Rating:     params.Rating,
		Comment:    comment,
		CreatedAt:  params.CreatedAt.UTC(),
	}
	review.Record(ReviewPosted{ReviewID: review.ID, ListingID: review.ListingID, AuthorID: review.AuthorID, Rating: review.Rating, At: review.CreatedAt})
	return review, nil
}

// Remove checks that actorID wrote the review and records its removal.
func (r *Review) Remove(actorID string, now time.Time) error {
	if strings.TrimSpace(actorID) == "" || r.AuthorID != strings.TrimSpace(actorID) {
		return ErrNotAuthor
	}
	r.Record(ReviewRemoved{ReviewID: r.ID, ListingID: r.ListingID, AuthorID: r.AuthorID, At: now.UTC()})
	return nil
}

// Summary is the average rating over a set of reviews.
type Summary struct {
	Count   int
	Average float64
}

func Summarize(reviews []*Review) Summary {
	if len(reviews) == 0 {
		return Summary{}
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	return Summary{Count: len(reviews), Average: float64(total) / float64(len(reviews))}
}
