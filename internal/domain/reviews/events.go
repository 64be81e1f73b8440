package reviews

import (
	"time"

	"travelnest/internal/domain/listings"
)

const (
	EventReviewPosted  = "review.posted"
	EventReviewRemoved = "review.removed"
)

type ReviewPosted struct {
	ReviewID  ReviewID           `json:"review_id"`
	ListingID listings.ListingID `json:"listing_id"`
	AuthorID  string             `json:"author_id"`
	Rating    int                `json:"rating"`
	At        time.Time          `json:"at"`
}

func (e ReviewPosted) EventName() string     { return EventReviewPosted }
func (e ReviewPosted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewPosted) OccurredAt() time.Time { return e.At }

type ReviewRemoved struct {
	ReviewID  ReviewID           `json:"review_id"`
	ListingID listings.ListingID `json:"listing_id"`
	AuthorID  string             `json:"author_id"`
	At        time.Time          `json:"at"`
}

func (e ReviewRemoved) EventName() string     { return EventReviewRemoved }
func (e ReviewRemoved) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewRemoved) OccurredAt() time.Time { return e.At }
