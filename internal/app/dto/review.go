package dto

import (
	"time"

	domainreviews "travelnest/internal/domain/reviews"
)

type Review struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listing_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReviewCollection struct {
	Items         []Review `json:"items"`
	Total         int      `json:"total"`
	AverageRating float64  `json:"average_rating"`
}

func MapReview(review *domainreviews.Review) Review {
	if review == nil {
		return Review{}
	}
	return Review{
		ID:         string(review.ID),
		ListingID:  string(review.ListingID),
		AuthorID:   review.AuthorID,
		AuthorName: review.AuthorName,
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt,
	}
}
