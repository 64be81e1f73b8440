package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"travelnest/internal/app/commands"
	"travelnest/internal/app/dto"
	reviewsapp "travelnest/internal/app/handlers/reviews"
	"travelnest/internal/app/queries"
)

type ReviewsHTTP interface {
	Submit(c *gin.Context)
	ListByListing(c *gin.Context)
	Delete(c *gin.Context)
}

type ReviewsHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type submitReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h ReviewsHandler) Submit(c *gin.Context) {
	user, ok := requireRole(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := reviewsapp.SubmitReviewCommand{
		ListingID: c.Param("id"),
		AuthorID:  user.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	review, err := commands.Dispatch[reviewsapp.SubmitReviewCommand, dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "submit review", err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h ReviewsHandler) ListByListing(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := reviewsapp.ListListingReviewsQuery{
		ListingID: c.Param("id"),
		Limit:     parseIntWithDefault(c.Query("limit"), 20),
		Offset:    parseIntWithDefault(c.Query("offset"), 0),
	}
	result, err := queries.Ask[reviewsapp.ListListingReviewsQuery, dto.ReviewCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, "list reviews", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReviewsHandler) Delete(c *gin.Context) {
	user, ok := requireRole(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	cmd := reviewsapp.DeleteReviewCommand{ReviewID: c.Param("id"), ActorID: user.ID}
	if _, err := commands.Dispatch[reviewsapp.DeleteReviewCommand, *struct{}](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, "delete review", err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ ReviewsHTTP = ReviewsHandler{}
