package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	bookingapp "travelnest/internal/app/handlers/booking"
	listingapp "travelnest/internal/app/handlers/listings"
	membershipapp "travelnest/internal/app/handlers/membership"
	reviewsapp "travelnest/internal/app/handlers/reviews"
	"travelnest/internal/app/middleware"
	"travelnest/internal/app/policies"
	"travelnest/internal/app/uow"
	"travelnest/internal/app/validation"
	domainbooking "travelnest/internal/domain/booking"
	domaincontact "travelnest/internal/domain/contact"
	domainlistings "travelnest/internal/domain/listings"
	domainreviews "travelnest/internal/domain/reviews"
	"travelnest/internal/domain/shared/daterange"
	domainuser "travelnest/internal/domain/user"
	"travelnest/internal/infra/storage/s3"
)

type errorMapping struct {
	target error
	status int
}

var errorStatuses = []errorMapping{
	{validation.ErrInvalidInput, http.StatusBadRequest},
	{daterange.ErrInvalidRange, http.StatusBadRequest},
	{domainbooking.ErrCheckInInPast, http.StatusBadRequest},
	{domainbooking.ErrInvalidGuests, http.StatusBadRequest},
	{domainbooking.ErrInvalidState, http.StatusBadRequest},
	{domainbooking.ErrGuestRequired, http.StatusBadRequest},
	{domainbooking.ErrPaymentRequired, http.StatusBadRequest},
	{bookingapp.ErrListingRequired, http.StatusBadRequest},
	{membershipapp.ErrUserRequired, http.StatusBadRequest},
	{listingapp.ErrActorRequired, http.StatusUnauthorized},
	{domainlistings.ErrTitleRequired, http.StatusBadRequest},
	{domainlistings.ErrNightlyRate, http.StatusBadRequest},
	{domainlistings.ErrLocationMissing, http.StatusBadRequest},
	{domaincontact.ErrInvalidStatus, http.StatusBadRequest},
	{domaincontact.ErrNameRequired, http.StatusBadRequest},
	{domaincontact.ErrEmailRequired, http.StatusBadRequest},
	{domaincontact.ErrSubjectRequired, http.StatusBadRequest},
	{domaincontact.ErrMessageRequired, http.StatusBadRequest},
	{domainreviews.ErrInvalidRating, http.StatusBadRequest},
	{domainreviews.ErrCommentTooLong, http.StatusBadRequest},
	{domainreviews.ErrAuthorRequired, http.StatusBadRequest},
	{domainreviews.ErrListingRequired, http.StatusBadRequest},
	{policies.ErrPaymentVerification, http.StatusBadRequest},
	{middleware.ErrUnauthenticated, http.StatusUnauthorized},
	{middleware.ErrForbidden, http.StatusForbidden},
	{domainbooking.ErrNotOwner, http.StatusForbidden},
	{listingapp.ErrListingNotOwned, http.StatusForbidden},
	{domainreviews.ErrNotAuthor, http.StatusForbidden},
	{reviewsapp.ErrTravellerOnly, http.StatusForbidden},
	{domainbooking.ErrBookingNotFound, http.StatusNotFound},
	{domainlistings.ErrNotFound, http.StatusNotFound},
	{domainuser.ErrNotFound, http.StatusNotFound},
	{domaincontact.ErrNotFound, http.StatusNotFound},
	{domainreviews.ErrNotFound, http.StatusNotFound},
	{uow.ErrConcurrentUpdate, http.StatusConflict},
	{domainuser.ErrEmailAlreadyUsed, http.StatusConflict},
	{domainbooking.ErrZeroTotal, http.StatusUnprocessableEntity},
	{policies.ErrAmountTooSmall, http.StatusUnprocessableEntity},
	{policies.ErrGatewayUnavailable, http.StatusBadGateway},
	{s3.ErrNotConfigured, http.StatusServiceUnavailable},
}

func statusFor(err error) int {
	for _, m := range errorStatuses {
		if errors.Is(err, m.target) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// respondError maps application errors to HTTP statuses. Internal errors are
// logged and hidden from the client.
func respondError(c *gin.Context, logger *slog.Logger, op string, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.Error(op+" failed", "error", err, "request_id", c.GetString("request_id"))
		}
		if status == http.StatusInternalServerError {
			c.JSON(status, gin.H{"error": "internal error"})
			return
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
