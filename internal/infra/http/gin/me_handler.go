package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"travelnest/internal/app/commands"
	"travelnest/internal/app/dto"
	meapp "travelnest/internal/app/handlers/me"
	membershipapp "travelnest/internal/app/handlers/membership"
	"travelnest/internal/app/queries"
)

type MeHTTP interface {
	ListBookings(c *gin.Context)
	Membership(c *gin.Context)
}

type MeHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h MeHandler) ListBookings(c *gin.Context) {
	user, ok := requireRole(c)
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := meapp.ListGuestBookingsQuery{GuestID: user.ID}
	result, err := queries.Ask[meapp.ListGuestBookingsQuery, dto.GuestBookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, "me bookings", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h MeHandler) Membership(c *gin.Context) {
	user, ok := requireRole(c)
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := membershipapp.GetMembershipQuery{UserID: user.ID}
	result, err := queries.Ask[membershipapp.GetMembershipQuery, dto.MembershipStatus](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, "me membership", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ MeHTTP = (*MeHandler)(nil)

type MembershipHTTP interface {
	Checkout(c *gin.Context)
	Verify(c *gin.Context)
}

// MembershipHandler runs the two step gateway purchase of a membership.
type MembershipHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type membershipVerifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

func (h MembershipHandler) Checkout(c *gin.Context) {
	user, ok := requireRole(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	cmd := membershipapp.StartMembershipCheckoutCommand{UserID: user.ID}
	result, err := commands.Dispatch[membershipapp.StartMembershipCheckoutCommand, *dto.CheckoutOrder](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "membership checkout", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h MembershipHandler) Verify(c *gin.Context) {
	user, ok := requireRole(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req membershipVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := membershipapp.ActivateMembershipCommand{
		UserID:    user.ID,
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	}
	result, err := commands.Dispatch[membershipapp.ActivateMembershipCommand, *dto.MembershipStatus](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "membership verify", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ MembershipHTTP = MembershipHandler{}
