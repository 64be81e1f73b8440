package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travelnest/internal/app/commands"
	"travelnest/internal/app/dto"
	bookingapp "travelnest/internal/app/handlers/booking"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	StartCheckout(c *gin.Context)
	VerifyCheckout(c *gin.Context)
	Cancel(c *gin.Context)
}

type BookingHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

// stayRequest carries raw date strings; parsing is lenient and happens in the
// domain so "2025-12-01" and "01/12/2025" are both accepted.
type stayRequest struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Guests   int    `json:"guests"`
}

type verifyCheckoutRequest struct {
	ListingID string `json:"listing_id"`
	stayRequest
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

func (h BookingHandler) Create(c *gin.Context) {
	user, ok := requireRole(c)
	if !ok || !h.available(c) {
		return
	}
	var req stayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		CommandID:       uuid.NewString(),
		ListingID:       c.Param("id"),
		GuestID:         user.ID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *dto.BookingSummary](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "create booking", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) StartCheckout(c *gin.Context) {
	user, ok := requireRole(c)
	if !ok || !h.available(c) {
		return
	}
	var req stayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := bookingapp.StartCheckoutCommand{
		ListingID: c.Param("id"),
		GuestID:   user.ID,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Guests:    req.Guests,
	}
	result, err := commands.Dispatch[bookingapp.StartCheckoutCommand, *dto.CheckoutOrder](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "start checkout", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) VerifyCheckout(c *gin.Context) {
	user, ok := requireRole(c)
	if !ok || !h.available(c) {
		return
	}
	var req verifyCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := bookingapp.ConfirmCheckoutCommand{
		ListingID:       req.ListingID,
		GuestID:         user.ID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		OrderID:         req.OrderID,
		PaymentID:       req.PaymentID,
		Signature:       req.Signature,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.ConfirmCheckoutCommand, *dto.BookingSummary](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "verify checkout", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	user, ok := requireRole(c)
	if !ok || !h.available(c) {
		return
	}
	cmd := bookingapp.CancelBookingCommand{
		BookingID: c.Param("id"),
		GuestID:   user.ID,
	}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *dto.CancellationResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "cancel booking", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) available(c *gin.Context) bool {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return false
	}
	return true
}

var _ BookingHTTP = BookingHandler{}
