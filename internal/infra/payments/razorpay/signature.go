package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"travelnest/internal/app/policies"
)

// Sign computes the checkout signature: hex(HMAC-SHA256(order_id|payment_id)).
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares the signature in constant time.
func Verify(secret string, c policies.PaymentConfirmation) error {
	if secret == "" || c.OrderID == "" || c.PaymentID == "" || c.Signature == "" {
		return policies.ErrPaymentVerification
	}
	expected := Sign(secret, c.OrderID, c.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(c.Signature)))) {
		return policies.ErrPaymentVerification
	}
	return nil
}
