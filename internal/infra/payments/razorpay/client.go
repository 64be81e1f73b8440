package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"travelnest/internal/app/policies"
	"travelnest/internal/domain/shared/money"
)

const DefaultBaseURL = "https://api.razorpay.com/v1"

// Client creates Razorpay orders and verifies checkout signatures.
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	KeyID     string
	KeySecret string
	Logger    *slog.Logger
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string     `json:"id"`
	Entity   string     `json:"entity"`
	Amount   int64      `json:"amount"`
	Currency string     `json:"currency"`
	Receipt  string     `json:"receipt"`
	Status   string     `json:"status"`
	Notes    orderNotes `json:"notes"`
}

func (o orderResponse) toOrder() policies.PaymentOrder {
	return policies.PaymentOrder{
		ID:       o.ID,
		Amount:   o.Amount,
		Currency: o.Currency,
		Receipt:  o.Receipt,
		Notes:    map[string]string(o.Notes),
	}
}

// orderNotes accepts the empty array Razorpay sends for orders without notes.
type orderNotes map[string]string

func (n *orderNotes) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); bytes.Equal(trimmed, []byte("[]")) || bytes.Equal(trimmed, []byte("null")) {
		*n = nil
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*n = m
	return nil
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func NewClient(keyID, keySecret, baseURL string, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(keyID) == "" || strings.TrimSpace(keySecret) == "" {
		return nil, errors.New("razorpay: key id and secret are required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		HTTP:      &http.Client{Timeout: 10 * time.Second},
		BaseURL:   strings.TrimRight(baseURL, "/"),
		KeyID:     strings.TrimSpace(keyID),
		KeySecret: strings.TrimSpace(keySecret),
		Logger:    logger,
	}, nil
}

// CreateOrder opens an order for amount converted to minor units.
func (c *Client) CreateOrder(ctx context.Context, amount money.Money, receipt string, notes map[string]string) (policies.PaymentOrder, error) {
	var zero policies.PaymentOrder
	if c == nil || c.HTTP == nil {
		return zero, policies.ErrGatewayUnavailable
	}
	minor := amount.MinorUnits()
	if minor < policies.MinimumChargeMinorUnits {
		return zero, policies.ErrAmountTooSmall
	}
	currency := amount.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   minor,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return zero, err
	}
	order, err := c.do(ctx, http.MethodPost, "/orders", body, receipt)
	if err != nil {
		return zero, err
	}
	if c.Logger != nil {
		c.Logger.Info("razorpay order created", "order_id", order.ID, "amount", order.Amount, "receipt", order.Receipt)
	}
	return order.toOrder(), nil
}

// VerifyPayment checks the checkout signature, then fetches the order so the
// caller can compare what was paid with what is being confirmed.
func (c *Client) VerifyPayment(ctx context.Context, confirmation policies.PaymentConfirmation) (policies.PaymentOrder, error) {
	var zero policies.PaymentOrder
	if c == nil || c.HTTP == nil {
		return zero, policies.ErrGatewayUnavailable
	}
	if err := Verify(c.KeySecret, confirmation); err != nil {
		return zero, err
	}
	order, err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(confirmation.OrderID), nil, confirmation.OrderID)
	if err != nil {
		return zero, err
	}
	if order.ID != confirmation.OrderID {
		return zero, policies.ErrPaymentVerification
	}
	return order.toOrder(), nil
}

func (c *Client) PublicKey() string {
	return c.KeyID
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, ref string) (orderResponse, error) {
	var order orderResponse
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	request, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return order, err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.SetBasicAuth(c.KeyID, c.KeySecret)

	resp, err := c.HTTP.Do(request)
	if err != nil {
		c.logError("razorpay request failed", ref, err)
		return order, fmt.Errorf("%w: %v", policies.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		var apiErr errorResponse
		detail := string(snippet)
		if json.Unmarshal(snippet, &apiErr) == nil && apiErr.Error.Description != "" {
			detail = apiErr.Error.Description
		}
		err := fmt.Errorf("%w: status %d: %s", policies.ErrGatewayUnavailable, resp.StatusCode, detail)
		c.logError("razorpay returned error", ref, err)
		return order, err
	}
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		c.logError("razorpay order decode failed", ref, err)
		return order, err
	}
	return order, nil
}

func (c *Client) logError(msg, ref string, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Error(msg, "ref", ref, "error", err)
}

var _ policies.PaymentsPort = (*Client)(nil)
