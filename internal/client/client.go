package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kafila-ticketing/internal/models"
	"kafila-ticketing/internal/order/pricing"
)

// ErrStillPending means polling gave up before the webhook landed. The order
// may still be confirmed later; fetch it again.
var ErrStillPending = errors.New("order still pending")

// APIError is a non-2xx answer from the ticketing service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		if json.Unmarshal(raw, &eb) != nil || eb.Error == "" {
			eb.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Message: eb.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) Quote(ctx context.Context, cart []models.CartItem) (*pricing.Quote, error) {
	var q pricing.Quote
	if err := c.do(ctx, http.MethodPost, "/api/ticket/quote", models.QuoteRequest{Cart: cart}, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*models.OrderSummary, error) {
	var s models.OrderSummary
	if err := c.do(ctx, http.MethodGet, "/api/order/"+url.PathEscape(orderID), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// WaitForSettled polls the order every interval, at most attempts times,
// until it leaves PENDING. On give-up it returns the last summary with
// ErrStillPending.
func (c *Client) WaitForSettled(ctx context.Context, orderID string, interval time.Duration, attempts int) (*models.OrderSummary, error) {
	if attempts < 1 {
		attempts = 1
	}
	var last *models.OrderSummary
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return last, ctx.Err()
			case <-time.After(interval):
			}
		}

		s, err := c.GetOrder(ctx, orderID)
		if err != nil {
			return last, err
		}
		last = s
		if s.Status != models.OrderPending {
			return s, nil
		}
	}
	return last, ErrStillPending
}

func (c *Client) Validate(ctx context.Context, payload string) (*models.TicketSummary, error) {
	var s models.TicketSummary
	if err := c.do(ctx, http.MethodPost, "/api/scanner/validate", models.ValidateTicketRequest{Payload: payload}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) MarkUsed(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodPost, "/api/scanner/mark-used", models.MarkUsedRequest{OrderID: orderID}, nil)
}
