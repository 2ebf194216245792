// Package kotclient is the order-flow client used by the cashier terminal
// and the customer waiting screen. It owns the draft cart, order submission,
// payment capture and the two pollers that track order state.
package kotclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"kot-system/internal/logger"
	"kot-system/internal/models"
)

// APIError is a non-2xx response with whatever message the server sent.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.StatusCode, e.Message)
}

// Client talks to the cashier order API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *logger.Logger
}

func NewClient(baseURL string, httpClient *http.Client, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    httpClient,
		Logger:  log,
	}
}

func (c *Client) CreateOrder(req models.CreateOrderRequest) (*models.Order, error) {
	var order models.Order
	if err := c.do(http.MethodPost, "/cashier-orders/create_order/", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListOrders() ([]*models.Order, error) {
	var orders []*models.Order
	if err := c.do(http.MethodGet, "/cashier-orders/", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(id int64) (*models.Order, error) {
	var order models.Order
	if err := c.do(http.MethodGet, fmt.Sprintf("/cashier-orders/%d/", id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) MarkPaid(id int64) error {
	return c.do(http.MethodPost, fmt.Sprintf("/cashier-orders/%d/mark_paid/", id), nil, nil)
}

func (c *Client) CancelOrder(id int64) error {
	return c.do(http.MethodPost, fmt.Sprintf("/cashier-orders/%d/cancel_order/", id), nil, nil)
}

func (c *Client) Refund(id int64, amount decimal.Decimal, reason string) (*models.RefundResponse, error) {
	var resp models.RefundResponse
	body := models.RefundRequest{Amount: amount, Reason: reason}
	if err := c.do(http.MethodPost, fmt.Sprintf("/cashier-orders/%d/refund/", id), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		// Transport errors surface verbatim; the caller decides whether
		// to retry (pollers do, user actions do not).
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(resp.Body),
		}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// extractErrorMessage pulls the first usable message out of a structured
// error body: "detail", then "error", then "message", then any field errors
// concatenated.
func extractErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(body)
	if err != nil || len(raw) == 0 {
		return "request failed"
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return strings.TrimSpace(string(raw))
	}

	for _, key := range []string{"detail", "error", "message"} {
		if msg, ok := parsed[key].(string); ok && msg != "" {
			return msg
		}
	}

	// Field-level errors: {"table_number": ["This field is required."]}
	var parts []string
	for field, value := range parsed {
		switch v := value.(type) {
		case string:
			parts = append(parts, field+": "+v)
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok {
					parts = append(parts, field+": "+s)
				}
			}
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "; ")
	}
	return strings.TrimSpace(string(raw))
}
