// Package razorpay is a minimal client for the Razorpay Orders API.
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public Razorpay API host.
const DefaultBaseURL = "https://api.razorpay.com"

// OrderRequest is the payload accepted by POST /v1/orders. Amount is in the
// smallest currency unit (paise for INR).
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order mirrors the order entity returned by Razorpay.
type Order struct {
	ID         string          `json:"id"`
	Entity     string          `json:"entity"`
	Amount     int64           `json:"amount"`
	AmountPaid int64           `json:"amount_paid"`
	AmountDue  int64           `json:"amount_due"`
	Currency   string          `json:"currency"`
	Receipt    string          `json:"receipt"`
	OfferID    *string         `json:"offer_id"`
	Status     string          `json:"status"`
	Attempts   int             `json:"attempts"`
	Notes      json.RawMessage `json:"notes"`
	CreatedAt  int64           `json:"created_at"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode  int
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("razorpay: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("razorpay: %s (%d): %s", e.Code, e.StatusCode, e.Description)
}

// Config configures the client.
type Config struct {
	KeyID      string
	KeySecret  string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the Razorpay REST API using basic auth.
type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	http      *http.Client
}

// NewClient constructs a Client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{keyID: cfg.KeyID, keySecret: cfg.KeySecret, baseURL: baseURL, http: httpClient}
}

// CreateOrder opens a new order with the provider.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	httpReq.SetBasicAuth(c.keyID, c.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read order response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, decodeAPIError(resp.StatusCode, body)
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("decode order response: missing order id")
	}
	return &order, nil
}

func decodeAPIError(status int, body []byte) error {
	var envelope struct {
		Error *APIError `json:"error"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Description = envelope.Error.Description
	}
	return apiErr
}
