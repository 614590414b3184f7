// Package sfaclient talks to the remote store over its JSON API
package sfaclient

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

	"github.com/erp/sfa/internal/domain/sfa"
	"github.com/erp/sfa/internal/domain/shared"
	"github.com/erp/sfa/internal/infrastructure/sfawire"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Config holds client settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// APIError is a non-success response of the remote store
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("remote store returned %d", e.StatusCode)
	}
	return fmt.Sprintf("remote store returned %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Is maps well-known statuses onto the shared domain errors
func (e *APIError) Is(target error) bool {
	switch target {
	case shared.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case shared.ErrLocked:
		return e.StatusCode == http.StatusLocked
	case shared.ErrValidation:
		return e.StatusCode == http.StatusBadRequest
	}
	return false
}

// envelope is the {success, data, error} wrapper of every response
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client implements the remote store and lookup collaborators over HTTP
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a client with a traced transport
func New(cfg Config, logger *zap.Logger) *Client {
	hc := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return NewWithHTTPClient(cfg.BaseURL, hc, logger)
}

// NewWithHTTPClient creates a client over an existing http.Client
func NewWithHTTPClient(baseURL string, hc *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		logger:  logger.Named("sfaclient"),
	}
}

// CreateRevenue stores a record with its sales items and payments
func (c *Client) CreateRevenue(ctx context.Context, record *sfa.RevenueRecord) (*sfa.RevenueRecord, error) {
	body, err := sfawire.EncodeRevenue(record)
	if err != nil {
		return nil, fmt.Errorf("encode revenue: %w", err)
	}
	data, err := c.do(ctx, http.MethodPost, "/sfas", body)
	if err != nil {
		return nil, err
	}
	return sfawire.DecodeRevenue(data)
}

// GetRevenue fetches a record with its items and non-deleted payments
func (c *Client) GetRevenue(ctx context.Context, id uuid.UUID) (*sfa.RevenueRecord, error) {
	data, err := c.do(ctx, http.MethodGet, "/sfas/"+id.String(), nil)
	if err != nil {
		return nil, err
	}
	return sfawire.DecodeRevenue(data)
}

// ListPayments fetches the non-deleted payments of a record
func (c *Client) ListPayments(ctx context.Context, revenueID uuid.UUID) ([]sfa.PaymentEntry, error) {
	data, err := c.do(ctx, http.MethodGet, "/sfas/"+revenueID.String()+"/payments", nil)
	if err != nil {
		return nil, err
	}
	return sfawire.DecodePayments(data)
}

// CreatePayment stores one payment
func (c *Client) CreatePayment(ctx context.Context, payment sfa.PaymentEntry) (*sfa.PaymentEntry, error) {
	payment.ID = uuid.Nil
	body, err := sfawire.EncodePayment(payment)
	if err != nil {
		return nil, fmt.Errorf("encode payment: %w", err)
	}
	data, err := c.do(ctx, http.MethodPost, "/sfa-by-payment", body)
	if err != nil {
		return nil, err
	}
	created, err := sfawire.DecodePayment(data)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePayment sends a partial update; soft deletes are updates too
func (c *Client) UpdatePayment(ctx context.Context, id uuid.UUID, patch sfa.PaymentPatch) (*sfa.PaymentEntry, error) {
	body, err := sfawire.EncodePatch(patch)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}
	data, err := c.do(ctx, http.MethodPut, "/sfa-by-payment/"+id.String(), body)
	if err != nil {
		return nil, err
	}
	updated, err := sfawire.DecodePayment(data)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// History fetches the change log of a payment
func (c *Client) History(ctx context.Context, paymentID uuid.UUID) ([]sfa.PaymentHistory, error) {
	data, err := c.do(ctx, http.MethodGet, "/sfa-by-payment/"+paymentID.String()+"/history", nil)
	if err != nil {
		return nil, err
	}
	return sfawire.DecodeHistory(data)
}

// Codes fetches the codes of a category
func (c *Client) Codes(ctx context.Context, category string) ([]sfa.Code, error) {
	data, err := c.do(ctx, http.MethodGet, "/codes/"+url.PathEscape(category), nil)
	if err != nil {
		return nil, err
	}
	var codes []sfa.Code
	if err := sfawire.Unmarshal(data, &codes); err != nil {
		return nil, fmt.Errorf("decode codes: %w", err)
	}
	return codes, nil
}

// Teams fetches the business unit list
func (c *Client) Teams(ctx context.Context) ([]sfa.Team, error) {
	data, err := c.do(ctx, http.MethodGet, "/teams", nil)
	if err != nil {
		return nil, err
	}
	var teams []sfa.Team
	if err := sfawire.Unmarshal(data, &teams); err != nil {
		return nil, fmt.Errorf("decode teams: %w", err)
	}
	return teams, nil
}

// SearchCustomers finds customers and partners by name
func (c *Client) SearchCustomers(ctx context.Context, query string) ([]sfa.Customer, error) {
	data, err := c.do(ctx, http.MethodGet, "/customers?search="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	var customers []sfa.Customer
	if err := sfawire.Unmarshal(data, &customers); err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}
	return customers, nil
}

// do sends one request and unwraps the response envelope
func (c *Client) do(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("remote store call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return nil, apiErr
	}
	return env.Data, nil
}

// IsNotFound reports whether err is a 404 from the remote store
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
