// Package bureau provides a client for the credit bureau report API
package bureau

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/Dan9191/fintrack/internal/interfaces"
	"github.com/Dan9191/fintrack/internal/models"
)

const (
	DefaultBaseURL   = "https://api.experian.com/v1"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 1 // requests per second
)

// Client implements interfaces.LoanSource
type Client struct {
	baseURL    string
	apiKey     string
	pan        string
	httpClient *http.Client
	log        *logrus.Logger
	limiter    *rate.Limiter
}

var _ interfaces.LoanSource = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new bureau client for the holder of the given PAN
func NewClient(apiKey, pan string, log *logrus.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		pan:     pan,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError represents a non-success bureau response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bureau API error: %s (status: %d)", e.Message, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return models.ErrSourceUnavailable
}

type reportRequest struct {
	PAN string `json:"pan"`
}

// FetchCreditReport posts the PAN and returns the full report
func (c *Client) FetchCreditReport(ctx context.Context) (*models.CreditReport, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", models.ErrSourceUnavailable, err)
	}

	payload, err := json.Marshal(reportRequest{PAN: c.pan})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/credit-report", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", models.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var report models.CreditReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", models.ErrSourceUnavailable, err)
	}
	c.log.Debugf("Credit report received: score %d, %d trades", report.CreditScore, len(report.Trades))
	return &report, nil
}

// FetchTrades returns the loan trades of the credit report
func (c *Client) FetchTrades(ctx context.Context) ([]models.Trade, error) {
	report, err := c.FetchCreditReport(ctx)
	if err != nil {
		return nil, err
	}
	return report.Trades, nil
}
