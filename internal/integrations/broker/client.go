// Package broker provides a client for the brokerage holdings API
package broker

import (
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
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements interfaces.HoldingSource
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logrus.Logger
	limiter    *rate.Limiter
}

var _ interfaces.HoldingSource = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// NewClient creates a new brokerage client
func NewClient(baseURL, apiKey string, log *logrus.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
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

// APIError represents a non-success brokerage response
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("broker API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

func (e *APIError) Unwrap() error {
	return models.ErrSourceUnavailable
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %v", models.ErrSourceUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debugf("Broker API request: %s", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", models.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", models.ErrSourceUnavailable, err)
	}
	return nil
}

// FetchHoldings returns every position in the portfolio
func (c *Client) FetchHoldings(ctx context.Context) ([]models.BrokerHolding, error) {
	var portfolio models.Portfolio
	if err := c.get(ctx, "/portfolio", &portfolio); err != nil {
		return nil, err
	}
	return portfolio.Holdings, nil
}
