// Package coingecko implements the market-data collaborator on top of the
// public CoinGecko v3 REST API. The API is rate-limited (roughly 10-30
// requests per minute on the free tier) and eventually consistent; the client
// retries transient failures with exponential backoff and surfaces everything
// else as a typed APIError.
package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public CoinGecko v3 endpoint, usable without an API key.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

const (
	defaultTimeout = 10 * time.Second
	defaultRetries = 2
	baseRetryDelay = 1 * time.Second
	maxRetryDelay  = 30 * time.Second
)

// ErrorKind classifies an API failure for presentation purposes.
type ErrorKind string

const (
	ErrRateLimited ErrorKind = "RATE_LIMIT"
	ErrNotFound    ErrorKind = "NOT_FOUND"
	ErrServer      ErrorKind = "SERVER_ERROR"
	ErrUnknown     ErrorKind = "UNKNOWN"
)

// APIError reports a non-2xx response from the market API.
type APIError struct {
	Status   int
	Endpoint string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market api %s returned status %d (%s)", e.Endpoint, e.Status, e.Kind())
}

// Kind maps the HTTP status to an error class.
func (e *APIError) Kind() ErrorKind {
	switch {
	case e.Status == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status >= 500:
		return ErrServer
	default:
		return ErrUnknown
	}
}

// Client is a CoinGecko v3 REST client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewClient creates a client against baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultRetries,
		retryDelay: baseRetryDelay,
		logger:     logger,
	}
}

// retryBackoff returns the delay before retry attempt n (0-based):
// retryDelay * 2^n, capped at maxRetryDelay.
func (c *Client) retryBackoff(attempt int) time.Duration {
	if attempt < 0 {
		return c.retryDelay
	}
	if attempt > 30 {
		return maxRetryDelay
	}
	d := c.retryDelay * time.Duration(1<<attempt)
	if d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}

// get performs a GET request against endpoint, retrying rate limits, server
// errors and transport failures with exponential backoff, and decodes the
// JSON body into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryBackoff(attempt - 1)
			c.logger.Debug("retrying market api request", "endpoint", endpoint, "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		body, err := c.do(ctx, reqURL, endpoint)
		if err != nil {
			lastErr = err
			if retryable(err) {
				continue
			}
			return err
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
		}
		return nil
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, reqURL, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market api request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &APIError{Status: resp.StatusCode, Endpoint: endpoint}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}
	return body, nil
}

// retryable reports whether err is worth another attempt: transport errors,
// rate limiting and 5xx responses. Not-found and other client errors are
// final.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind() == ErrRateLimited || apiErr.Kind() == ErrServer
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Transport failures wrapped by do().
	return true
}
