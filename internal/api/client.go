// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/inkwell-tui/internal/logging"
)

// =============================================================================
// CLIENT CONSTANTS
// =============================================================================

const (
	// DefaultBaseURL is the default address of a locally hosted backend.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the default request timeout for non-streaming calls.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for
	// non-streaming requests.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay between retries.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum response size (10MB) to prevent
	// memory exhaustion from malicious or broken responses.
	MaxResponseSize = 10 * 1024 * 1024

	// defaultRateLimit is the default sustained request rate against the
	// backend, in requests per second.
	defaultRateLimit = 10

	// defaultRateBurst is the default burst size for the rate limiter.
	defaultRateBurst = 20

	// userAgent identifies this client to the backend.
	userAgent = "inkwell/0.3.0"
)

// =============================================================================
// SHARED HTTP CLIENTS
// =============================================================================

// PERFORMANCE: Shared HTTP clients with connection pooling.
// Creating a new http.Client per request prevents connection reuse and
// causes TLS handshake overhead on every call.

var (
	// sharedHTTPClient is used for non-streaming API requests.
	sharedHTTPClient = &http.Client{
		Timeout: DefaultTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}

	// sharedStreamingClient is used for streaming requests. No client
	// timeout: a healthy stream may stay open far longer than any fixed
	// budget, so lifetime is controlled via context instead.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotConfigured indicates the client has no base URL configured.
	ErrNotConfigured = errors.New("backend not configured")

	// ErrAuthFailed indicates authentication failed (401).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNotFound indicates the requested resource does not exist (404).
	ErrNotFound = errors.New("not found")

	// ErrPayloadTooLarge indicates the request body was rejected (413).
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrRateLimited indicates the backend rejected the request due to
	// rate limiting (429).
	ErrRateLimited = errors.New("rate limited")

	// ErrServerError indicates a backend-side failure (5xx).
	ErrServerError = errors.New("server error")
)

// APIError represents a structured error response from the backend.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// RateLimitError represents a rate limit error with retry information.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %v", e.RetryAfter)
	}
	return "rate limited"
}

// Is allows RateLimitError to be compared with ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// apiErrorResponse is the error envelope returned by the backend.
type apiErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is an HTTP client for the inkwell backend API.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	maxRetries int
	limiter    *rate.Limiter
}

// NewClient creates a client with default settings against DefaultBaseURL.
func NewClient() *Client {
	return &Client{
		baseURL:    DefaultBaseURL,
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), defaultRateBurst),
	}
}

// WithBaseURL sets the backend base URL.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(strings.TrimSpace(u), "/")
	return c
}

// WithAPIKey sets the bearer token sent with every request. An empty key
// disables the Authorization header for self-hosted backends without auth.
func (c *Client) WithAPIKey(key string) *Client {
	c.apiKey = strings.TrimSpace(key)
	return c
}

// WithTimeout sets the per-request timeout for non-streaming calls.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.timeout = timeout
	}
	return c
}

// WithMaxRetries sets the maximum number of attempts for non-streaming
// requests.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	if maxRetries > 0 {
		c.maxRetries = maxRetries
	}
	return c
}

// WithRateLimit replaces the client-side rate limiter. A non-positive
// rps disables client-side limiting.
func (c *Client) WithRateLimit(rps float64, burst int) *Client {
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
		return c
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsConfigured returns true if the client has a base URL configured.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// HasAPIKey returns true if a bearer token is configured.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// APIKeyMasked returns a masked version of the API key for display.
// SECURITY: Never exposes key fragments, only length and fingerprint.
func (c *Client) APIKeyMasked() string {
	if c.apiKey == "" {
		return "[not set]"
	}
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(c.apiKey), c.keyFingerprint())
}

// keyFingerprint returns a short SHA-256 fingerprint of the API key so
// logs can correlate a key without exposing it.
func (c *Client) keyFingerprint() string {
	if c.apiKey == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.apiKey))
	return hex.EncodeToString(h[:4])
}

// setHeaders sets the required headers for backend requests.
func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
}

// =============================================================================
// REQUEST EXECUTION
// =============================================================================

// do performs a JSON request with retry logic and exponential backoff.
// The request body is marshaled once and replayed on each attempt. A nil
// out skips response decoding.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	var bodyBytes []byte
	if in != nil {
		var err error
		bodyBytes, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.doOnce(ctx, method, path, bodyBytes, out)
		if err == nil {
			return nil
		}
		if !c.isRetryable(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doSingle performs a JSON request without the retry loop. Chat turn
// submission is not idempotent: a retried POST could process the user
// message twice, and the turn layer's fallback must issue exactly one
// non-streaming request after a failed stream.
func (c *Client) doSingle(ctx context.Context, method, path string, in, out any) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	var bodyBytes []byte
	if in != nil {
		var err error
		bodyBytes, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	return c.doOnce(ctx, method, path, bodyBytes, out)
}

// doOnce performs a single HTTP request against the backend.
//
// SECURITY: Clears the Authorization header after the request so the
// request object can be logged or inspected safely.
func (c *Client) doOnce(ctx context.Context, method, path string, body []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := sharedHTTPClient.Do(req)
	req.Header.Del("Authorization")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := readResponse(resp)
	if err != nil {
		return err
	}

	logging.Component("api").Debug().
		Str("method", method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleErrorResponse(resp, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// readResponse reads the response body with a size limit.
//
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts HTTP error responses into typed errors.
// The backend reports errors as {"error": "...", "detail": "..."}; the
// detail string is preferred for display when present.
func (c *Client) handleErrorResponse(resp *http.Response, body []byte) error {
	status := resp.StatusCode

	var apiErr apiErrorResponse
	code := ""
	msg := ""
	if err := json.Unmarshal(body, &apiErr); err == nil {
		code = apiErr.Error
		msg = apiErr.Detail
		if msg == "" {
			msg = apiErr.Error
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrAuthFailed, msg)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case status == http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w: %s", ErrPayloadTooLarge, msg)
	case status == http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: parseRetryAfter(resp)}
	case status >= 500:
		return fmt.Errorf("%w: %s (status %d)", ErrServerError, msg, status)
	default:
		return &APIError{Code: code, Message: msg, Status: status}
	}
}

// parseRetryAfter extracts the Retry-After header as a duration.
// Returns zero when the header is absent or unparseable.
func parseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(retryAfter); err == nil {
		return time.Until(t)
	}
	return 0
}

// isRetryable determines if an error should trigger a retry.
func (c *Client) isRetryable(err error) bool {
	// Context cancellation is never retried.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Rate limiting and backend failures are retryable.
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServerError) {
		return true
	}

	// Network-level failures (connection refused, resets, DNS) are
	// retryable; other API errors are not.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// calculateBackoff returns the delay to wait before the next retry.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	// Exponential backoff: 500ms, 1000ms, 2000ms, etc.
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// Ping probes the backend health endpoint. Used by status displays and
// the setup wizard to verify connectivity before saving configuration.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}
