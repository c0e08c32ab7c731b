package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/sentinelmcp/sentinelmcp/internal/observability"
)

// Config holds the settings for one backend GraphQL endpoint.
type Config struct {
	Endpoint  string
	Token     string
	Timeout   time.Duration
	UserAgent string

	// Domain labels log lines, spans, and metrics (alerts,
	// misconfigurations, vulnerabilities).
	Domain string

	// RequestsPerSecond throttles outbound calls. Zero disables the
	// limiter.
	RequestsPerSecond float64

	// Retry settings for transient failures. Zero values take the
	// defaults below.
	MaxAttempts  int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Metrics is optional; a nil value disables instrumentation.
	Metrics *observability.Metrics

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxAttempts  = 3
	defaultRetryWaitMin = 2 * time.Second
	defaultRetryWaitMax = 10 * time.Second
)

// Client executes GraphQL operations against one backend endpoint with
// rate limiting and bounded retries for transient failures.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a client from cfg, filling in defaults for unset retry
// and timeout values.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryWaitMin <= 0 {
		cfg.RetryWaitMin = defaultRetryWaitMin
	}
	if cfg.RetryWaitMax <= 0 {
		cfg.RetryWaitMax = defaultRetryWaitMax
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{cfg: cfg, http: httpClient, limiter: limiter}
}

// Domain returns the domain label this client was configured with.
func (c *Client) Domain() string { return c.cfg.Domain }

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   map[string]any `json:"data"`
	Errors []ErrorDetail  `json:"errors"`
}

// Execute posts the query and returns the response data object.
//
// Transport failures and 502/503/504 statuses are retried with exponential
// backoff up to MaxAttempts, then surface as *NetworkError. 401/403 become
// *AuthError, 404 *NotFoundError, and other non-2xx statuses *APIError,
// all without retrying. A 2xx response carrying an "errors" array or no
// "data" object becomes *GraphQLError.
func (c *Client) Execute(ctx context.Context, operation, query string, variables map[string]any) (map[string]any, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("encoding graphql request: %w", err)
	}

	ctx, span := observability.StartBackendSpan(ctx, c.cfg.Domain, operation)
	result, err := c.executeWithRetry(ctx, operation, body)
	observability.EndBackendSpan(span, err)
	return result, err
}

func (c *Client) executeWithRetry(ctx context.Context, operation string, body []byte) (map[string]any, error) {
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if c.cfg.Metrics != nil {
				c.cfg.Metrics.RecordBackendRetry(c.cfg.Domain)
			}
			wait := c.retryWait(attempt)
			log.Debug().
				Str("domain", c.cfg.Domain).
				Str("operation", operation).
				Int("attempt", attempt).
				Dur("wait", wait).
				Msg("Retrying backend request")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		result, retryable, err := c.doRequest(ctx, operation, body)
		if err == nil {
			return result, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, &NetworkError{
		Message: fmt.Sprintf("%s request failed after %d attempts", c.cfg.Domain, c.cfg.MaxAttempts),
		Err:     lastErr,
	}
}

// retryWait doubles the minimum wait per attempt, capped at the maximum.
func (c *Client) retryWait(attempt int) time.Duration {
	wait := c.cfg.RetryWaitMin << (attempt - 2)
	if wait > c.cfg.RetryWaitMax || wait <= 0 {
		wait = c.cfg.RetryWaitMax
	}
	return wait
}

func transientStatus(status int) bool {
	return status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable ||
		status == http.StatusGatewayTimeout
}

// doRequest performs one round trip. The second return value reports
// whether the failure is worth retrying.
func (c *Client) doRequest(ctx context.Context, operation string, body []byte) (map[string]any, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("building graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		if c.cfg.Metrics != nil {
			c.cfg.Metrics.RecordBackendRequest(c.cfg.Domain, operation, 0, duration)
		}
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, &NetworkError{Message: "graphql request failed", Err: err}
	}
	defer resp.Body.Close()

	if c.cfg.Metrics != nil {
		c.cfg.Metrics.RecordBackendRequest(c.cfg.Domain, operation, resp.StatusCode, duration)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, &NetworkError{Message: "reading graphql response", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, false, &AuthError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, &NotFoundError{Message: errorMessage(raw)}
	case transientStatus(resp.StatusCode):
		return nil, true, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, false, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	// UseNumber keeps 64-bit timestamps exact through the generic map.
	var gqlResp graphQLResponse
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&gqlResp); err != nil {
		return nil, false, &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("invalid JSON response: %v", err),
		}
	}

	if len(gqlResp.Errors) > 0 {
		return nil, false, &GraphQLError{Errors: gqlResp.Errors}
	}
	if gqlResp.Data == nil {
		return nil, false, &GraphQLError{Errors: []ErrorDetail{{Message: "response contains no data"}}}
	}
	return gqlResp.Data, false, nil
}

// errorMessage digs a human-readable message out of an error body, trying
// the keys backends actually use before falling back to the raw text.
func errorMessage(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			if val, ok := body[key].(string); ok && val != "" {
				return val
			}
		}
	}
	text := string(bytes.TrimSpace(raw))
	if len(text) > 500 {
		text = text[:500]
	}
	if text == "" {
		return "no error details provided"
	}
	return text
}
