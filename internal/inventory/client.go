package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sentinelmcp/sentinelmcp/internal/graphql"
	"github.com/sentinelmcp/sentinelmcp/internal/observability"
)

// Domain is the label used for logs, spans, and metrics.
const Domain = "inventory"

// Config holds the settings for the unified asset inventory REST API.
type Config struct {
	// BaseURL is the console root, https only, no trailing slash.
	BaseURL string

	// Endpoint is the inventory API path under BaseURL.
	Endpoint string

	Token     string
	Timeout   time.Duration
	UserAgent string

	// Retry settings for transient failures. Zero values take the same
	// defaults as the GraphQL transport.
	MaxAttempts  int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Metrics is optional; a nil value disables instrumentation.
	Metrics *observability.Metrics

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Validate normalizes the endpoint settings and rejects unusable ones.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("inventory base URL cannot be empty")
	}
	if !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("inventory base URL must use HTTPS")
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.Endpoint == "" {
		return fmt.Errorf("inventory API endpoint cannot be empty")
	}
	c.Endpoint = "/" + strings.Trim(c.Endpoint, "/")
	return nil
}

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxAttempts  = 3
	defaultRetryWaitMin = 2 * time.Second
	defaultRetryWaitMax = 10 * time.Second
)

// Client provides read-only access to the unified asset inventory REST
// API with the same retry policy and error taxonomy as the GraphQL
// transport.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a client from cfg, filling in defaults for unset retry
// and timeout values. cfg should already be validated.
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

	return &Client{cfg: cfg, http: httpClient}
}

// surfaceURL resolves the endpoint for a surface-scoped listing. An empty
// surface means the unscoped base endpoint.
func (c *Client) surfaceURL(surface Surface) string {
	base := c.cfg.BaseURL + c.cfg.Endpoint
	if surface == "" {
		return base
	}
	return base + "/surface/" + strings.ToLower(string(surface))
}

// Get fetches a single inventory item by ID, returning nil when it does
// not exist. The REST API has no direct by-id endpoint, so this runs an
// id__in search limited to one result.
func (c *Client) Get(ctx context.Context, itemID string) (*Item, error) {
	log.Debug().Str("item_id", itemID).Msg("Fetching inventory item")

	resp, err := c.Search(ctx, map[string]any{"id__in": []string{itemID}}, 1, 0)
	if err != nil {
		var notFound *graphql.NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return &resp.Data[0], nil
}

// List returns a page of inventory items, optionally scoped to one
// surface.
func (c *Client) List(ctx context.Context, limit, skip int, surface Surface) (*Response, error) {
	endpoint := c.surfaceURL(surface)
	log.Debug().
		Int("limit", limit).
		Int("skip", skip).
		Str("surface", string(surface)).
		Msg("Listing inventory items")

	url := fmt.Sprintf("%s?limit=%d&skip=%d", endpoint, limit, skip)
	return c.execute(ctx, "list_inventory", http.MethodGet, url, nil)
}

// Search returns a page of inventory items matching the given REST-format
// filters. Surface scoping is not supported here; the surface endpoints
// only accept GET.
func (c *Client) Search(ctx context.Context, filters map[string]any, limit, skip int) (*Response, error) {
	log.Debug().
		Int("filter_count", len(filters)).
		Int("limit", limit).
		Int("skip", skip).
		Msg("Searching inventory items")

	// The API takes filters and pagination together in one filter object.
	merged := make(map[string]any, len(filters)+2)
	for k, v := range filters {
		merged[k] = v
	}
	merged["limit"] = limit
	merged["skip"] = skip

	body, err := json.Marshal(map[string]any{"filter": merged})
	if err != nil {
		return nil, fmt.Errorf("encoding inventory search payload: %w", err)
	}

	return c.execute(ctx, "search_inventory", http.MethodPost, c.cfg.BaseURL+c.cfg.Endpoint, body)
}

func (c *Client) execute(ctx context.Context, operation, method, url string, body []byte) (*Response, error) {
	ctx, span := observability.StartBackendSpan(ctx, Domain, operation)
	result, err := c.executeWithRetry(ctx, operation, method, url, body)
	observability.EndBackendSpan(span, err)
	return result, err
}

func (c *Client) executeWithRetry(ctx context.Context, operation, method, url string, body []byte) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if c.cfg.Metrics != nil {
				c.cfg.Metrics.RecordBackendRetry(Domain)
			}
			wait := c.retryWait(attempt)
			log.Debug().
				Str("operation", operation).
				Int("attempt", attempt).
				Dur("wait", wait).
				Msg("Retrying inventory request")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		result, retryable, err := c.doRequest(ctx, operation, method, url, body)
		if err == nil {
			return result, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, &graphql.NetworkError{
		Message: fmt.Sprintf("%s request failed after %d attempts", Domain, c.cfg.MaxAttempts),
		Err:     lastErr,
	}
}

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

func (c *Client) doRequest(ctx context.Context, operation, method, url string, body []byte) (*Response, bool, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, false, fmt.Errorf("building inventory request: %w", err)
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
			c.cfg.Metrics.RecordBackendRequest(Domain, operation, 0, duration)
		}
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, &graphql.NetworkError{Message: "inventory request failed", Err: err}
	}
	defer resp.Body.Close()

	if c.cfg.Metrics != nil {
		c.cfg.Metrics.RecordBackendRequest(Domain, operation, resp.StatusCode, duration)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, &graphql.NetworkError{Message: "reading inventory response", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, false, &graphql.AuthError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, &graphql.NotFoundError{Message: errorMessage(raw)}
	case transientStatus(resp.StatusCode):
		return nil, true, &graphql.APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, false, &graphql.APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	var payload Response
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false, &graphql.APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("invalid JSON response: %v", err),
		}
	}
	if payload.Data == nil {
		payload.Data = []Item{}
	}
	return &payload, false, nil
}

func errorMessage(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, key := range []string{"message", "error", "detail", "description"} {
			if val, ok := body[key].(string); ok && val != "" {
				return val
			}
		}
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > 500 {
		text = text[:500]
	}
	if text == "" {
		return "no error details provided"
	}
	return text
}
