package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/domalab/go-unifi-insights/internal/httpclient"
	"github.com/domalab/go-unifi-insights/internal/middleware"
	"github.com/domalab/go-unifi-insights/internal/ratelimit"
	"github.com/domalab/go-unifi-insights/internal/retry"
	"github.com/domalab/go-unifi-insights/observability"
)

const (
	// DefaultRateLimit is the default rate limit for the Network Integration API (requests per minute).
	DefaultRateLimit = 1000

	// DefaultMaxAttempts is the default total number of attempts for idempotent requests.
	DefaultMaxAttempts = 3
	// DefaultRetryWaitTime is the default initial wait time between retries.
	DefaultRetryWaitTime = 1 * time.Second
	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 30 * time.Second

	// apiBasePath is where the controller proxies the Network Integration API.
	apiBasePath = "/proxy/network/integration"
)

// APIClient is a client for the UniFi Network Integration API. It holds only
// read-only configuration after construction and is safe for concurrent use;
// each call issues one outstanding request at a time.
type APIClient struct {
	httpClient  *httpclient.Client
	baseURL     string
	maxAttempts int
	retryWait   time.Duration
	logger      observability.Logger
	metrics     observability.MetricsRecorder
}

// ClientConfig holds configuration for the Network Integration API client.
// The configuration is read once at construction and never mutated.
type ClientConfig struct {
	// ControllerURL is the base URL of the UniFi controller (e.g., "https://unifi.local" or "https://192.168.1.1")
	ControllerURL string

	// APIKey is the API key for authentication
	APIKey string

	// HTTPClient is the HTTP client to use (optional)
	HTTPClient *http.Client

	// InsecureSkipVerify disables TLS certificate verification (useful for self-signed certs)
	InsecureSkipVerify bool

	// RateLimitPerMinute sets the client-side rate limit (defaults to 1000)
	RateLimitPerMinute int

	// MaxAttempts sets the total number of attempts for idempotent requests,
	// including the first one. Non-idempotent requests always make exactly
	// one attempt.
	MaxAttempts int

	// RetryWaitTime sets the initial wait time between retries
	RetryWaitTime time.Duration

	// Timeout sets the per-request timeout
	Timeout time.Duration

	// Logger receives structured client logs (optional, no-op by default)
	Logger observability.Logger

	// Metrics receives client metrics (optional, no-op by default)
	Metrics observability.MetricsRecorder
}

// New creates a new Network Integration API client with default settings.
// This is the recommended way to create a client for most use cases.
//
// The client automatically applies client-side rate limiting (1000
// requests/minute by default) and retries failed idempotent requests with
// exponential backoff.
//
// Default settings:
//   - Rate limit: 1000 requests/minute
//   - Max attempts: 3
//   - Initial retry wait: 1 second
//   - Timeout: 30 seconds
//   - TLS verification: disabled (for self-signed certificates)
//
// For custom configuration, use NewWithConfig.
//
// Example:
//
//	client, err := insights.New("https://unifi.local", "your-api-key")
func New(controllerURL, apiKey string) (*APIClient, error) {
	return NewWithConfig(&ClientConfig{
		ControllerURL:      controllerURL,
		APIKey:             apiKey,
		InsecureSkipVerify: true, // Default to true for self-signed certs
	})
}

// NewWithConfig creates a new Network Integration API client with custom
// configuration. Use this when you need to customize retries, timeouts, or
// other settings.
//
// Example:
//
//	client, err := insights.NewWithConfig(&insights.ClientConfig{
//	    ControllerURL:      "https://unifi.local",
//	    APIKey:             "your-api-key",
//	    InsecureSkipVerify: true,
//	    MaxAttempts:        5,
//	})
func NewWithConfig(cfg *ClientConfig) (*APIClient, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.ControllerURL == "" {
		return nil, errors.New("controller URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}

	// Set defaults
	if cfg.RateLimitPerMinute == 0 {
		cfg.RateLimitPerMinute = DefaultRateLimit
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryWaitTime == 0 {
		cfg.RetryWaitTime = DefaultRetryWaitTime
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observability.NoopLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	// Build middleware chain: observability outermost, then rate limiting,
	// then auth; TLS configuration replaces the base transport.
	chain := []httpclient.Middleware{
		middleware.Observability(logger, metrics),
		middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: ratelimit.NewRateLimiter(cfg.RateLimitPerMinute),
			Logger:  logger,
			Metrics: metrics,
		}),
		middleware.APIKeyAuth(cfg.APIKey),
	}
	if cfg.InsecureSkipVerify {
		chain = append(chain, middleware.TLSConfig(middleware.InsecureSkipVerify()))
	}

	opts := []httpclient.Option{
		httpclient.WithHTTPClient(cfg.HTTPClient),
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithMiddleware(chain...),
	}

	return &APIClient{
		httpClient:  httpclient.New(opts...),
		baseURL:     cfg.ControllerURL + apiBasePath,
		maxAttempts: cfg.MaxAttempts,
		retryWait:   cfg.RetryWaitTime,
		logger:      logger,
		metrics:     metrics,
	}, nil
}

// ListSites retrieves one page of sites configured on the controller.
func (c *APIClient) ListSites(ctx context.Context, params *ListParams) (*Page[Site], error) {
	return listResource[Site](ctx, c, "/v1/sites", params)
}

// ListDevices retrieves one page of devices for a specific site.
func (c *APIClient) ListDevices(ctx context.Context, siteID string, params *ListParams) (*Page[Device], error) {
	if siteID == "" {
		return nil, newValidationError("site ID is required")
	}

	return listResource[Device](ctx, c, "/v1/sites/"+url.PathEscape(siteID)+"/devices", params)
}

// GetDevice retrieves detailed information about a specific device.
func (c *APIClient) GetDevice(ctx context.Context, siteID, deviceID string) (*DeviceDetails, error) {
	if siteID == "" {
		return nil, newValidationError("site ID is required")
	}
	if deviceID == "" {
		return nil, newValidationError("device ID is required")
	}

	var device DeviceDetails
	if err := c.get(ctx, devicePath(siteID, deviceID), nil, &device); err != nil {
		return nil, errors.Wrapf(err, "failed to get device %s in site %s", deviceID, siteID)
	}

	return &device, nil
}

// GetDeviceStatistics retrieves the latest statistics snapshot for a device.
func (c *APIClient) GetDeviceStatistics(ctx context.Context, siteID, deviceID string) (*DeviceStatistics, error) {
	if siteID == "" {
		return nil, newValidationError("site ID is required")
	}
	if deviceID == "" {
		return nil, newValidationError("device ID is required")
	}

	var stats DeviceStatistics
	if err := c.get(ctx, devicePath(siteID, deviceID)+"/statistics/latest", nil, &stats); err != nil {
		return nil, errors.Wrapf(err, "failed to get statistics for device %s in site %s", deviceID, siteID)
	}

	return &stats, nil
}

// ExecuteDeviceAction executes an action on a device. Actions are not
// idempotent (RESTART reboots hardware), so the request is never retried;
// a timeout surfaces as KindAmbiguousOutcome because the action may have
// executed anyway.
func (c *APIClient) ExecuteDeviceAction(ctx context.Context, siteID, deviceID string, action DeviceAction) error {
	if siteID == "" {
		return newValidationError("site ID is required")
	}
	if deviceID == "" {
		return newValidationError("device ID is required")
	}
	if action == "" {
		return newValidationError("action is required")
	}

	path := devicePath(siteID, deviceID) + "/actions"

	var ack actionResponse
	if err := c.post(ctx, path, actionRequest{Action: action}, &ack); err != nil {
		return errors.Wrapf(err, "failed to execute %s on device %s in site %s", action, deviceID, siteID)
	}

	if ack.Status != "OK" {
		return newDecodeError(nil, path, fmt.Sprintf("unexpected action status %q", ack.Status))
	}

	return nil
}

// RestartDevice restarts a device. See ExecuteDeviceAction for retry and
// timeout semantics.
func (c *APIClient) RestartDevice(ctx context.Context, siteID, deviceID string) error {
	return c.ExecuteDeviceAction(ctx, siteID, deviceID, DeviceActionRestart)
}

// ListClients retrieves one page of clients connected through a site.
func (c *APIClient) ListClients(ctx context.Context, siteID string, params *ListParams) (*Page[NetworkClient], error) {
	if siteID == "" {
		return nil, newValidationError("site ID is required")
	}

	return listResource[NetworkClient](ctx, c, "/v1/sites/"+url.PathEscape(siteID)+"/clients", params)
}

// GetApplicationInfo retrieves version information about the Network
// application running on the controller.
func (c *APIClient) GetApplicationInfo(ctx context.Context) (*ApplicationInfo, error) {
	var info ApplicationInfo
	if err := c.get(ctx, "/v1/info", nil, &info); err != nil {
		return nil, errors.Wrap(err, "failed to get application info")
	}

	return &info, nil
}

// ValidateAPIKey checks the configured API key by listing sites. It returns
// false without an error when the controller rejects the key, and an error
// for any other failure.
func (c *APIClient) ValidateAPIKey(ctx context.Context) (bool, error) {
	_, err := c.ListSites(ctx, &ListParams{Limit: 1})
	if err == nil {
		return true, nil
	}

	if IsKind(err, KindUnauthorized) || IsKind(err, KindForbidden) {
		return false, nil
	}

	return false, err
}

// SitesPaginator returns a paginator over all sites.
// A non-positive limit falls back to DefaultPageSize.
func (c *APIClient) SitesPaginator(limit int) *Paginator[Site] {
	return NewPaginator(func(ctx context.Context, offset, limit int) (*Page[Site], error) {
		return c.ListSites(ctx, &ListParams{Offset: offset, Limit: limit})
	}, limit)
}

// DevicesPaginator returns a paginator over all devices of a site.
func (c *APIClient) DevicesPaginator(siteID string, limit int) *Paginator[Device] {
	return NewPaginator(func(ctx context.Context, offset, limit int) (*Page[Device], error) {
		return c.ListDevices(ctx, siteID, &ListParams{Offset: offset, Limit: limit})
	}, limit)
}

// ClientsPaginator returns a paginator over all clients of a site.
func (c *APIClient) ClientsPaginator(siteID string, limit int) *Paginator[NetworkClient] {
	return NewPaginator(func(ctx context.Context, offset, limit int) (*Page[NetworkClient], error) {
		return c.ListClients(ctx, siteID, &ListParams{Offset: offset, Limit: limit})
	}, limit)
}

func devicePath(siteID, deviceID string) string {
	return "/v1/sites/" + url.PathEscape(siteID) + "/devices/" + url.PathEscape(deviceID)
}

// listResource fetches one page of a listing and enforces the page
// invariant count == len(data) before handing the page to the caller.
func listResource[T any](ctx context.Context, c *APIClient, path string, params *ListParams) (*Page[T], error) {
	var page Page[T]
	if err := c.get(ctx, path, params.query(), &page); err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", path)
	}

	if page.Count != len(page.Data) {
		return nil, newDecodeError(nil, path,
			fmt.Sprintf("page count %d does not match data length %d", page.Count, len(page.Data)))
	}

	return &page, nil
}

// query converts list parameters into URL query values.
func (p *ListParams) query() url.Values {
	if p == nil {
		return nil
	}

	q := url.Values{}
	q.Set("offset", strconv.Itoa(p.Offset))
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}

	return q
}

// get performs an idempotent GET with bounded retry. Transient failures
// (transport errors, 5xx, 429) are retried with exponential backoff and
// jitter up to the attempt budget; 429 honors a server Retry-After hint.
// Deterministic failures propagate immediately. The surfaced error carries
// the number of attempts made.
func (c *APIClient) get(ctx context.Context, path string, query url.Values, out any) error {
	var lastErr *Error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			wait := retry.Backoff(c.retryWait, attempt-2)
			if lastErr.Kind == KindRateLimited && lastErr.RetryAfter() > 0 {
				wait = lastErr.RetryAfter()
			}

			c.logger.Warn("retrying request",
				observability.Field{Key: "attempt", Value: attempt},
				observability.Field{Key: "max_attempts", Value: c.maxAttempts},
				observability.Field{Key: "path", Value: path},
				observability.Field{Key: "wait", Value: wait},
			)
			c.metrics.RecordRetry(attempt, path)

			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return errors.Wrap(ctx.Err(), "context canceled during retry wait")
			}
		}

		err := c.doOnce(ctx, http.MethodGet, path, query, nil, out)
		if err == nil {
			return nil
		}

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			return err
		}

		apiErr.Attempts = attempt
		if !apiErr.Retryable() {
			return apiErr
		}

		lastErr = apiErr
	}

	return lastErr
}

// post performs a non-idempotent POST: exactly one transport call, never
// retried. A timeout is reclassified as KindAmbiguousOutcome since the
// request may have reached the controller.
func (c *APIClient) post(ctx context.Context, path string, body, out any) error {
	err := c.doOnce(ctx, http.MethodPost, path, nil, body, out)
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindTransport && isTimeout(apiErr.cause) {
		return newAmbiguousOutcomeError(apiErr.cause, path)
	}

	return err
}

// doOnce executes a single HTTP exchange and normalizes the outcome: a
// transport failure, a classified API error for non-2xx statuses, a decode
// failure for unparsable 2xx bodies, or the decoded payload.
func (c *APIClient) doOnce(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request body")
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return newTransportError(err, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return newTransportError(err, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, resp.Header, data, path)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return newDecodeError(err, path, "malformed response body")
	}

	return nil
}

// isTimeout reports whether a transport failure was a timeout, either from
// the per-request deadline or the underlying connection.
func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
