package middleware

import (
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/domalab/go-unifi-insights/observability"
)

// Observability returns a middleware that logs and records metrics for HTTP requests.
func Observability(logger observability.Logger, metrics observability.MetricsRecorder) func(http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = observability.NoopLogger()
	}
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &observabilityTransport{
			next:    next,
			logger:  logger,
			metrics: metrics,
		}
	}
}

type observabilityTransport struct {
	next    http.RoundTripper
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

func (t *observabilityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	urlStr := req.URL.String()

	t.logger.Debug("http request started",
		observability.Field{Key: "method", Value: req.Method},
		observability.Field{Key: "url", Value: urlStr},
		observability.Field{Key: "path", Value: req.URL.Path},
	)

	resp, err := t.next.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		t.logger.Error("http request failed",
			observability.Field{Key: "method", Value: req.Method},
			observability.Field{Key: "url", Value: urlStr},
			observability.Field{Key: "duration", Value: duration},
			observability.Field{Key: "error", Value: err.Error()},
		)

		t.metrics.RecordError("http_request", "Transport")

		//nolint:wrapcheck // Observability middleware logs error but passes it through unchanged
		return nil, err
	}

	fields := []observability.Field{
		{Key: "method", Value: req.Method},
		{Key: "url", Value: urlStr},
		{Key: "status", Value: resp.StatusCode},
		{Key: "duration", Value: duration},
	}

	if resp.StatusCode >= http.StatusBadRequest {
		t.logger.Warn("http request completed with error", fields...)
	} else {
		t.logger.Debug("http request completed", fields...)
	}

	// Record metrics with normalized path to avoid unbounded cardinality
	t.metrics.RecordHTTPRequest(req.Method, normalizePath(req.URL.Path), resp.StatusCode, duration)

	return resp, nil
}

// idPattern matches the resource identifiers that appear in Network
// Integration API paths: UUIDs (sites, devices, clients) and 24-hex
// ObjectIDs seen on older controller firmware.
var idPattern = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}|[0-9a-f]{24}`)

// normalizedPathCache caches normalized paths to avoid repeated regex
// operations. The endpoint surface is small, so the cache stays bounded.
var normalizedPathCache sync.Map

// normalizePath replaces resource identifiers with the :id placeholder so
// metric label cardinality stays bounded.
//
// Examples:
//   - /v1/sites/88f7af54-98f8-306a-a1c7-c9349722b1f6/devices → /v1/sites/:id/devices
//   - /v1/sites/:id/devices/507f1f77bcf86cd799439011 → /v1/sites/:id/devices/:id
func normalizePath(path string) string {
	if cached, ok := normalizedPathCache.Load(path); ok {
		//nolint:forcetypeassert // Cache only stores strings, type assertion is safe
		return cached.(string)
	}

	normalized := idPattern.ReplaceAllString(path, ":id")

	normalizedPathCache.Store(path, normalized)

	return normalized
}
