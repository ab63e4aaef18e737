// Package retry provides retryability classification and backoff scheduling
// for failed HTTP requests.
package retry

import (
	"math/rand"
	"strconv"
	"time"
)

// maxBackoff caps the exponential schedule so high attempt counts do not
// overflow or stall callers for minutes.
const maxBackoff = 30 * time.Second

// ShouldRetry returns true if the HTTP status code indicates a retryable error.
// Retryable errors include:
//   - 429 (Too Many Requests) - rate limit exceeded
//   - 5xx (Server Errors) - temporary server-side issues
func ShouldRetry(statusCode int) bool {
	return statusCode >= 500 || statusCode == 429
}

// ParseRetryAfter parses the Retry-After HTTP header and returns the duration to wait.
// The Retry-After header can contain either:
//   - Number of seconds (e.g., "120")
//   - HTTP-date (not currently supported, returns 0)
//
// Returns 0 if the header is empty or cannot be parsed.
func ParseRetryAfter(retryAfterHeader string) time.Duration {
	if retryAfterHeader == "" {
		return 0
	}

	seconds, err := strconv.Atoi(retryAfterHeader)
	if err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}

	return 0
}

// Backoff returns the wait time before retry attempt number attempt (0-based).
// It grows exponentially with jitter: a random duration in [base/2, base)
// where base = initialWait * 2^attempt. Jitter spreads out retries from
// callers that failed at the same moment.
func Backoff(initialWait time.Duration, attempt int) time.Duration {
	if initialWait <= 0 {
		return 0
	}

	base := initialWait << uint(attempt)
	if base <= 0 || base > maxBackoff {
		base = maxBackoff
	}

	half := base / 2
	if half <= 0 {
		// Sub-2ns waits have no room for jitter.
		return base
	}

	return half + time.Duration(rand.Int63n(int64(half)))
}
