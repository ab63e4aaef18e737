package retry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/domalab/go-unifi-insights/internal/retry"
)

func TestShouldRetry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		want       bool
	}{
		{name: "200 OK", statusCode: 200, want: false},
		{name: "204 No Content", statusCode: 204, want: false},
		{name: "400 Bad Request", statusCode: 400, want: false},
		{name: "401 Unauthorized", statusCode: 401, want: false},
		{name: "403 Forbidden", statusCode: 403, want: false},
		{name: "404 Not Found", statusCode: 404, want: false},
		{name: "409 Conflict", statusCode: 409, want: false},
		{name: "429 Too Many Requests", statusCode: 429, want: true},
		{name: "500 Internal Server Error", statusCode: 500, want: true},
		{name: "502 Bad Gateway", statusCode: 502, want: true},
		{name: "503 Service Unavailable", statusCode: 503, want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, retry.ShouldRetry(tt.statusCode))
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{name: "empty header", header: "", want: 0},
		{name: "seconds", header: "120", want: 120 * time.Second},
		{name: "zero seconds", header: "0", want: 0},
		{name: "negative seconds", header: "-5", want: 0},
		{name: "http date unsupported", header: "Wed, 21 Oct 2026 07:28:00 GMT", want: 0},
		{name: "garbage", header: "soon", want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, retry.ParseRetryAfter(tt.header))
		})
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	t.Run("grows with attempt and stays within bounds", func(t *testing.T) {
		t.Parallel()

		initial := time.Second

		for attempt := 0; attempt < 4; attempt++ {
			base := initial << uint(attempt)

			// Sample a few times since the schedule is jittered.
			for i := 0; i < 20; i++ {
				wait := retry.Backoff(initial, attempt)
				assert.GreaterOrEqual(t, wait, base/2, "attempt %d", attempt)
				assert.Less(t, wait, base, "attempt %d", attempt)
			}
		}
	})

	t.Run("capped for large attempts", func(t *testing.T) {
		t.Parallel()

		wait := retry.Backoff(time.Second, 60)
		assert.Less(t, wait, 30*time.Second)
	})

	t.Run("zero initial wait", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, time.Duration(0), retry.Backoff(0, 3))
	})

	t.Run("sub-nanosecond jitter window", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, time.Nanosecond, retry.Backoff(time.Nanosecond, 0))
	})
}
