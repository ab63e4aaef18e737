package insights

import (
	"net/http"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		wantKind   Kind
	}{
		{name: "400", statusCode: 400, wantKind: KindBadRequest},
		{name: "401", statusCode: 401, wantKind: KindUnauthorized},
		{name: "403", statusCode: 403, wantKind: KindForbidden},
		{name: "404", statusCode: 404, wantKind: KindNotFound},
		{name: "409", statusCode: 409, wantKind: KindConflict},
		{name: "429", statusCode: 429, wantKind: KindRateLimited},
		{name: "500", statusCode: 500, wantKind: KindServerError},
		{name: "503", statusCode: 503, wantKind: KindServerError},
		{name: "418 grouped with client errors", statusCode: 418, wantKind: KindBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			apiErr := newAPIError(tt.statusCode, http.Header{}, nil, "/v1/sites")
			assert.Equal(t, tt.wantKind, apiErr.Kind)
			assert.Equal(t, tt.statusCode, apiErr.StatusCode)
		})
	}
}

func TestNewAPIErrorParsesWireBody(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"statusCode": 401,
		"statusName": "UNAUTHORIZED",
		"message": "Missing credentials",
		"timestamp": "2026-08-27T10:15:03Z",
		"requestPath": "/v1/sites",
		"requestId": "46f7b5b4-8d82-4f9c-b8f1-aab2d2a0cbb1"
	}`)

	apiErr := newAPIError(http.StatusUnauthorized, http.Header{}, body, "/v1/sites")

	assert.Equal(t, KindUnauthorized, apiErr.Kind)
	assert.Equal(t, "Missing credentials", apiErr.Message)
	assert.Equal(t, "UNAUTHORIZED", apiErr.StatusName)
	assert.Equal(t, "2026-08-27T10:15:03Z", apiErr.Timestamp)
	assert.Equal(t, "46f7b5b4-8d82-4f9c-b8f1-aab2d2a0cbb1", apiErr.RequestID)
}

func TestNewAPIErrorStatusCodeIsGroundTruth(t *testing.T) {
	t.Parallel()

	// Body claims 401 but the server actually answered 503; the observed
	// status wins for classification.
	body := []byte(`{"statusCode": 401, "statusName": "UNAUTHORIZED", "message": "stale body"}`)

	apiErr := newAPIError(http.StatusServiceUnavailable, http.Header{}, body, "/v1/sites")

	assert.Equal(t, KindServerError, apiErr.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "stale body", apiErr.Message)
}

func TestNewAPIErrorSynthesizesOnMalformedBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body []byte
	}{
		{name: "empty body", body: nil},
		{name: "malformed body", body: []byte("<html>gateway error</html>")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			apiErr := newAPIError(http.StatusBadGateway, http.Header{}, tt.body, "/v1/sites")

			assert.Equal(t, KindServerError, apiErr.Kind)
			assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
			assert.Equal(t, "Bad Gateway", apiErr.Message)
			assert.Empty(t, apiErr.RequestID)
		})
	}
}

func TestNewAPIErrorCapturesRetryAfter(t *testing.T) {
	t.Parallel()

	header := http.Header{}
	header.Set("Retry-After", "7")

	apiErr := newAPIError(http.StatusTooManyRequests, header, nil, "/v1/sites")
	assert.Equal(t, 7*time.Second, apiErr.RetryAfter())

	// Hint only applies to rate limiting.
	apiErr = newAPIError(http.StatusServiceUnavailable, header, nil, "/v1/sites")
	assert.Equal(t, time.Duration(0), apiErr.RetryAfter())
}

func TestErrorRetryable(t *testing.T) {
	t.Parallel()

	transport := newTransportError(errors.New("dial tcp: connection refused"), "/v1/sites")
	assert.True(t, transport.Retryable())

	for _, status := range []int{429, 500, 502, 503} {
		apiErr := newAPIError(status, http.Header{}, nil, "/v1/sites")
		assert.True(t, apiErr.Retryable(), "status %d", status)
	}

	for _, status := range []int{400, 401, 403, 404, 409, 418} {
		apiErr := newAPIError(status, http.Header{}, nil, "/v1/sites")
		assert.False(t, apiErr.Retryable(), "status %d", status)
	}

	local := []*Error{
		newValidationError("site ID is required"),
		newDecodeError(nil, "/v1/sites", "malformed response body"),
		newAmbiguousOutcomeError(errors.New("timeout"), "/v1/sites/a/devices/b/actions"),
	}
	for _, apiErr := range local {
		assert.False(t, apiErr.Retryable(), "kind %s", apiErr.Kind)
	}
}

func TestErrorString(t *testing.T) {
	t.Parallel()

	apiErr := &Error{
		Kind:       KindUnauthorized,
		StatusCode: 401,
		Message:    "Missing credentials",
		RequestID:  "46f7b5b4-8d82-4f9c-b8f1-aab2d2a0cbb1",
		Attempts:   1,
	}

	msg := apiErr.Error()
	assert.Contains(t, msg, "Unauthorized")
	assert.Contains(t, msg, "Missing credentials")
	assert.Contains(t, msg, "status=401")
	assert.Contains(t, msg, "requestId=46f7b5b4-8d82-4f9c-b8f1-aab2d2a0cbb1")
	assert.NotContains(t, msg, "attempts")

	apiErr.Attempts = 3
	assert.Contains(t, apiErr.Error(), "after 3 attempts")

	local := newValidationError("site ID is required")
	assert.Equal(t, "Validation: site ID is required", local.Error())
}

func TestKindOfThroughWrapping(t *testing.T) {
	t.Parallel()

	apiErr := newAPIError(http.StatusNotFound, http.Header{}, nil, "/v1/sites/x")
	wrapped := errors.Wrap(errors.Wrap(apiErr, "inner"), "outer")

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindServerError))

	assert.Equal(t, Kind(""), KindOf(errors.New("plain error")))
}

func TestTransportErrorUnwraps(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	apiErr := newTransportError(cause, "/v1/sites")

	require.ErrorIs(t, apiErr, cause)
	assert.Equal(t, KindTransport, apiErr.Kind)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "connection refused")
}
