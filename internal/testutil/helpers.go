// Package testutil provides common testing utilities and helpers.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SequencedResponse is one canned response for NewMockServerSequence.
type SequencedResponse struct {
	Body       string
	StatusCode int
	Header     http.Header
}

// NewMockServer creates a test HTTP server with a predefined response.
// It validates the request path and API key header, then returns the specified response.
func NewMockServer(t *testing.T, expectedPath, apiKey, responseBody string, statusCode int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Validate request path
		assert.Equal(t, expectedPath, r.URL.Path, "Request path should match expected")

		// Validate API key header if provided
		if apiKey != "" {
			assert.Equal(t, apiKey, r.Header.Get("X-API-Key"), "X-API-Key header should be set")
		}

		// Write response
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, err := w.Write([]byte(responseBody))
		require.NoError(t, err, "Failed to write response body")
	}))
}

// NewMockServerWithHandler creates a test HTTP server with a custom handler.
// Use this for more complex test scenarios that need custom request handling.
func NewMockServerWithHandler(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(handler)
}

// NewMockServerSequence creates a test server that returns responses in sequence.
// Each call to the server returns the next response in the slice.
// Useful for testing retry logic or pagination.
func NewMockServerSequence(t *testing.T, responses []SequencedResponse) *httptest.Server {
	t.Helper()

	callCount := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callCount >= len(responses) {
			t.Errorf("More requests than configured responses (got %d requests, have %d responses)",
				callCount+1, len(responses))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		resp := responses[callCount]
		callCount++

		for key, values := range resp.Header {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		_, err := w.Write([]byte(resp.Body))
		require.NoError(t, err, "Failed to write response body")
	}))
}

// NewCountingServer creates a test server that counts requests and always
// responds with the given body and status. Returns the server and a pointer
// to the request counter.
func NewCountingServer(t *testing.T, responseBody string, statusCode int) (*httptest.Server, *int) {
	t.Helper()

	count := new(int)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*count++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, err := w.Write([]byte(responseBody))
		require.NoError(t, err, "Failed to write response body")
	}))

	return server, count
}
