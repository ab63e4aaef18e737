// Package middleware provides reusable HTTP middleware components.
package middleware

import (
	"maps"
	"net/http"
)

// APIKeyAuth returns a middleware that attaches the Network Integration API
// authentication headers to every request:
//   - "X-API-Key" carrying the static API key.
//   - "Accept: application/json".
func APIKeyAuth(apiKey string) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return &authTransport{
			next:   next,
			apiKey: apiKey,
		}
	}
}

type authTransport struct {
	next   http.RoundTripper
	apiKey string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone request to avoid modifying original
	req = cloneRequest(req)

	req.Header.Set("X-API-Key", t.apiKey)
	req.Header.Set("Accept", "application/json")

	//nolint:wrapcheck // Middleware passes through errors from next handler in chain
	return t.next.RoundTrip(req)
}

// cloneRequest creates a shallow copy of the request with a cloned header map.
func cloneRequest(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req
	r.Header = make(http.Header, len(req.Header))
	maps.Copy(r.Header, req.Header)
	return r
}
