// Package httpclient wraps net/http with RoundTripper middleware chaining.
// The controller client composes its auth, TLS, rate-limiting, and
// observability layers through this package.
package httpclient

import (
	"net/http"
	"time"
)

// Client is an http.Client with a middleware chain baked into its transport.
type Client struct {
	base       *http.Client
	middleware []Middleware
}

// Middleware wraps an http.RoundTripper to add behavior on the way to the
// controller. The first registered middleware is outermost: it sees the
// request first and the response last.
type Middleware func(http.RoundTripper) http.RoundTripper

// New builds a client from the given options and composes the registered
// middleware around the base transport.
func New(opts ...Option) *Client {
	c := &Client{
		base: &http.Client{
			Timeout: 30 * time.Second,
		},
		middleware: []Middleware{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if len(c.middleware) > 0 {
		transport := c.base.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}

		// Wrap innermost-first so registration order is outermost-first.
		for i := len(c.middleware) - 1; i >= 0; i-- {
			transport = c.middleware[i](transport)
		}

		c.base.Transport = transport
	}

	return c
}

// Do executes one HTTP exchange through the middleware chain.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.base.Do(req)
}

// HTTPClient exposes the underlying http.Client for code that needs one
// directly.
func (c *Client) HTTPClient() *http.Client {
	return c.base
}
