package insights

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/domalab/go-unifi-insights/internal/retry"
)

// Kind classifies a client failure. Every error returned by APIClient wraps
// an *Error carrying exactly one Kind.
type Kind string

// Failure kinds.
const (
	// KindValidation is a local pre-flight failure; no request was issued.
	KindValidation Kind = "Validation"

	// KindTransport means no response was obtained: connection failure,
	// timeout, or TLS failure.
	KindTransport Kind = "Transport"

	// KindDecode means a response was received but its body was unparsable
	// or violated the expected schema.
	KindDecode Kind = "Decode"

	KindBadRequest   Kind = "BadRequest"   // 400
	KindUnauthorized Kind = "Unauthorized" // 401
	KindForbidden    Kind = "Forbidden"    // 403
	KindNotFound     Kind = "NotFound"     // 404
	KindConflict     Kind = "Conflict"     // 409
	KindRateLimited  Kind = "RateLimited"  // 429
	KindServerError  Kind = "ServerError"  // 5xx

	// KindAmbiguousOutcome marks a timed-out non-idempotent call: the action
	// may or may not have executed on the controller.
	KindAmbiguousOutcome Kind = "AmbiguousOutcome"
)

// Error is the uniform error type for all client failures. StatusCode is 0
// for local failures (Validation, Transport, Decode, AmbiguousOutcome).
// RequestID is preserved verbatim from the controller response so failures
// can be traced against server-side logs.
type Error struct {
	Kind        Kind
	StatusCode  int
	StatusName  string
	Message     string
	Timestamp   string
	RequestPath string
	RequestID   string

	// Attempts is the number of transport calls made before the error was
	// surfaced; greater than 1 only when the retry budget was spent.
	Attempts int

	// retryAfter is the server-supplied wait hint for 429 responses.
	retryAfter time.Duration

	cause error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status=%d", msg, e.StatusCode)
		if e.RequestID != "" {
			msg += ", requestId=" + e.RequestID
		}
		msg += ")"
	}
	if e.Attempts > 1 {
		msg = fmt.Sprintf("%s after %d attempts", msg, e.Attempts)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Retryable reports whether the failure is transient and safe to retry for
// idempotent operations. Connection-level failures are always retryable;
// status-backed failures delegate to the shared status classification.
func (e *Error) Retryable() bool {
	if e.Kind == KindTransport {
		return true
	}

	return e.StatusCode != 0 && retry.ShouldRetry(e.StatusCode)
}

// RetryAfter returns the server-supplied wait hint for rate-limited
// responses, or 0 when none was given.
func (e *Error) RetryAfter() time.Duration {
	return e.retryAfter
}

// KindOf returns the Kind of err, or the empty Kind when err does not wrap
// an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}

	return ""
}

// IsKind reports whether err wraps an *Error of the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// apiErrorBody is the wire shape of controller error responses.
type apiErrorBody struct {
	StatusCode  int    `json:"statusCode"`
	StatusName  string `json:"statusName"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	RequestPath string `json:"requestPath"`
	RequestID   string `json:"requestId"`
}

// kindForStatus maps an HTTP status code to its failure kind.
func kindForStatus(statusCode int) Kind {
	switch {
	case statusCode == http.StatusBadRequest:
		return KindBadRequest
	case statusCode == http.StatusUnauthorized:
		return KindUnauthorized
	case statusCode == http.StatusForbidden:
		return KindForbidden
	case statusCode == http.StatusNotFound:
		return KindNotFound
	case statusCode == http.StatusConflict:
		return KindConflict
	case statusCode == http.StatusTooManyRequests:
		return KindRateLimited
	case statusCode >= 500:
		return KindServerError
	default:
		// Unexpected non-2xx statuses are grouped with the deterministic
		// client errors: they are not retried.
		return KindBadRequest
	}
}

// newAPIError classifies a non-2xx response. The body is parsed as the wire
// error shape when possible; the observed status code is ground truth over
// any statusName the body claims. A missing or malformed body yields a
// synthesized error with a generic message.
func newAPIError(statusCode int, header http.Header, body []byte, requestPath string) *Error {
	apiErr := &Error{
		Kind:        kindForStatus(statusCode),
		StatusCode:  statusCode,
		Message:     http.StatusText(statusCode),
		RequestPath: requestPath,
		Attempts:    1,
	}

	var wire apiErrorBody
	if len(body) > 0 && json.Unmarshal(body, &wire) == nil {
		if wire.Message != "" {
			apiErr.Message = wire.Message
		}
		apiErr.StatusName = wire.StatusName
		apiErr.Timestamp = wire.Timestamp
		apiErr.RequestID = wire.RequestID
		if wire.RequestPath != "" {
			apiErr.RequestPath = wire.RequestPath
		}
	}

	if statusCode == http.StatusTooManyRequests {
		apiErr.retryAfter = retry.ParseRetryAfter(header.Get("Retry-After"))
	}

	return apiErr
}

// newValidationError builds a local pre-flight failure.
func newValidationError(format string, args ...any) *Error {
	return &Error{
		Kind:     KindValidation,
		Message:  fmt.Sprintf(format, args...),
		Attempts: 0,
	}
}

// newTransportError wraps a connection-level failure.
func newTransportError(cause error, requestPath string) *Error {
	return &Error{
		Kind:        KindTransport,
		Message:     "request failed",
		RequestPath: requestPath,
		Attempts:    1,
		cause:       cause,
	}
}

// newDecodeError wraps a response whose body could not be decoded into the
// expected shape.
func newDecodeError(cause error, requestPath, msg string) *Error {
	return &Error{
		Kind:        KindDecode,
		Message:     msg,
		RequestPath: requestPath,
		Attempts:    1,
		cause:       cause,
	}
}

// newAmbiguousOutcomeError marks a timed-out non-idempotent call.
func newAmbiguousOutcomeError(cause error, requestPath string) *Error {
	return &Error{
		Kind:        KindAmbiguousOutcome,
		Message:     "action outcome unknown: request timed out after it may have been delivered",
		RequestPath: requestPath,
		Attempts:    1,
		cause:       cause,
	}
}
