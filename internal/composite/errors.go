package composite

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies why a composite fetch failed. Every failed Fetch returns
// an *Error carrying exactly one Kind.
type Kind int

const (
	// KindNoConnectivity means the connectivity precheck failed before any
	// API request was made.
	KindNoConnectivity Kind = iota
	// KindNetwork is a transport-level failure of the API request itself
	// (DNS, timeout, connection reset).
	KindNetwork
	// KindRateLimited is an HTTP 429 from the API.
	KindRateLimited
	// KindAPIError is a non-2xx response with a structured error body.
	KindAPIError
	// KindHTTPError is a non-2xx response whose body could not be parsed.
	KindHTTPError
	// KindMalformedResponse is a 2xx response whose body failed JSON,
	// base64 or image decoding.
	KindMalformedResponse
)

// String returns a short identifier for the kind, used in status messages
// and the cycle history.
func (k Kind) String() string {
	switch k {
	case KindNoConnectivity:
		return "no-connectivity"
	case KindNetwork:
		return "network"
	case KindRateLimited:
		return "rate-limited"
	case KindAPIError:
		return "api-error"
	case KindHTTPError:
		return "http-error"
	case KindMalformedResponse:
		return "malformed-response"
	default:
		return "unknown"
	}
}

// Error is the classified failure returned by Client.Fetch.
type Error struct {
	Kind       Kind
	StatusCode int           // HTTP status for KindRateLimited/KindAPIError/KindHTTPError
	Message    string        // human-readable detail, server-provided when available
	RetryAfter time.Duration // rate-limit hint, zero when the server gave none
	Cause      error         // underlying error, retained for diagnostics
}

// Error implements the error interface with a message suitable for the
// notification sink.
func (e *Error) Error() string {
	switch e.Kind {
	case KindNoConnectivity:
		return "no network connectivity: " + e.Message
	case KindNetwork:
		return "network error: " + e.Message
	case KindRateLimited:
		if e.Message != "" {
			return "rate limited: " + e.Message
		}
		return "rate limited by the composite API, try again later"
	case KindAPIError:
		return "composite API error: " + e.Message
	case KindHTTPError:
		return fmt.Sprintf("composite API returned HTTP %d", e.StatusCode)
	case KindMalformedResponse:
		return "malformed composite response: " + e.Message
	default:
		return e.Message
	}
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// AsError extracts a classified *Error from err, if there is one.
func AsError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
