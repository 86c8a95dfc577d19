package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed API call into one of the three outcomes the
// session controller's policy distinguishes.
type Kind int

const (
	// KindUnreachable means no response was obtained: DNS, dial, TLS or
	// timeout failure. The server may never have seen the request.
	KindUnreachable Kind = iota
	// KindRejected means the server answered with a 4xx: it saw the request
	// and refused it.
	KindRejected
	// KindServer means a 5xx or a response that could not be decoded.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindRejected:
		return "rejected"
	case KindServer:
		return "server_error"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by every client operation.
type Error struct {
	Op         string
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Op, e.Message, e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// IsUnreachable reports whether err represents a server that never responded.
func IsUnreachable(err error) bool { return hasKind(err, KindUnreachable) }

// IsRejected reports whether err represents a 4xx response.
func IsRejected(err error) bool { return hasKind(err, KindRejected) }

// IsServerError reports whether err represents a 5xx or malformed response.
func IsServerError(err error) bool { return hasKind(err, KindServer) }

// StatusCode returns the HTTP status carried by err, or 0 for transport errors.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func hasKind(err error, kind Kind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}
