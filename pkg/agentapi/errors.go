package agentapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
)

var (
	// ErrTimeout marks requests that hit a deadline or were cancelled.
	ErrTimeout = errors.New("request timed out, please try again")
	// ErrUnreachable marks requests that never reached the backend.
	ErrUnreachable = errors.New("cannot connect to backend server")
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// TransportError wraps a transport failure with its classification. It
// matches ErrTimeout or ErrUnreachable via errors.Is and still unwraps to
// the underlying cause. Backend is the server the request was aimed at,
// not the full endpoint URL.
type TransportError struct {
	Kind    error
	Backend string
	Err     error
}

func (e *TransportError) Error() string {
	if errors.Is(e.Kind, ErrUnreachable) && e.Backend != "" {
		return fmt.Sprintf("%s at %s, please make sure it is running", ErrUnreachable, e.Backend)
	}
	return e.Kind.Error()
}

func (e *TransportError) Unwrap() []error { return []error{e.Kind, e.Err} }

// classifyTransportError maps transport failures onto ErrTimeout and
// ErrUnreachable. Anything else is returned as is.
func classifyTransportError(backend string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case isTimeout(err):
		return &TransportError{Kind: ErrTimeout, Backend: backend, Err: err}
	case isConnectivity(err):
		return &TransportError{Kind: ErrUnreachable, Backend: backend, Err: err}
	default:
		return err
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectivity(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

func bodyText(body []byte) string {
	return strings.TrimSpace(string(body))
}
