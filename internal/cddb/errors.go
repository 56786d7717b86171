package cddb

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMatch reports that the server knows no exact match for the disc.
	ErrNoMatch = errors.New("cddb: no matching disc")
	// ErrNotFound reports that the requested entry does not exist.
	ErrNotFound = errors.New("cddb: entry not found")
	// ErrNoSites reports that the server publishes no mirror list.
	ErrNoSites = errors.New("cddb: no site information available")
)

// TransportError wraps failures below the protocol: name resolution,
// connection, timeouts, cancellation, or an unreadable HTTP response.
type TransportError struct {
	Command string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cddb %s: transport: %v", e.Command, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is an unexpected status code. HTTP is set when the code came
// from the HTTP status line rather than the CDDB reply.
type ServerError struct {
	Code int
	Text string
	HTTP bool
}

func (e *ServerError) Error() string {
	kind := "status"
	if e.HTTP {
		kind = "http status"
	}
	if e.Text == "" {
		return fmt.Sprintf("cddb: server returned %s %d", kind, e.Code)
	}
	return fmt.Sprintf("cddb: server returned %s %d: %s", kind, e.Code, e.Text)
}

// ParseError reports a reply that does not follow the expected grammar.
type ParseError struct {
	Command string
	Reason  string
}

func (e *ParseError) Error() string {
	if e.Command == "" {
		return "cddb: parse reply: " + e.Reason
	}
	return fmt.Sprintf("cddb %s: parse reply: %s", e.Command, e.Reason)
}

func parseErrorf(command, format string, args ...any) *ParseError {
	return &ParseError{Command: command, Reason: fmt.Sprintf(format, args...)}
}

// IsTransport reports whether err is, or wraps, a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
