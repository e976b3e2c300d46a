package datasource

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when geocoding yields zero matches
var ErrNotFound = errors.New("no matching place found")

// TransportError reports a request to an upstream endpoint that could not be
// completed: network failure, non-success status or an unreadable body.
type TransportError struct {
	Op         string // "geocoding" or "forecast"
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s request failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err carries a TransportError
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// ErrMalformedResponse is wrapped by a TransportError when a body cannot be decoded
var ErrMalformedResponse = errors.New("malformed response body")
