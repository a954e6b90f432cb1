package api

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport matches every *TransportError via errors.Is.
	ErrTransport = errors.New("transport error")

	// ErrDecode matches every *DecodeError via errors.Is.
	ErrDecode = errors.New("decode error")

	// errNullBody is the cause recorded when the API answers a lookup with
	// the JSON literal null, which is what it does for unknown item ids.
	errNullBody = errors.New("response body is null")
)

// TransportError reports a failure to complete the HTTP exchange: the request
// could not be built or sent, the body could not be read, or the server
// answered with a non-2xx status.
type TransportError struct {
	Path       string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: HTTP %d: %v", e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetching %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// DecodeError reports a response body that does not parse into the shape the
// caller asked for.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
