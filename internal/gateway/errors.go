package gateway

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a token lookup that resolved to nothing: invalid,
// expired or already-consumed tokens all land here. The server-supplied
// message travels alongside, verbatim.
var ErrNotFound = errors.New("gateway: booking not found")

// NotFoundError wraps ErrNotFound with the server message.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return ErrNotFound.Error()
	}
	return "gateway: " + e.Message
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// RequestError is the generic transport failure: network error, non-2xx
// response or malformed body. Message is surfaced to the end user as-is.
type RequestError struct {
	Function string
	Status   int
	Message  string
}

func (e *RequestError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("gateway: %s failed with status %d: %s", e.Function, e.Status, e.Message)
	}
	return fmt.Sprintf("gateway: %s failed: %s", e.Function, e.Message)
}
