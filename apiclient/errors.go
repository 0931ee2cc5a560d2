package apiclient

import (
	"errors"
	"fmt"
)

type Reason int

const (
	// ReasonTransport means no response was received.
	ReasonTransport Reason = iota + 1
	// ReasonStatus means the API answered with an unexpected status code.
	ReasonStatus
	// ReasonDecode means the response body could not be decoded.
	ReasonDecode
)

func (r Reason) String() string {
	switch r {
	case ReasonTransport:
		return "transport"
	case ReasonStatus:
		return "status"
	case ReasonDecode:
		return "decode"
	}
	return "unknown"
}

// Error is returned by every Client call that fails.
type Error struct {
	Op      string
	Reason  Reason
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.UserMessage())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown to the user for this failure: the API's own
// message when it sent one, otherwise a generic description.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Reason {
	case ReasonTransport:
		return "Network Error"
	case ReasonStatus:
		return fmt.Sprintf("Request failed with status code %d", e.Status)
	}
	return "Unexpected response from server"
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message returns the user-facing text for any error a Client call
// returned.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return "An unexpected error occurred"
}
