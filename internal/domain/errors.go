package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals missing or contradictory request input.
	ErrValidation = errors.New("validation failed")
	// ErrUnsupportedFormat signals undecodable or unrecognized content.
	ErrUnsupportedFormat = errors.New("unsupported or corrupt format")
	// ErrContentRejected signals content that failed the safety gate.
	ErrContentRejected = errors.New("content rejected")
	// ErrNotFound signals a missing document.
	ErrNotFound = errors.New("document not found")
	// ErrGatewayTimeout signals a generation call that exceeded its time budget.
	ErrGatewayTimeout = errors.New("generation gateway timeout")
	// ErrGatewayFailure signals a generation call that exhausted retries or
	// returned unparseable structured output.
	ErrGatewayFailure = errors.New("generation gateway failure")
)

// ContentRejectedError wraps ErrContentRejected with the guard's reason.
// The reason may name a prohibited term; the API boundary must not echo it
// to end users beyond a generic category message.
type ContentRejectedError struct {
	Reason string
}

func (e *ContentRejectedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrContentRejected.Error(), e.Reason)
}

func (e *ContentRejectedError) Unwrap() error { return ErrContentRejected }

// NewContentRejected creates a content rejection error carrying the reason.
func NewContentRejected(reason string) error {
	return &ContentRejectedError{Reason: reason}
}
