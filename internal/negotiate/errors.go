package negotiate

import (
	"errors"
	"fmt"
)

var (
	ErrPeerFailed       = errors.New("peer connectivity failed")
	ErrPartnerLeft      = errors.New("partner left")
	ErrSessionClosed    = errors.New("negotiation session closed")
	ErrUnexpectedSignal = errors.New("unexpected signal for role")
	ErrDuplicateSignal  = errors.New("description already set")
)

// NegotiationError carries the failing operation alongside the underlying
// error.
type NegotiationError struct {
	Op      string
	Err     error
	Details string
}

func (e *NegotiationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NegotiationError) Unwrap() error {
	return e.Err
}

func NewError(op string, err error) *NegotiationError {
	return &NegotiationError{Op: op, Err: err}
}

func WrapError(op string, err error, details string) *NegotiationError {
	return &NegotiationError{Op: op, Err: err, Details: details}
}
