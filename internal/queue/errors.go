package queue

import "errors"

var (
	// ErrDecode marks a stream message whose body is not a bid event.
	ErrDecode = errors.New("malformed bid message")
	// ErrInvalidBid marks a bid event with a missing id or a non-positive amount.
	ErrInvalidBid = errors.New("invalid bid")
	// ErrBrokerUnavailable wraps connection, channel and stream errors.
	ErrBrokerUnavailable = errors.New("broker unavailable")
	// ErrNotConfirmed is returned when the broker nacks a publish or the
	// confirmation does not arrive in time.
	ErrNotConfirmed = errors.New("publish not confirmed")
)
