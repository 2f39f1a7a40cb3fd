package service

import "errors"

var (
	// ErrInvalidAmount is returned for a bid amount that is not positive or
	// that the store would round or refuse.
	ErrInvalidAmount = errors.New("invalid bid amount")
	// ErrLockContention is returned when the auction lock stayed busy for
	// every attempt.  The bid may already be persisted while the cache
	// still shows the previous highest bid.
	ErrLockContention = errors.New("auction lock busy")
)
