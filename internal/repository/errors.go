// Package repository holds the MySQL data access of the relay.  The sentinel
// values below let the pipeline and the handlers tell a missing row apart
// from a database failure.
package repository

import "errors"

// ErrAuctionNotFound is returned when the auctions row does not exist.
var ErrAuctionNotFound = errors.New("auction not found")

// ErrBidNotFound is returned when no bid exists for a (user, auction) pair.
var ErrBidNotFound = errors.New("bid not found")

// ErrInvalidStatus is returned when a bid carries a status the bids table
// does not accept.
var ErrInvalidStatus = errors.New("invalid bid status")
