package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bid statuses stored in bids.status.
const (
	BidStatusActive    = "active"
	BidStatusOutbid    = "outbid"
	BidStatusCancelled = "cancelled"
)

// Bid is the live bid of one user on one auction.  There is at most one
// row per (UserID, AuctionID): a newer submission overwrites the previous
// one instead of appending history.
//
// Fields:
//
//	ID           – primary key identifier.
//	AuctionID    – auction the bid was placed on.
//	UserID       – bidder.
//	Amount       – offered price.
//	BidTime      – when the bidder placed the bid (client supplied, nullable).
//	IsWinning    – winning flag as reported by the submitter.
//	AutoBidMax   – optional proxy-bid ceiling.
//	Status       – one of active, outbid, cancelled.
//	CreatedAt    – creation timestamp.
//	UpdatedAt    – last update timestamp.
type Bid struct {
	ID         uint64              `json:"id"`
	AuctionID  string              `json:"auction_id"`
	UserID     string              `json:"user_id"`
	Amount     decimal.Decimal     `json:"bid_amount"`
	BidTime    *time.Time          `json:"bid_time,omitempty"`
	IsWinning  bool                `json:"is_winning_bid"`
	AutoBidMax decimal.NullDecimal `json:"auto_bid_max"`
	Status     string              `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// ValidBidStatus reports whether s is a status the bids table accepts.
func ValidBidStatus(s string) bool {
	switch s {
	case BidStatusActive, BidStatusOutbid, BidStatusCancelled:
		return true
	}
	return false
}
