package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Auction is the persisted auction aggregate.  The relay only ever moves
// CurrentHighestBid upwards; every other column is owned by the auction
// lifecycle service.
type Auction struct {
	ID                string              // auctions.id
	PropertyID        string              // auctions.property_id
	StartingPrice     decimal.Decimal     // auctions.starting_price
	CurrentHighestBid decimal.NullDecimal // auctions.current_highest_bid (nullable)
	BidIncrement      decimal.Decimal     // auctions.bid_increment
	MinimumBid        decimal.Decimal     // auctions.minimum_bid
	StartTime         time.Time           // auctions.auction_start_time
	EndTime           time.Time           // auctions.auction_end_time
	Status            string              // auctions.status
	WinnerUserID      *string             // auctions.winner_user_id (nullable)
	TotalBids         uint32              // auctions.total_bids
}

// HighestBid returns the recorded highest bid, treating NULL as zero.
func (a *Auction) HighestBid() decimal.Decimal {
	if !a.CurrentHighestBid.Valid {
		return decimal.Zero
	}
	return a.CurrentHighestBid.Decimal
}
