// Package queue carries bid events over the durable RabbitMQ stream.
package queue

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/auction-bid-relay/internal/model"
)

// BidEvent is the message published for every submitted bid.  The first
// five fields are always present; the remaining ones are optional and
// default to a non-winning, active bid without an auto-bid ceiling.
type BidEvent struct {
	UserID     string           `json:"user_id"`
	AuctionID  string           `json:"auction_id"`
	BidAmount  decimal.Decimal  `json:"bid_amount"`
	BidTime    string           `json:"bid_time"`
	CreatedAt  string           `json:"created_at"`
	IsWinning  bool             `json:"is_winning_bid,omitempty"`
	AutoBidMax *decimal.Decimal `json:"auto_bid_max,omitempty"`
	Status     string           `json:"status,omitempty"`
}

// Validate checks the invariants every bid on the stream must hold.  Amounts
// must be storable without rounding so the cache and the store agree.
func (e BidEvent) Validate() error {
	switch {
	case strings.TrimSpace(e.UserID) == "":
		return fmt.Errorf("%w: user_id is required", ErrInvalidBid)
	case strings.TrimSpace(e.AuctionID) == "":
		return fmt.Errorf("%w: auction_id is required", ErrInvalidBid)
	}
	if err := model.CheckAmount(e.BidAmount); err != nil {
		return fmt.Errorf("%w: bid_amount: %v", ErrInvalidBid, err)
	}
	if e.AutoBidMax != nil {
		if err := model.CheckAmount(*e.AutoBidMax); err != nil {
			return fmt.Errorf("%w: auto_bid_max: %v", ErrInvalidBid, err)
		}
	}
	return nil
}

var bidTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseBidTime interprets BidTime.  An empty or unparseable value yields nil
// so the stored bid keeps a NULL bid_time rather than an invented one.
func (e BidEvent) ParseBidTime() *time.Time {
	s := strings.TrimSpace(e.BidTime)
	if s == "" {
		return nil
	}
	for _, layout := range bidTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// ToBid converts the event into the record stored by the persistence step.
func (e BidEvent) ToBid() model.Bid {
	b := model.Bid{
		AuctionID: e.AuctionID,
		UserID:    e.UserID,
		Amount:    e.BidAmount,
		BidTime:   e.ParseBidTime(),
		IsWinning: e.IsWinning,
		Status:    e.Status,
	}
	if e.AutoBidMax != nil {
		b.AutoBidMax = decimal.NewNullDecimal(*e.AutoBidMax)
	}
	if b.Status == "" {
		b.Status = model.BidStatusActive
	}
	return b
}

// DecodeBidEvent parses a stream message body and validates it.
func DecodeBidEvent(body []byte) (BidEvent, error) {
	var ev BidEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return BidEvent{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := ev.Validate(); err != nil {
		return BidEvent{}, err
	}
	return ev, nil
}
