// Package service holds the highest-bid arbiter and the pipeline that feeds
// every consumed bid through persistence, the auction synchronizer and the
// arbiter.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/auction-bid-relay/internal/config"
	"github.com/iliyamo/auction-bid-relay/internal/lock"
	"github.com/iliyamo/auction-bid-relay/internal/model"
)

// Outcome is the result of a successful arbitration round.
type Outcome int

const (
	// OutcomeAccepted means the bid became the auction's highest bid.
	OutcomeAccepted Outcome = iota + 1
	// OutcomeNotHigher means the bid did not beat the recorded highest bid.
	OutcomeNotHigher
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeNotHigher:
		return "not_higher"
	}
	return "unknown"
}

// HighestBidChanged is published on the update channel whenever an auction
// gets a new highest bid.
type HighestBidChanged struct {
	AuctionID  string          `json:"auction_id"`
	HighestBid decimal.Decimal `json:"highest_bid"`
}

// HighestBidKey is the cache key holding an auction's highest bid.  The key
// is the bare auction id, shared with the websocket fan-out service.
func HighestBidKey(auctionID string) string { return auctionID }

// Arbiter owns the authoritative highest bid of every auction.  All reads
// and writes of an auction's highest-bid key happen under that auction's
// distributed lock.
type Arbiter struct {
	rdb    redis.Cmdable
	locker lock.Locker
	cfg    config.ArbiterConfig
	log    *zap.Logger
}

// NewArbiter returns an Arbiter storing highest bids in rdb and serializing
// on locker.
func NewArbiter(rdb redis.Cmdable, locker lock.Locker, cfg config.ArbiterConfig, log *zap.Logger) *Arbiter {
	return &Arbiter{rdb: rdb, locker: locker, cfg: cfg, log: log}
}

// Arbitrate decides whether amount becomes the highest bid of auctionID.
// Amounts the store could not hold exactly are refused with ErrInvalidAmount.
// Under the auction lock it compares amount with the cached highest bid
// (zero when absent); only a strictly greater amount is written and
// announced on the update channel, so among equal bids the first one wins.
// When the lock is busy Arbitrate waits RetryBackoff and tries again, up to
// MaxAttempts times, before failing with ErrLockContention.
func (a *Arbiter) Arbitrate(ctx context.Context, auctionID string, amount decimal.Decimal) (Outcome, error) {
	if err := model.CheckAmount(amount); err != nil {
		return 0, fmt.Errorf("arbitrate %s: %w: %v", auctionID, ErrInvalidAmount, err)
	}
	key := lock.AuctionKey(auctionID)
	for attempt := 1; attempt <= a.cfg.MaxAttempts; attempt++ {
		token, ok, err := a.locker.Acquire(ctx, key, a.cfg.LockTTL)
		if err != nil {
			return 0, fmt.Errorf("arbitrate %s: %w", auctionID, err)
		}
		if ok {
			return a.decide(ctx, auctionID, key, token, amount)
		}
		a.log.Debug("arbiter: lock busy",
			zap.String("auction_id", auctionID),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", a.cfg.MaxAttempts))
		if attempt == a.cfg.MaxAttempts {
			break
		}
		t := time.NewTimer(a.cfg.RetryBackoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return 0, fmt.Errorf("arbitrate %s: %w", auctionID, ctx.Err())
		case <-t.C:
		}
	}
	a.log.Warn("arbiter: failed to acquire lock",
		zap.String("auction_id", auctionID),
		zap.String("bid_amount", amount.String()))
	return 0, fmt.Errorf("arbitrate %s: %w", auctionID, ErrLockContention)
}

// decide runs the critical section.  The caller holds the lock with token.
func (a *Arbiter) decide(ctx context.Context, auctionID, key, token string, amount decimal.Decimal) (Outcome, error) {
	defer func() {
		released, err := a.locker.Release(context.WithoutCancel(ctx), key, token)
		switch {
		case err != nil:
			a.log.Error("arbiter: release lock", zap.String("auction_id", auctionID), zap.Error(err))
		case !released:
			a.log.Warn("arbiter: lock expired before release", zap.String("auction_id", auctionID))
		}
	}()

	current, _, err := a.HighestBid(ctx, auctionID)
	if err != nil {
		return 0, err
	}
	if !amount.GreaterThan(current) {
		a.log.Info("arbiter: bid is not higher than current highest",
			zap.String("auction_id", auctionID),
			zap.String("bid_amount", amount.String()),
			zap.String("highest_bid", current.String()))
		return OutcomeNotHigher, nil
	}

	if err := a.rdb.Set(ctx, HighestBidKey(auctionID), amount.String(), 0).Err(); err != nil {
		return 0, fmt.Errorf("store highest bid %s: %w", auctionID, err)
	}
	a.log.Info("arbiter: highest bid updated",
		zap.String("auction_id", auctionID),
		zap.String("previous", current.String()),
		zap.String("highest_bid", amount.String()))

	payload, err := json.Marshal(HighestBidChanged{AuctionID: auctionID, HighestBid: amount})
	if err != nil {
		return 0, fmt.Errorf("marshal bid update: %w", err)
	}
	// the cache already holds the new value; a lost notification is only logged
	if err := a.rdb.Publish(ctx, a.cfg.UpdateChannel, payload).Err(); err != nil {
		a.log.Error("arbiter: publish bid update",
			zap.String("auction_id", auctionID),
			zap.String("channel", a.cfg.UpdateChannel),
			zap.Error(err))
	}
	return OutcomeAccepted, nil
}

// HighestBid returns the cached highest bid of auctionID.  The bool is false
// when the auction has no bid yet, in which case the amount is zero.
func (a *Arbiter) HighestBid(ctx context.Context, auctionID string) (decimal.Decimal, bool, error) {
	raw, err := a.rdb.Get(ctx, HighestBidKey(auctionID)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("read highest bid %s: %w", auctionID, err)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parse highest bid %s=%q: %w", auctionID, raw, err)
	}
	return v, true, nil
}
