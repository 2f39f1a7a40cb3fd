package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/iliyamo/auction-bid-relay/internal/model"
	"github.com/iliyamo/auction-bid-relay/internal/queue"
)

//go:generate mockgen -source=pipeline.go -destination=mock_pipeline_test.go -package=service

// BidStore persists the latest bid of a user on an auction.
type BidStore interface {
	Upsert(ctx context.Context, bid model.Bid) (*model.Bid, error)
}

// HighestBidSyncer raises an auction's recorded highest bid.
type HighestBidSyncer interface {
	SyncHighestBid(ctx context.Context, auctionID string, candidate decimal.Decimal) (bool, error)
}

// HighestBidArbiter decides the authoritative highest bid.
type HighestBidArbiter interface {
	Arbitrate(ctx context.Context, auctionID string, amount decimal.Decimal) (Outcome, error)
}

// Pipeline is the queue.Dispatcher of the bid stream.  For each event it
// stores the bid, raises the auction's recorded highest bid when the bid was
// stored, and lets the arbiter decide the cached highest bid.  The store
// and cache paths are independent: a failure in one does not stop the other.
type Pipeline struct {
	store   BidStore
	syncer  HighestBidSyncer
	arbiter HighestBidArbiter
	log     *zap.Logger
}

var _ queue.Dispatcher = (*Pipeline)(nil)

// NewPipeline wires the three processing steps together.
func NewPipeline(store BidStore, syncer HighestBidSyncer, arbiter HighestBidArbiter, log *zap.Logger) *Pipeline {
	return &Pipeline{store: store, syncer: syncer, arbiter: arbiter, log: log}
}

// Dispatch processes one bid event.  Step failures are logged and returned
// together; none of them is retried.
func (p *Pipeline) Dispatch(ctx context.Context, ev queue.BidEvent) error {
	log := p.log.With(
		zap.String("auction_id", ev.AuctionID),
		zap.String("user_id", ev.UserID),
		zap.String("bid_amount", ev.BidAmount.String()))

	var errs error
	saved, err := p.store.Upsert(ctx, ev.ToBid())
	if err != nil {
		log.Error("pipeline: persist bid failed", zap.Error(err))
		errs = multierr.Append(errs, fmt.Errorf("persist bid: %w", err))
	} else {
		log.Debug("pipeline: bid persisted", zap.Uint64("bid_id", saved.ID))
		updated, err := p.syncer.SyncHighestBid(ctx, ev.AuctionID, ev.BidAmount)
		if err != nil {
			log.Error("pipeline: sync auction highest bid failed", zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("sync highest bid: %w", err))
		} else {
			log.Debug("pipeline: auction highest bid synced", zap.Bool("updated", updated))
		}
	}

	outcome, err := p.arbiter.Arbitrate(ctx, ev.AuctionID, ev.BidAmount)
	switch {
	case errors.Is(err, ErrLockContention):
		log.Warn("pipeline: arbitration skipped, cache may lag the store", zap.Error(err))
		errs = multierr.Append(errs, err)
	case err != nil:
		log.Error("pipeline: arbitration failed", zap.Error(err))
		errs = multierr.Append(errs, err)
	default:
		log.Info("pipeline: bid arbitrated", zap.Stringer("outcome", outcome))
	}
	return errs
}
