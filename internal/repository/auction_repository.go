package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/auction-bid-relay/internal/model"
)

// AuctionRepo reads auctions and keeps auctions.current_highest_bid in step
// with incoming bids.
type AuctionRepo struct {
	db *sql.DB
}

// NewAuctionRepo returns a new AuctionRepo bound to the provided database.
func NewAuctionRepo(db *sql.DB) *AuctionRepo { return &AuctionRepo{db: db} }

// GetByID loads an auction or returns ErrAuctionNotFound.
func (r *AuctionRepo) GetByID(ctx context.Context, id string) (*model.Auction, error) {
	const q = `SELECT id, property_id, starting_price, current_highest_bid, bid_increment, minimum_bid,
	                  auction_start_time, auction_end_time, status, winner_user_id, total_bids
	           FROM auctions WHERE id = ?`
	var (
		a      model.Auction
		winner sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&a.ID, &a.PropertyID, &a.StartingPrice, &a.CurrentHighestBid, &a.BidIncrement, &a.MinimumBid,
		&a.StartTime, &a.EndTime, &a.Status, &winner, &a.TotalBids,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAuctionNotFound
	}
	if err != nil {
		return nil, err
	}
	if winner.Valid {
		w := winner.String
		a.WinnerUserID = &w
	}
	return &a, nil
}

// SyncHighestBid raises auctions.current_highest_bid to candidate when
// candidate is strictly greater than the recorded value (NULL counts as
// zero) and reports whether it did.  The read holds a row lock until the
// transaction ends, so concurrent calls for one auction serialize and the
// recorded value never goes down.
func (r *AuctionRepo) SyncHighestBid(ctx context.Context, auctionID string, candidate decimal.Decimal) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("sync highest bid: begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var recorded decimal.NullDecimal
	err = tx.QueryRowContext(ctx,
		`SELECT current_highest_bid FROM auctions WHERE id = ? FOR UPDATE`, auctionID,
	).Scan(&recorded)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("sync highest bid %s: %w", auctionID, ErrAuctionNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("sync highest bid: read: %w", err)
	}
	current := decimal.Zero
	if recorded.Valid {
		current = recorded.Decimal
	}
	if !candidate.GreaterThan(current) {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE auctions SET current_highest_bid = ? WHERE id = ?`, candidate, auctionID,
	); err != nil {
		return false, fmt.Errorf("sync highest bid: update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("sync highest bid: commit: %w", err)
	}
	committed = true
	return true, nil
}
