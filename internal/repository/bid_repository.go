package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/auction-bid-relay/internal/model"
)

// BidRepo provides access to the bids table.  Each (user_id, auction_id)
// pair owns exactly one row; Upsert overwrites it in place.
type BidRepo struct {
	db *sql.DB
}

// NewBidRepo returns a new BidRepo bound to the provided database.
func NewBidRepo(db *sql.DB) *BidRepo { return &BidRepo{db: db} }

const bidColumns = `id, auction_id, user_id, bid_amount, bid_time, is_winning_bid, auto_bid_max, status, created_at, updated_at`

// upsertBidSQL inserts the bid or, when uq_bids_user_auction already holds
// the pair, overwrites it in the same statement.  id = LAST_INSERT_ID(id)
// makes LastInsertId report the existing row on the update path.
const upsertBidSQL = `INSERT INTO bids (auction_id, user_id, bid_amount, bid_time, is_winning_bid, auto_bid_max, status)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id), bid_amount = VALUES(bid_amount), bid_time = VALUES(bid_time),
is_winning_bid = VALUES(is_winning_bid), auto_bid_max = VALUES(auto_bid_max), status = VALUES(status)`

// Upsert writes the latest bid of bid.UserID on bid.AuctionID.  When a row
// already exists its amount, bid time, winning flag, auto-bid ceiling and
// status are overwritten; otherwise a new row is inserted.  An empty status
// defaults to active.  The write is a single INSERT ... ON DUPLICATE KEY
// UPDATE, so two first-time upserts of the same pair cannot both insert.
// The stored row is read back in the same transaction and returned.
func (r *BidRepo) Upsert(ctx context.Context, bid model.Bid) (*model.Bid, error) {
	if bid.Status == "" {
		bid.Status = model.BidStatusActive
	}
	if !model.ValidBidStatus(bid.Status) {
		return nil, fmt.Errorf("upsert bid %s/%s: %w: %q", bid.UserID, bid.AuctionID, ErrInvalidStatus, bid.Status)
	}
	var bidTime any
	if bid.BidTime != nil {
		bidTime = bid.BidTime.UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("upsert bid: begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, upsertBidSQL,
		bid.AuctionID, bid.UserID, bid.Amount, bidTime, bid.IsWinning, bid.AutoBidMax, bid.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert bid: write: %w", err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("upsert bid: last insert id: %w", err)
	}

	stored, err := scanBid(tx.QueryRowContext(ctx, `SELECT `+bidColumns+` FROM bids WHERE id = ?`, uint64(lastID)))
	if err != nil {
		return nil, fmt.Errorf("upsert bid: reload: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("upsert bid: commit: %w", err)
	}
	committed = true
	return stored, nil
}

// GetByUserAndAuction returns the live bid of userID on auctionID or
// ErrBidNotFound.
func (r *BidRepo) GetByUserAndAuction(ctx context.Context, userID, auctionID string) (*model.Bid, error) {
	b, err := scanBid(r.db.QueryRowContext(ctx,
		`SELECT `+bidColumns+` FROM bids WHERE user_id = ? AND auction_id = ?`, userID, auctionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBidNotFound
	}
	return b, err
}

// ListByAuction returns the live bids of an auction, highest amount first.
// Equal amounts are ordered by the time they were last written.
func (r *BidRepo) ListByAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bidColumns+` FROM bids WHERE auction_id = ? ORDER BY bid_amount DESC, updated_at ASC`, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bids := []model.Bid{}
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bids, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBid(row rowScanner) (*model.Bid, error) {
	var (
		b       model.Bid
		bidTime sql.NullTime
	)
	if err := row.Scan(&b.ID, &b.AuctionID, &b.UserID, &b.Amount, &bidTime, &b.IsWinning,
		&b.AutoBidMax, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if bidTime.Valid {
		t := bidTime.Time.In(time.UTC)
		b.BidTime = &t
	}
	return &b, nil
}
