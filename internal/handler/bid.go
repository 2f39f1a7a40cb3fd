package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/auction-bid-relay/internal/model"
	"github.com/iliyamo/auction-bid-relay/internal/queue"
	"github.com/iliyamo/auction-bid-relay/internal/repository"
)

// BidSubmitter publishes a bid onto the stream.
type BidSubmitter interface {
	Submit(ctx context.Context, ev queue.BidEvent) error
}

// BidReceiver runs one consumption of the stream until ctx ends.
type BidReceiver interface {
	Run(ctx context.Context) (int, error)
}

// HighestBidReader serves the cached highest bid.
type HighestBidReader interface {
	HighestBid(ctx context.Context, auctionID string) (decimal.Decimal, bool, error)
}

// AuctionReader loads persisted auctions.
type AuctionReader interface {
	GetByID(ctx context.Context, id string) (*model.Auction, error)
}

// BidLister lists persisted bids of an auction.
type BidLister interface {
	ListByAuction(ctx context.Context, auctionID string) ([]model.Bid, error)
}

// BidHandler exposes bid submission, on-demand stream consumption and the
// highest-bid queries.  NewReceiver is called once per /receiving_bid
// request so concurrent requests never share a subscription.
type BidHandler struct {
	Producer    BidSubmitter
	NewReceiver func() BidReceiver
	Cache       HighestBidReader
	Auctions    AuctionReader
	Bids        BidLister
	Log         *zap.Logger

	// ReceiveWindow bounds one /receiving_bid consumption cycle.
	ReceiveWindow time.Duration
}

// submitBidRequest is the body of POST /sending_bid.
type submitBidRequest struct {
	UserID     string           `json:"user_id"`
	AuctionID  string           `json:"auction_id"`
	BidAmount  decimal.Decimal  `json:"bid_amount"`
	BidTime    string           `json:"bid_time"`
	CreatedAt  string           `json:"created_at"`
	IsWinning  bool             `json:"is_winning_bid"`
	AutoBidMax *decimal.Decimal `json:"auto_bid_max"`
	Status     string           `json:"status"`
}

// SubmitBid handles POST /sending_bid.  The bid is validated, published and
// confirmed by the broker before the submitted amount is echoed back.
// Persistence and arbitration happen later on the consumer side.
func (h *BidHandler) SubmitBid(c echo.Context) error {
	var body submitBidRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Status != "" && !model.ValidBidStatus(body.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	ev := queue.BidEvent{
		UserID:     strings.TrimSpace(body.UserID),
		AuctionID:  strings.TrimSpace(body.AuctionID),
		BidAmount:  body.BidAmount,
		BidTime:    body.BidTime,
		CreatedAt:  body.CreatedAt,
		IsWinning:  body.IsWinning,
		AutoBidMax: body.AutoBidMax,
		Status:     body.Status,
	}
	if err := h.Producer.Submit(c.Request().Context(), ev); err != nil {
		if errors.Is(err, queue.ErrInvalidBid) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		h.Log.Error("submit bid failed",
			zap.String("auction_id", ev.AuctionID),
			zap.String("user_id", ev.UserID),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to send bid"})
	}
	return c.JSON(http.StatusOK, ev.BidAmount)
}

// ReceiveBids handles GET /receiving_bid.  It consumes the stream for one
// receive window, dispatching every bid through the pipeline, and reports
// how many bids were processed.
func (h *BidHandler) ReceiveBids(c echo.Context) error {
	window := h.ReceiveWindow
	if window <= 0 {
		window = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), window)
	defer cancel()

	n, err := h.NewReceiver().Run(ctx)
	if err != nil {
		h.Log.Error("receive bids failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to receive bids"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"processed": n,
		"message":   fmt.Sprintf("Received %d messages and stopped.", n),
	})
}

// highestBidResponse reports both views of an auction's highest bid.  They
// can differ for a moment because the cache and the store are updated
// independently.
type highestBidResponse struct {
	AuctionID          string           `json:"auction_id"`
	HighestBid         *decimal.Decimal `json:"highest_bid"`
	RecordedHighestBid *decimal.Decimal `json:"recorded_highest_bid"`
}

// HighestBid handles GET /auctions/:id/highest_bid.  It returns 404 only
// when neither the cache nor the store knows the auction.
func (h *BidHandler) HighestBid(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auction id"})
	}
	ctx := c.Request().Context()
	resp := highestBidResponse{AuctionID: id}

	cached, ok, err := h.Cache.HighestBid(ctx, id)
	if err != nil {
		h.Log.Error("read cached highest bid", zap.String("auction_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cache error"})
	}
	if ok {
		resp.HighestBid = &cached
	}

	auction, err := h.Auctions.GetByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrAuctionNotFound):
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "auction not found"})
		}
	case err != nil:
		h.Log.Error("load auction", zap.String("auction_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	case auction.CurrentHighestBid.Valid:
		recorded := auction.CurrentHighestBid.Decimal
		resp.RecordedHighestBid = &recorded
	}
	return c.JSON(http.StatusOK, resp)
}

// ListBids handles GET /auctions/:id/bids and returns the latest bid of
// every user, highest first.
func (h *BidHandler) ListBids(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auction id"})
	}
	bids, err := h.Bids.ListByAuction(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("list bids", zap.String("auction_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if bids == nil {
		bids = []model.Bid{}
	}
	return c.JSON(http.StatusOK, echo.Map{"auction_id": id, "bids": bids})
}
