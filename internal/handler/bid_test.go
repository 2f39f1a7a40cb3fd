package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iliyamo/auction-bid-relay/internal/model"
	"github.com/iliyamo/auction-bid-relay/internal/queue"
	"github.com/iliyamo/auction-bid-relay/internal/repository"
)

type fakeProducer struct {
	got []queue.BidEvent
	err error
}

func (p *fakeProducer) Submit(_ context.Context, ev queue.BidEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	p.got = append(p.got, ev)
	return p.err
}

type fakeReceiver struct {
	n        int
	err      error
	deadline time.Time
}

func (r *fakeReceiver) Run(ctx context.Context) (int, error) {
	r.deadline, _ = ctx.Deadline()
	return r.n, r.err
}

type fakeCache map[string]decimal.Decimal

func (f fakeCache) HighestBid(_ context.Context, id string) (decimal.Decimal, bool, error) {
	v, ok := f[id]
	return v, ok, nil
}

type fakeAuctions map[string]*model.Auction

func (f fakeAuctions) GetByID(_ context.Context, id string) (*model.Auction, error) {
	if a, ok := f[id]; ok {
		return a, nil
	}
	return nil, repository.ErrAuctionNotFound
}

type fakeBids struct {
	bids []model.Bid
	err  error
}

func (f fakeBids) ListByAuction(context.Context, string) ([]model.Bid, error) { return f.bids, f.err }

func newTestHandler(t *testing.T) (*BidHandler, *fakeProducer, *fakeReceiver) {
	p := &fakeProducer{}
	r := &fakeReceiver{}
	h := &BidHandler{
		Producer:    p,
		NewReceiver: func() BidReceiver { return r },
		Cache:       fakeCache{},
		Auctions:    fakeAuctions{},
		Bids:        fakeBids{},
		Log:         zaptest.NewLogger(t),
	}
	return h, p, r
}

func serve(h echo.HandlerFunc, method, target, body string, params ...string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) == 2 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}
	_ = h(c)
	return rec
}

const validBody = `{"user_id":"U1","auction_id":"X","bid_amount":150,"bid_time":"2025-01-01T10:00:00Z","created_at":"2025-01-01T10:00:01Z"}`

func TestSubmitBid_PublishesAndEchoesAmount(t *testing.T) {
	h, p, _ := newTestHandler(t)

	rec := serve(h.SubmitBid, http.MethodPost, "/sending_bid", validBody)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `150`, rec.Body.String())
	require.Len(t, p.got, 1)
	assert.Equal(t, "U1", p.got[0].UserID)
	assert.Equal(t, "X", p.got[0].AuctionID)
	assert.True(t, p.got[0].BidAmount.Equal(decimal.NewFromInt(150)))
}

func TestSubmitBid_Rejections(t *testing.T) {
	cases := map[string]string{
		"malformed body":  `{"user_id":`,
		"zero amount":     `{"user_id":"U1","auction_id":"X","bid_amount":0}`,
		"negative amount": `{"user_id":"U1","auction_id":"X","bid_amount":-5}`,
		"missing auction": `{"user_id":"U1","bid_amount":10}`,
		"sub-cent amount": `{"user_id":"U1","auction_id":"X","bid_amount":150.004}`,
		"oversized":       `{"user_id":"U1","auction_id":"X","bid_amount":1000000000000}`,
		"unknown status":  `{"user_id":"U1","auction_id":"X","bid_amount":10,"status":"activate"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			h, p, _ := newTestHandler(t)
			rec := serve(h.SubmitBid, http.MethodPost, "/sending_bid", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, p.got)
		})
	}
}

func TestSubmitBid_BrokerFailure(t *testing.T) {
	h, p, _ := newTestHandler(t)
	p.err = fmt.Errorf("%w: dial: connection refused", queue.ErrBrokerUnavailable)

	rec := serve(h.SubmitBid, http.MethodPost, "/sending_bid", validBody)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"failed to send bid"}`, rec.Body.String())
}

func TestReceiveBids_ReportsProcessedCount(t *testing.T) {
	h, _, r := newTestHandler(t)
	h.ReceiveWindow = 3 * time.Second
	r.n = 2

	start := time.Now()
	rec := serve(h.ReceiveBids, http.MethodGet, "/receiving_bid", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Processed int    `json:"processed"`
		Message   string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Processed)
	assert.Equal(t, "Received 2 messages and stopped.", body.Message)
	assert.WithinDuration(t, start.Add(3*time.Second), r.deadline, time.Second)
}

func TestReceiveBids_BrokerUnavailable(t *testing.T) {
	h, _, r := newTestHandler(t)
	r.err = queue.ErrBrokerUnavailable

	rec := serve(h.ReceiveBids, http.MethodGet, "/receiving_bid", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHighestBid_ShowsCacheAndStore(t *testing.T) {
	h, _, _ := newTestHandler(t)
	h.Cache = fakeCache{"X": decimal.NewFromInt(150)}
	h.Auctions = fakeAuctions{"X": {
		ID:                "X",
		CurrentHighestBid: decimal.NewNullDecimal(decimal.NewFromInt(120)),
	}}

	rec := serve(h.HighestBid, http.MethodGet, "/auctions/X/highest_bid", "", "id", "X")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"auction_id":"X","highest_bid":150,"recorded_highest_bid":120}`, rec.Body.String())
}

func TestHighestBid_NoBidsYet(t *testing.T) {
	h, _, _ := newTestHandler(t)
	h.Auctions = fakeAuctions{"X": {ID: "X"}}

	rec := serve(h.HighestBid, http.MethodGet, "/auctions/X/highest_bid", "", "id", "X")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"auction_id":"X","highest_bid":null,"recorded_highest_bid":null}`, rec.Body.String())
}

func TestHighestBid_CacheOnlyAuction(t *testing.T) {
	h, _, _ := newTestHandler(t)
	h.Cache = fakeCache{"Y": decimal.NewFromInt(30)}

	rec := serve(h.HighestBid, http.MethodGet, "/auctions/Y/highest_bid", "", "id", "Y")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"auction_id":"Y","highest_bid":30,"recorded_highest_bid":null}`, rec.Body.String())
}

func TestHighestBid_UnknownAuction(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := serve(h.HighestBid, http.MethodGet, "/auctions/Z/highest_bid", "", "id", "Z")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListBids(t *testing.T) {
	h, _, _ := newTestHandler(t)
	h.Bids = fakeBids{bids: []model.Bid{
		{ID: 2, AuctionID: "X", UserID: "U1", Amount: decimal.NewFromInt(150), Status: model.BidStatusActive},
		{ID: 3, AuctionID: "X", UserID: "U2", Amount: decimal.NewFromInt(120), Status: model.BidStatusActive},
	}}

	rec := serve(h.ListBids, http.MethodGet, "/auctions/X/bids", "", "id", "X")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		AuctionID string      `json:"auction_id"`
		Bids      []model.Bid `json:"bids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "X", body.AuctionID)
	require.Len(t, body.Bids, 2)
	assert.Equal(t, "U1", body.Bids[0].UserID)
	assert.True(t, body.Bids[1].Amount.Equal(decimal.NewFromInt(120)))
}

func TestListBids_EmptyAndError(t *testing.T) {
	h, _, _ := newTestHandler(t)
	rec := serve(h.ListBids, http.MethodGet, "/auctions/X/bids", "", "id", "X")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"auction_id":"X","bids":[]}`, rec.Body.String())

	h.Bids = fakeBids{err: errors.New("connection reset")}
	rec = serve(h.ListBids, http.MethodGet, "/auctions/X/bids", "", "id", "X")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	rec := serve(Ready(map[string]Check{"mysql": ok, "redis": ok}), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"mysql":"ok","redis":"ok"}`, rec.Body.String())

	rec = serve(Ready(map[string]Check{"mysql": ok, "redis": down}), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"mysql":"ok","redis":"connection refused"}`, rec.Body.String())
}
