package router // package router registers the relay's HTTP routes

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-bid-relay/internal/handler"
)

// RegisterRoutes registers the probes on the provided Echo instance.
// ready is the readiness probe built from the backing service checks.
func RegisterRoutes(e *echo.Echo, ready echo.HandlerFunc) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", ready)
}

// RegisterBids registers bid submission, on-demand consumption and the
// highest-bid queries.  limit guards submission; cache fronts the bid
// listing.  Highest-bid reads are never response-cached since they already
// come from the arbiter's key.
func RegisterBids(e *echo.Echo, h *handler.BidHandler, limit, cache echo.MiddlewareFunc) {
	e.POST("/sending_bid", h.SubmitBid, limit)
	e.GET("/receiving_bid", h.ReceiveBids)

	g := e.Group("/auctions/:id")
	g.GET("/highest_bid", h.HighestBid)
	g.GET("/bids", h.ListBids, cache)
}
