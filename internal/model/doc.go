// Package model holds the persisted shapes of the relay: bids and auctions.
package model

import "github.com/shopspring/decimal"

func init() {
	// Amounts travel as JSON numbers on the bid stream, in HTTP responses
	// and on the bid_updates channel.
	decimal.MarshalJSONWithoutQuotes = true
}
