package exchange

import "context"

// Client is the fixed contract the trading core calls through. Errors
// returned by implementations carry pipeline kinds so the core can tell
// transient network faults from exchange rejections.
type Client interface {
	// CheckConnectivity pings the venue and reports round-trip latency
	// in milliseconds.
	CheckConnectivity(ctx context.Context) (int64, error)
	FetchTicker(ctx context.Context, symbol string) (Ticker, error)
	FetchOrderBook(ctx context.Context, symbol string, depth int) (OrderBook, error)
	FetchBalance(ctx context.Context, asset string) (Balance, error)
	// ExecuteOrder submits an order and returns the venue order id.
	// Price is ignored for market orders.
	ExecuteOrder(ctx context.Context, symbol string, side Side, typ OrderType, qty, price float64) (string, error)
}
