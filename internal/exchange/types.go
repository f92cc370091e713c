// Package exchange defines the capability boundary between the trading
// core and any concrete exchange connectivity layer.
package exchange

import "time"

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type OrderType string

const (
	OrderTypeLimit      OrderType = "LIMIT"
	OrderTypeMarket     OrderType = "MARKET"
	OrderTypeStopLoss   OrderType = "STOP_LOSS"
	OrderTypeTakeProfit OrderType = "TAKE_PROFIT"
)

// Ticker is one immutable market snapshot for a symbol.
type Ticker struct {
	Symbol    string
	Price     float64
	Volume24h float64
	Volume1h  float64
	Open      float64
	High      float64
	Low       float64
	Bid       float64
	Ask       float64
	Timestamp time.Time
}

// PriceLevel is one rung of the order book.
type PriceLevel struct {
	Price    float64
	Quantity float64
}

// OrderBook is level-2 market depth for a symbol.
type OrderBook struct {
	Symbol       string
	Bids         []PriceLevel
	Asks         []PriceLevel
	LastUpdateID uint64
}

// Balance is the account holding for a single asset.
type Balance struct {
	Asset  string
	Free   float64
	Locked float64
}
