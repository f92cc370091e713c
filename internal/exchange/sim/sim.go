// Package sim provides a deterministic in-process exchange used for
// paper trading and tests. Prices follow a slow sine wave, volume spikes
// periodically, and network faults can be injected at a configured rate.
package sim

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"spot-breakout-bot/internal/exchange"
	"spot-breakout-bot/internal/pipeline"
)

const (
	basePrice  = 2000.0
	amplitude  = 50.0
	baseSpread = 0.2
)

type Client struct {
	now         func() time.Time
	freeBalance float64
	// One injected network failure every failEvery calls; zero disables.
	failEvery uint64
	calls     atomic.Uint64
	orderSeq  atomic.Uint64
}

type Option func(*Client)

// WithClock replaces the wall clock, pinning generated market data.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithFreeBalance sets the mocked free quote balance.
func WithFreeBalance(free float64) Option {
	return func(c *Client) { c.freeBalance = free }
}

// WithFailEvery injects a network failure on every n-th call.
func WithFailEvery(n uint64) Option {
	return func(c *Client) { c.failEvery = n }
}

func New(opts ...Option) *Client {
	c := &Client{
		now:         time.Now,
		freeBalance: 50000,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) networkCall(endpoint string) error {
	n := c.calls.Add(1)
	if c.failEvery > 0 && n%c.failEvery == 0 {
		return pipeline.Errorf(pipeline.KindNetwork, "connection timed out: %s", endpoint)
	}
	return nil
}

// marketData derives a price and 1-hour volume from the clock so
// repeated runs over the same instants reproduce the same tape.
func (c *Client) marketData() (float64, float64) {
	now := c.now().Unix()
	cycle := float64(now % 3600)
	price := basePrice + math.Sin(cycle*0.1)*amplitude
	volume := 150 + float64(now%500)
	if now%20 == 0 {
		volume = 5000
	}
	return price, volume
}

func (c *Client) CheckConnectivity(_ context.Context) (int64, error) {
	if err := c.networkCall("ping"); err != nil {
		return 0, err
	}
	return 45, nil
}

func (c *Client) FetchTicker(_ context.Context, symbol string) (exchange.Ticker, error) {
	if err := c.networkCall("ticker"); err != nil {
		return exchange.Ticker{}, err
	}
	price, vol := c.marketData()
	return exchange.Ticker{
		Symbol:    symbol,
		Price:     price,
		Volume24h: vol * 24,
		Volume1h:  vol,
		Open:      price - 10,
		High:      price + 15,
		Low:       price - 15,
		Bid:       price - baseSpread,
		Ask:       price + baseSpread,
		Timestamp: c.now(),
	}, nil
}

func (c *Client) FetchOrderBook(_ context.Context, symbol string, depth int) (exchange.OrderBook, error) {
	if err := c.networkCall("depth"); err != nil {
		return exchange.OrderBook{}, err
	}
	price, _ := c.marketData()
	book := exchange.OrderBook{Symbol: symbol, LastUpdateID: uint64(c.now().UnixNano())}
	for i := 0; i < depth; i++ {
		spread := float64(i) * 0.5
		qty := 1 + float64(i)
		book.Bids = append(book.Bids, exchange.PriceLevel{Price: price - spread, Quantity: qty})
		book.Asks = append(book.Asks, exchange.PriceLevel{Price: price + spread, Quantity: qty})
	}
	return book, nil
}

func (c *Client) FetchBalance(_ context.Context, asset string) (exchange.Balance, error) {
	if err := c.networkCall("account"); err != nil {
		return exchange.Balance{}, err
	}
	return exchange.Balance{Asset: asset, Free: c.freeBalance, Locked: 1200}, nil
}

func (c *Client) ExecuteOrder(_ context.Context, symbol string, side exchange.Side, typ exchange.OrderType, qty, price float64) (string, error) {
	if err := c.networkCall("order"); err != nil {
		return "", err
	}
	if qty <= 0 {
		return "", pipeline.E(pipeline.KindExchange, "order quantity must be positive")
	}
	if typ == exchange.OrderTypeLimit && price <= 0 {
		return "", pipeline.E(pipeline.KindExchange, "limit order requires a valid price")
	}
	seq := c.orderSeq.Add(1)
	return fmt.Sprintf("SIM-%s-%s-%d", symbol, side, seq), nil
}
