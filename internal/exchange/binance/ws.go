package binance

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"spot-breakout-bot/internal/exchange"
)

// tickerFeed maintains a websocket subscription to the miniTicker stream
// and caches the most recent ticker so REST polls can be skipped.
type tickerFeed struct {
	url            string
	symbol         string
	reconnectDelay time.Duration
	maxAge         time.Duration
	log            *zap.Logger

	mu      sync.Mutex
	last    exchange.Ticker
	seen    time.Time
	hasLast bool
}

func newTickerFeed(url, symbol string, log *zap.Logger) *tickerFeed {
	return &tickerFeed{
		url:            url,
		symbol:         strings.ToUpper(symbol),
		reconnectDelay: 3 * time.Second,
		maxAge:         10 * time.Second,
		log:            log,
	}
}

// latest returns the cached ticker unless it has gone stale. Staleness
// is aged against the local receive time, not the venue's event time,
// so clock skew cannot shift the freshness window.
func (f *tickerFeed) latest() (exchange.Ticker, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasLast || time.Since(f.seen) > f.maxAge {
		return exchange.Ticker{}, false
	}
	return f.last, true
}

func (f *tickerFeed) run(ctx context.Context) {
	for {
		if err := f.connectAndRead(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			f.log.Warn("ticker feed disconnected", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(f.reconnectDelay):
		}
	}
}

func (f *tickerFeed) connectAndRead(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, f.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	sub := map[string]any{
		"method": "SUBSCRIBE",
		"params": []string{strings.ToLower(f.symbol) + "@miniTicker"},
		"id":     1,
	}
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return err
	}
	f.log.Info("ticker feed subscribed", zap.String("symbol", f.symbol))

	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		f.handleMessage(msg)
	}
}

type miniTickerEvent struct {
	Event     string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Close     string `json:"c"`
	Open      string `json:"o"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Volume    string `json:"v"`
}

func (f *tickerFeed) handleMessage(msg []byte) {
	var ev miniTickerEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		return
	}
	if ev.Event != "24hrMiniTicker" || !strings.EqualFold(ev.Symbol, f.symbol) {
		return
	}
	price, err := strconv.ParseFloat(ev.Close, 64)
	if err != nil || price <= 0 {
		return
	}
	vol := parseFloatOrZero(ev.Volume)
	t := exchange.Ticker{
		Symbol:    f.symbol,
		Price:     price,
		Open:      parseFloatOrZero(ev.Open),
		High:      parseFloatOrZero(ev.High),
		Low:       parseFloatOrZero(ev.Low),
		Volume24h: vol,
		Volume1h:  vol / 24,
		Bid:       price,
		Ask:       price,
		Timestamp: time.UnixMilli(ev.EventTime),
	}
	f.mu.Lock()
	f.last = t
	f.seen = time.Now()
	f.hasLast = true
	f.mu.Unlock()
}
