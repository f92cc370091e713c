// Package binance implements the exchange capability against the
// Binance spot REST API, with an optional websocket ticker feed.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"spot-breakout-bot/internal/config"
	"spot-breakout-bot/internal/exchange"
	"spot-breakout-bot/internal/pipeline"

	"go.uber.org/zap"
)

// Endpoint weights per the Binance API documentation.
const (
	weightPing    = 1
	weightTicker  = 2
	weightDepth   = 5
	weightAccount = 10
	weightOrder   = 1
)

type Client struct {
	baseURL string
	http    *http.Client
	signer  *signer
	limiter *limiter
	log     *zap.Logger
	feed    *tickerFeed
}

func New(cfg config.ExchangeConfig, apiKey, secret string, log *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		signer:  newSigner(apiKey, secret),
		limiter: newLimiter(nil),
		log:     log,
	}
}

// StartFeed begins streaming the symbol's ticker over websocket; while
// the stream is fresh, FetchTicker serves from it without a REST call.
func (c *Client) StartFeed(ctx context.Context, wsURL, symbol string) {
	c.feed = newTickerFeed(wsURL, symbol, c.log)
	go c.feed.run(ctx)
}

func (c *Client) CheckConnectivity(ctx context.Context) (int64, error) {
	start := time.Now()
	if _, err := c.get(ctx, "/api/v3/ping", nil, weightPing, false); err != nil {
		return 0, err
	}
	return time.Since(start).Milliseconds(), nil
}

func (c *Client) FetchTicker(ctx context.Context, symbol string) (exchange.Ticker, error) {
	if c.feed != nil {
		// The feed streams one symbol; other symbols go to REST.
		if t, ok := c.feed.latest(); ok && strings.EqualFold(t.Symbol, symbol) {
			return t, nil
		}
	}
	params := url.Values{"symbol": {symbol}}
	body, err := c.get(ctx, "/api/v3/ticker/24hr", params, weightTicker, false)
	if err != nil {
		return exchange.Ticker{}, err
	}
	var raw struct {
		Symbol    string `json:"symbol"`
		LastPrice string `json:"lastPrice"`
		Volume    string `json:"volume"`
		OpenPrice string `json:"openPrice"`
		HighPrice string `json:"highPrice"`
		LowPrice  string `json:"lowPrice"`
		BidPrice  string `json:"bidPrice"`
		AskPrice  string `json:"askPrice"`
		CloseTime int64  `json:"closeTime"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return exchange.Ticker{}, pipeline.Wrap(pipeline.KindExchange, "parse ticker", err)
	}
	price, err := parsePrice("lastPrice", raw.LastPrice)
	if err != nil {
		return exchange.Ticker{}, err
	}
	vol24 := parseFloatOrZero(raw.Volume)
	return exchange.Ticker{
		Symbol:    raw.Symbol,
		Price:     price,
		Volume24h: vol24,
		// The spot API publishes no hourly figure; an even split of the
		// 24h volume stands in for it.
		Volume1h:  vol24 / 24,
		Open:      parseFloatOrZero(raw.OpenPrice),
		High:      parseFloatOrZero(raw.HighPrice),
		Low:       parseFloatOrZero(raw.LowPrice),
		Bid:       parseFloatOrZero(raw.BidPrice),
		Ask:       parseFloatOrZero(raw.AskPrice),
		Timestamp: time.UnixMilli(raw.CloseTime),
	}, nil
}

func (c *Client) FetchOrderBook(ctx context.Context, symbol string, depth int) (exchange.OrderBook, error) {
	params := url.Values{
		"symbol": {symbol},
		"limit":  {strconv.Itoa(depth)},
	}
	body, err := c.get(ctx, "/api/v3/depth", params, weightDepth, false)
	if err != nil {
		return exchange.OrderBook{}, err
	}
	var raw struct {
		LastUpdateID uint64      `json:"lastUpdateId"`
		Bids         [][2]string `json:"bids"`
		Asks         [][2]string `json:"asks"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return exchange.OrderBook{}, pipeline.Wrap(pipeline.KindExchange, "parse depth", err)
	}
	book := exchange.OrderBook{Symbol: symbol, LastUpdateID: raw.LastUpdateID}
	for _, lvl := range raw.Bids {
		book.Bids = append(book.Bids, exchange.PriceLevel{
			Price:    parseFloatOrZero(lvl[0]),
			Quantity: parseFloatOrZero(lvl[1]),
		})
	}
	for _, lvl := range raw.Asks {
		book.Asks = append(book.Asks, exchange.PriceLevel{
			Price:    parseFloatOrZero(lvl[0]),
			Quantity: parseFloatOrZero(lvl[1]),
		})
	}
	return book, nil
}

func (c *Client) FetchBalance(ctx context.Context, asset string) (exchange.Balance, error) {
	body, err := c.get(ctx, "/api/v3/account", url.Values{}, weightAccount, true)
	if err != nil {
		return exchange.Balance{}, err
	}
	var raw struct {
		Balances []struct {
			Asset  string `json:"asset"`
			Free   string `json:"free"`
			Locked string `json:"locked"`
		} `json:"balances"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return exchange.Balance{}, pipeline.Wrap(pipeline.KindExchange, "parse account", err)
	}
	for _, b := range raw.Balances {
		if b.Asset == asset {
			return exchange.Balance{
				Asset:  asset,
				Free:   parseFloatOrZero(b.Free),
				Locked: parseFloatOrZero(b.Locked),
			}, nil
		}
	}
	return exchange.Balance{}, pipeline.Errorf(pipeline.KindExchange, "no balance for asset %s", asset)
}

func (c *Client) ExecuteOrder(ctx context.Context, symbol string, side exchange.Side, typ exchange.OrderType, qty, price float64) (string, error) {
	if qty <= 0 {
		return "", pipeline.E(pipeline.KindExchange, "order quantity must be positive")
	}
	if typ == exchange.OrderTypeLimit && price <= 0 {
		return "", pipeline.E(pipeline.KindExchange, "limit order requires a valid price")
	}
	params := url.Values{
		"symbol":   {symbol},
		"side":     {string(side)},
		"type":     {string(typ)},
		"quantity": {strconv.FormatFloat(qty, 'f', -1, 64)},
	}
	if typ == exchange.OrderTypeLimit {
		params.Set("price", strconv.FormatFloat(price, 'f', -1, 64))
		params.Set("timeInForce", "GTC")
	}
	body, err := c.post(ctx, "/api/v3/order", params, weightOrder)
	if err != nil {
		return "", err
	}
	var raw struct {
		OrderID       int64  `json:"orderId"`
		ClientOrderID string `json:"clientOrderId"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", pipeline.Wrap(pipeline.KindExchange, "parse order response", err)
	}
	if raw.OrderID == 0 {
		return "", pipeline.E(pipeline.KindExchange, "missing order id in response")
	}
	return strconv.FormatInt(raw.OrderID, 10), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, weight int, signed bool) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, params, weight, signed)
}

func (c *Client) post(ctx context.Context, path string, params url.Values, weight int) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, params, weight, true)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, weight int, signed bool) ([]byte, error) {
	if err := c.limiter.reserve(weight); err != nil {
		return nil, err
	}
	if params == nil {
		params = url.Values{}
	}
	query := params.Encode()
	if signed {
		params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
		query = params.Encode()
		// The signature covers the payload and is appended after it.
		query += "&signature=" + c.signer.sign(query)
	}
	reqURL := c.baseURL + path
	if query != "" {
		reqURL += "?" + query
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.KindInternal, "build request", err)
	}
	if signed {
		req.Header.Set("X-MBX-APIKEY", c.signer.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.KindNetwork, path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pipeline.Wrap(pipeline.KindNetwork, "read response", err)
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, pipeline.Errorf(pipeline.KindNetwork, "%s: http %d", path, resp.StatusCode)
	default:
		return nil, pipeline.Errorf(pipeline.KindExchange, "%s: http %d: %s", path, resp.StatusCode, string(body))
	}
}

func parsePrice(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, pipeline.Wrap(pipeline.KindExchange, fmt.Sprintf("parse %s %q", field, s), err)
	}
	return v, nil
}

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
