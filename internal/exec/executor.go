// Package exec submits trade instructions to the exchange with
// duplicate-submit protection and bounded retry.
package exec

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"spot-breakout-bot/internal/exchange"
	"spot-breakout-bot/internal/pipeline"
	"spot-breakout-bot/internal/state"
	"spot-breakout-bot/internal/strategy"

	"go.uber.org/zap"
)

const (
	maxAttempts    = 5
	initialBackoff = 200 * time.Millisecond
)

type Executor struct {
	client exchange.Client
	store  state.Store
	log    *zap.Logger

	mu    sync.Mutex
	cache map[string]string
}

func New(client exchange.Client, store state.Store, log *zap.Logger) *Executor {
	return &Executor{
		client: client,
		store:  store,
		log:    log,
		cache:  make(map[string]string),
	}
}

// Submit places the instruction and returns the venue order id. When the
// instruction carries a client order id, a previously recorded submission
// under the same id is returned instead of placing a duplicate.
func (e *Executor) Submit(ctx context.Context, instr strategy.TradeInstruction) (string, error) {
	if instr.Amount <= 0 {
		return "", pipeline.E(pipeline.KindExchange, "order quantity must be positive")
	}
	if instr.ClientOrderID == "" {
		return e.placeWithRetry(ctx, instr)
	}
	cacheKey := "cloid:" + instr.ClientOrderID
	e.mu.Lock()
	if oid, ok := e.cache[cacheKey]; ok {
		e.mu.Unlock()
		return oid, nil
	}
	e.mu.Unlock()
	if e.store != nil {
		if oid, ok, err := e.store.Get(ctx, cacheKey); err != nil {
			return "", err
		} else if ok {
			e.remember(cacheKey, oid)
			return oid, nil
		}
	}
	orderID, err := e.placeWithRetry(ctx, instr)
	if err != nil {
		return "", err
	}
	if e.store != nil {
		if err := e.store.Set(ctx, cacheKey, orderID); err != nil {
			e.log.Warn("failed to persist order id", zap.Error(err))
		}
	}
	e.remember(cacheKey, orderID)
	return orderID, nil
}

func (e *Executor) remember(key, orderID string) {
	e.mu.Lock()
	e.cache[key] = orderID
	e.mu.Unlock()
}

func (e *Executor) placeWithRetry(ctx context.Context, instr strategy.TradeInstruction) (string, error) {
	typ := exchange.OrderTypeMarket
	if instr.LimitPrice > 0 {
		typ = exchange.OrderTypeLimit
	}
	backoff := initialBackoff
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		orderID, err := e.client.ExecuteOrder(ctx, instr.Symbol, instr.Side, typ, instr.Amount, instr.LimitPrice)
		if err == nil {
			if orderID == "" {
				return "", errors.New("empty order id from exchange")
			}
			return orderID, nil
		}
		lastErr = err
		// Only transient connectivity faults are worth retrying;
		// an exchange rejection will not change on resubmission.
		if pipeline.KindOf(err) != pipeline.KindNetwork {
			return "", err
		}
		if attempt == maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}
	return "", fmt.Errorf("order submission exhausted %d attempts: %w", maxAttempts, lastErr)
}
