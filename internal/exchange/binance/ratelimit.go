package binance

import (
	"sync"
	"time"

	"spot-breakout-bot/internal/pipeline"
)

// weightBudget is the standard request-weight allowance per minute.
const weightBudget = 1200

// limiter tracks request weight inside a rolling one-minute window.
// The bot is single-threaded per tick, but the websocket feed and a
// report scheduler may touch the client concurrently.
type limiter struct {
	mu          sync.Mutex
	windowStart time.Time
	used        int
	now         func() time.Time
}

func newLimiter(now func() time.Time) *limiter {
	if now == nil {
		now = time.Now
	}
	return &limiter{now: now}
}

func (l *limiter) reserve(weight int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := l.now()
	if t.Sub(l.windowStart) >= time.Minute {
		l.windowStart = t
		l.used = 0
	}
	if l.used+weight > weightBudget {
		return pipeline.E(pipeline.KindNetwork, "rate limit exceeded")
	}
	l.used += weight
	return nil
}
