package engine

import (
	"sync"
	"time"
)

// Tracker accumulates per-session trade outcomes. Counters only grow.
type Tracker struct {
	mu        sync.Mutex
	start     time.Time
	successes int
	failures  int
	volumeUSD float64
}

type TrackerSnapshot struct {
	Successes int
	Failures  int
	VolumeUSD float64
	Uptime    time.Duration
}

// Trades is the total number of attempted trades.
func (s TrackerSnapshot) Trades() int {
	return s.Successes + s.Failures
}

func NewTracker() *Tracker {
	return &Tracker{start: time.Now()}
}

// RecordTrade registers a successfully placed trade and its notional.
func (t *Tracker) RecordTrade(notionalUSD float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.successes++
	t.volumeUSD += notionalUSD
}

// RecordError registers a failed trading tick.
func (t *Tracker) RecordError() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures++
}

func (t *Tracker) Snapshot() TrackerSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TrackerSnapshot{
		Successes: t.successes,
		Failures:  t.failures,
		VolumeUSD: t.volumeUSD,
		Uptime:    time.Since(t.start),
	}
}
