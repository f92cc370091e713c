package strategy

import (
	"fmt"

	"spot-breakout-bot/internal/config"
	"spot-breakout-bot/internal/exchange"
	"spot-breakout-bot/internal/indicator"
)

// Signal strengths are fixed confidence tiers per rule branch, not a
// continuous function of the inputs.
const (
	buyStrength  = 0.8
	sellStrength = 0.6

	rsiNeutral    = 50.0
	rsiOverbought = 70.0
)

// VolumeBreakout is a trend-following strategy gated on liquidity:
// a short/long moving-average cross qualified by RSI, evaluated only
// when 1-hour volume clears a configured threshold.
type VolumeBreakout struct {
	smaShort        *indicator.SMA
	smaLong         *indicator.SMA
	rsi             *indicator.RSI
	volumeThreshold float64
}

func NewVolumeBreakout(cfg config.StrategyConfig) *VolumeBreakout {
	return &VolumeBreakout{
		smaShort:        indicator.NewSMA(cfg.ShortPeriod),
		smaLong:         indicator.NewSMA(cfg.LongPeriod),
		rsi:             indicator.NewRSI(cfg.RSIPeriod),
		volumeThreshold: cfg.VolumeThreshold,
	}
}

// ProcessTick feeds one snapshot into the indicators and returns at most
// one signal. The boolean reports whether a signal fired; a false with a
// nil error is the normal "no decision this tick" outcome, distinct from
// a strategy fault.
func (s *VolumeBreakout) ProcessTick(t exchange.Ticker) (Signal, bool, error) {
	s.smaShort.Update(t.Price)
	s.smaLong.Update(t.Price)
	s.rsi.Update(t.Price)

	maShort, ok := s.smaShort.Value()
	if !ok {
		return Signal{}, false, nil
	}
	maLong, ok := s.smaLong.Value()
	if !ok {
		return Signal{}, false, nil
	}
	rsi, ok := s.rsi.Value()
	if !ok {
		return Signal{}, false, nil
	}

	if t.Volume1h < s.volumeThreshold {
		return Signal{}, false, nil
	}

	uptrend := maShort > maLong
	overbought := rsi > rsiOverbought

	switch {
	case uptrend && rsi > rsiNeutral && rsi < rsiOverbought:
		return Signal{
			Symbol:    t.Symbol,
			Side:      exchange.SideBuy,
			Strength:  buyStrength,
			Regime:    RegimeBullish,
			Timestamp: t.Timestamp,
			Reason:    fmt.Sprintf("golden cross (S:%.2f/L:%.2f) + vol %.0f", maShort, maLong, t.Volume1h),
		}, true, nil
	case !uptrend && overbought:
		return Signal{
			Symbol:    t.Symbol,
			Side:      exchange.SideSell,
			Strength:  sellStrength,
			Regime:    RegimeBearish,
			Timestamp: t.Timestamp,
			Reason:    fmt.Sprintf("bearish cross + overbought RSI %.2f", rsi),
		}, true, nil
	default:
		return Signal{}, false, nil
	}
}

// Reset clears all indicator history, e.g. after a long pause leaves the
// windows stale.
func (s *VolumeBreakout) Reset() {
	s.smaShort.Reset()
	s.smaLong.Reset()
	s.rsi.Reset()
}
