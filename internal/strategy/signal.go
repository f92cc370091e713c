// Package strategy turns market snapshots into directional trading
// signals and sizes them under risk constraints.
package strategy

import (
	"time"

	"spot-breakout-bot/internal/exchange"
)

// Regime is a coarse market-condition label attached to a signal for
// auditability.
type Regime string

const (
	RegimeBullish  Regime = "BULLISH"
	RegimeBearish  Regime = "BEARISH"
	RegimeSideways Regime = "SIDEWAYS"
	RegimeVolatile Regime = "VOLATILE"
)

// Signal is a directional trading recommendation for one tick.
type Signal struct {
	Symbol    string
	Side      exchange.Side
	Strength  float64 // 0.0 to 1.0
	Regime    Regime
	Timestamp time.Time
	Reason    string
}

// TradeInstruction is a fully parameterized order ready for submission.
// StopLoss and TakeProfit are set together or not at all.
type TradeInstruction struct {
	Symbol        string
	Side          exchange.Side
	Amount        float64
	LimitPrice    float64
	StopLoss      float64
	TakeProfit    float64
	HasProtection bool
	ClientOrderID string
}
