package strategy

import (
	"math"

	"spot-breakout-bot/internal/config"
	"spot-breakout-bot/internal/exchange"
	"spot-breakout-bot/internal/pipeline"
)

// Manager sizes positions with a fixed-fractional method: a configured
// fraction of free balance, scaled by signal strength, converted to
// quantity at the reference price.
type Manager struct {
	riskFraction   float64
	stopLossPct    float64
	minNotionalUSD float64
}

func NewManager(cfg config.RiskConfig) *Manager {
	return &Manager{
		riskFraction:   cfg.RiskFraction,
		stopLossPct:    cfg.StopLossPct,
		minNotionalUSD: cfg.MinNotionalUSD,
	}
}

// CalculateEntry validates the signal against the account balance and
// produces a trade instruction, or a risk-kind error. A successful
// instruction always has Amount > 0 and both protective levels set.
func (m *Manager) CalculateEntry(sig Signal, bal exchange.Balance, refPrice float64) (TradeInstruction, error) {
	if bal.Free <= 0 {
		return TradeInstruction{}, pipeline.E(pipeline.KindRisk, "insufficient free balance")
	}
	if refPrice <= 0 {
		return TradeInstruction{}, pipeline.Errorf(pipeline.KindRisk, "invalid reference price %.4f", refPrice)
	}

	riskCapital := bal.Free * m.riskFraction * sig.Strength
	if riskCapital < m.minNotionalUSD {
		return TradeInstruction{}, pipeline.Errorf(pipeline.KindRisk,
			"position size %.2f below exchange minimum %.2f", riskCapital, m.minNotionalUSD)
	}

	quantity := roundHalfUp(riskCapital/refPrice, 3)
	if quantity <= 0 {
		return TradeInstruction{}, pipeline.E(pipeline.KindRisk, "quantity rounded to zero")
	}

	// Fixed 1:2 risk/reward, mirrored by side.
	var stop, target float64
	switch sig.Side {
	case exchange.SideBuy:
		stop = refPrice * (1 - m.stopLossPct)
		target = refPrice * (1 + 2*m.stopLossPct)
	case exchange.SideSell:
		stop = refPrice * (1 + m.stopLossPct)
		target = refPrice * (1 - 2*m.stopLossPct)
	default:
		return TradeInstruction{}, pipeline.Errorf(pipeline.KindStrategy, "unknown order side %q", sig.Side)
	}

	return TradeInstruction{
		Symbol:        sig.Symbol,
		Side:          sig.Side,
		Amount:        quantity,
		LimitPrice:    refPrice,
		StopLoss:      stop,
		TakeProfit:    target,
		HasProtection: true,
	}, nil
}

func roundHalfUp(value float64, decimals int) float64 {
	factor := math.Pow10(decimals)
	return math.Round(value*factor) / factor
}
