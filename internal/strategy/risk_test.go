package strategy

import (
	"math"
	"testing"

	"spot-breakout-bot/internal/config"
	"spot-breakout-bot/internal/exchange"
	"spot-breakout-bot/internal/pipeline"
)

func testRiskManager() *Manager {
	return NewManager(config.RiskConfig{
		RiskFraction:   0.02,
		StopLossPct:    0.015,
		MinNotionalUSD: 10,
	})
}

func buySignal(strength float64) Signal {
	return Signal{Symbol: "BTCUSDT", Side: exchange.SideBuy, Strength: strength}
}

func TestCalculateEntryRejectsEmptyBalance(t *testing.T) {
	m := testRiskManager()
	_, err := m.CalculateEntry(buySignal(0.8), exchange.Balance{Asset: "USDT", Free: 0}, 100)
	if err == nil {
		t.Fatalf("expected risk violation for zero balance")
	}
	if pipeline.KindOf(err) != pipeline.KindRisk {
		t.Fatalf("expected risk kind, got %v", err)
	}
}

func TestCalculateEntryRejectsDust(t *testing.T) {
	m := testRiskManager()
	// 100 * 0.02 * 0.8 = 1.6 USD, below the 10 USD floor.
	_, err := m.CalculateEntry(buySignal(0.8), exchange.Balance{Asset: "USDT", Free: 100}, 100)
	if err == nil {
		t.Fatalf("expected risk violation for dust trade")
	}
	if pipeline.KindOf(err) != pipeline.KindRisk {
		t.Fatalf("expected risk kind, got %v", err)
	}
}

func TestCalculateEntryBuyLevels(t *testing.T) {
	m := testRiskManager()
	instr, err := m.CalculateEntry(buySignal(0.8), exchange.Balance{Asset: "USDT", Free: 50000}, 100)
	if err != nil {
		t.Fatalf("calculate entry: %v", err)
	}
	// 50000 * 0.02 * 0.8 = 800 risk capital, 8 units at price 100.
	if instr.Amount != 8 {
		t.Fatalf("expected amount 8, got %v", instr.Amount)
	}
	if instr.LimitPrice != 100 {
		t.Fatalf("expected limit at reference price, got %v", instr.LimitPrice)
	}
	if !instr.HasProtection {
		t.Fatalf("expected protective levels on success")
	}
	if math.Abs(instr.StopLoss-98.5) > 1e-9 {
		t.Fatalf("expected stop 98.5, got %v", instr.StopLoss)
	}
	if math.Abs(instr.TakeProfit-103.0) > 1e-9 {
		t.Fatalf("expected target 103.0, got %v", instr.TakeProfit)
	}
}

func TestCalculateEntrySellLevelsMirrored(t *testing.T) {
	m := testRiskManager()
	sig := Signal{Symbol: "BTCUSDT", Side: exchange.SideSell, Strength: 0.6}
	instr, err := m.CalculateEntry(sig, exchange.Balance{Asset: "USDT", Free: 50000}, 200)
	if err != nil {
		t.Fatalf("calculate entry: %v", err)
	}
	if math.Abs(instr.StopLoss-203.0) > 1e-9 {
		t.Fatalf("expected stop above price for sell, got %v", instr.StopLoss)
	}
	if math.Abs(instr.TakeProfit-194.0) > 1e-9 {
		t.Fatalf("expected target below price for sell, got %v", instr.TakeProfit)
	}
}

func TestCalculateEntryRoundsQuantity(t *testing.T) {
	m := testRiskManager()
	// 50000 * 0.02 * 0.8 = 800; 800 / 2999 = 0.26675... rounds half-up
	// at the third decimal to 0.267.
	instr, err := m.CalculateEntry(buySignal(0.8), exchange.Balance{Asset: "USDT", Free: 50000}, 2999)
	if err != nil {
		t.Fatalf("calculate entry: %v", err)
	}
	if instr.Amount != 0.267 {
		t.Fatalf("expected 0.267, got %v", instr.Amount)
	}
}

func TestCalculateEntryRejectsBadPrice(t *testing.T) {
	m := testRiskManager()
	if _, err := m.CalculateEntry(buySignal(0.8), exchange.Balance{Asset: "USDT", Free: 50000}, 0); err == nil {
		t.Fatalf("expected risk violation for zero price")
	}
}

func TestCalculateEntryScenario(t *testing.T) {
	// End-to-end numbers: balance 50000, fraction 0.02, strength 0.8,
	// price 2000 -> capital 800, quantity 0.4, stop 1970, target 2060.
	m := testRiskManager()
	instr, err := m.CalculateEntry(buySignal(0.8), exchange.Balance{Asset: "USDT", Free: 50000}, 2000)
	if err != nil {
		t.Fatalf("calculate entry: %v", err)
	}
	if instr.Amount != 0.4 {
		t.Fatalf("expected 0.4, got %v", instr.Amount)
	}
	if math.Abs(instr.StopLoss-1970) > 1e-9 {
		t.Fatalf("expected stop 1970, got %v", instr.StopLoss)
	}
	if math.Abs(instr.TakeProfit-2060) > 1e-9 {
		t.Fatalf("expected target 2060, got %v", instr.TakeProfit)
	}
}
