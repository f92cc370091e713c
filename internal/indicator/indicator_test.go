package indicator

import (
	"math"
	"testing"
)

func TestSMANotReadyBeforeFullWindow(t *testing.T) {
	sma := NewSMA(3)
	sma.Update(1)
	sma.Update(2)
	if _, ok := sma.Value(); ok {
		t.Fatalf("value must be unavailable before %d updates", 3)
	}
}

func TestSMASlidingWindow(t *testing.T) {
	sma := NewSMA(3)
	for _, p := range []float64{1, 2, 3} {
		sma.Update(p)
	}
	v, ok := sma.Value()
	if !ok || v != 2 {
		t.Fatalf("expected 2, got %f (ok=%v)", v, ok)
	}
	// Oldest price evicted: mean of exactly the last 3.
	sma.Update(10)
	v, ok = sma.Value()
	if !ok || v != 5 {
		t.Fatalf("expected 5, got %f (ok=%v)", v, ok)
	}
}

func TestSMAReset(t *testing.T) {
	sma := NewSMA(2)
	sma.Update(1)
	sma.Update(2)
	sma.Reset()
	if _, ok := sma.Value(); ok {
		t.Fatalf("value must be unavailable after reset")
	}
}

func TestRSINotReadyDuringWarmup(t *testing.T) {
	rsi := NewRSI(14)
	// period+1 prices are needed: the first only seeds prev.
	for i := 0; i < 14; i++ {
		rsi.Update(float64(100 + i))
	}
	if _, ok := rsi.Value(); ok {
		t.Fatalf("value must be unavailable before window fills")
	}
	rsi.Update(115)
	if _, ok := rsi.Value(); !ok {
		t.Fatalf("value must be available after %d deltas", 14)
	}
}

func TestRSIAllGainsSaturates(t *testing.T) {
	rsi := NewRSI(14)
	for i := 0; i <= 20; i++ {
		rsi.Update(float64(100 + i))
	}
	v, ok := rsi.Value()
	if !ok || v != 100 {
		t.Fatalf("strictly rising prices must yield 100, got %f (ok=%v)", v, ok)
	}
}

func TestRSIAllLossesNearZero(t *testing.T) {
	rsi := NewRSI(14)
	for i := 0; i <= 20; i++ {
		rsi.Update(float64(200 - i))
	}
	v, ok := rsi.Value()
	if !ok || v != 0 {
		t.Fatalf("strictly falling prices must yield 0, got %f (ok=%v)", v, ok)
	}
}

func TestRSIBalancedMoves(t *testing.T) {
	rsi := NewRSI(4)
	for _, p := range []float64{100, 101, 100, 101, 100} {
		rsi.Update(p)
	}
	v, ok := rsi.Value()
	if !ok {
		t.Fatalf("expected value after window fills")
	}
	if math.Abs(v-50) > 1e-9 {
		t.Fatalf("equal gains and losses must yield 50, got %f", v)
	}
}

func TestRSIReset(t *testing.T) {
	rsi := NewRSI(2)
	for _, p := range []float64{1, 2, 3} {
		rsi.Update(p)
	}
	rsi.Reset()
	if _, ok := rsi.Value(); ok {
		t.Fatalf("value must be unavailable after reset")
	}
	// prev is cleared too; the next price only seeds it.
	rsi.Update(5)
	rsi.Update(6)
	rsi.Update(7)
	if _, ok := rsi.Value(); !ok {
		t.Fatalf("expected value after refilling window")
	}
}
