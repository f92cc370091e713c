package exec

import (
	"context"
	"testing"

	"spot-breakout-bot/internal/exchange"
	"spot-breakout-bot/internal/pipeline"
	"spot-breakout-bot/internal/state"
	"spot-breakout-bot/internal/strategy"

	"go.uber.org/zap"
)

type fakeClient struct {
	calls   int
	fail    []error // error to return per call, nil = success
	lastTyp exchange.OrderType
}

func (f *fakeClient) CheckConnectivity(context.Context) (int64, error) { return 1, nil }
func (f *fakeClient) FetchTicker(context.Context, string) (exchange.Ticker, error) {
	return exchange.Ticker{}, nil
}
func (f *fakeClient) FetchOrderBook(context.Context, string, int) (exchange.OrderBook, error) {
	return exchange.OrderBook{}, nil
}
func (f *fakeClient) FetchBalance(context.Context, string) (exchange.Balance, error) {
	return exchange.Balance{}, nil
}

func (f *fakeClient) ExecuteOrder(_ context.Context, _ string, _ exchange.Side, typ exchange.OrderType, _, _ float64) (string, error) {
	f.lastTyp = typ
	idx := f.calls
	f.calls++
	if idx < len(f.fail) && f.fail[idx] != nil {
		return "", f.fail[idx]
	}
	return "ORD-1", nil
}

func instruction(cloid string) strategy.TradeInstruction {
	return strategy.TradeInstruction{
		Symbol:        "BTCUSDT",
		Side:          exchange.SideBuy,
		Amount:        0.4,
		LimitPrice:    2000,
		ClientOrderID: cloid,
	}
}

func TestSubmitPlacesLimitOrder(t *testing.T) {
	client := &fakeClient{}
	e := New(client, state.NewMemory(), zap.NewNop())
	oid, err := e.Submit(context.Background(), instruction("t1"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if oid != "ORD-1" {
		t.Fatalf("expected ORD-1, got %q", oid)
	}
	if client.lastTyp != exchange.OrderTypeLimit {
		t.Fatalf("expected limit order, got %s", client.lastTyp)
	}
}

func TestSubmitMarketWhenNoLimitPrice(t *testing.T) {
	client := &fakeClient{}
	e := New(client, nil, zap.NewNop())
	instr := instruction("")
	instr.LimitPrice = 0
	if _, err := e.Submit(context.Background(), instr); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if client.lastTyp != exchange.OrderTypeMarket {
		t.Fatalf("expected market order, got %s", client.lastTyp)
	}
}

func TestSubmitDeduplicatesByClientOrderID(t *testing.T) {
	client := &fakeClient{}
	store := state.NewMemory()
	e := New(client, store, zap.NewNop())
	ctx := context.Background()
	if _, err := e.Submit(ctx, instruction("dup")); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := e.Submit(ctx, instruction("dup")); err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("expected a single exchange call, got %d", client.calls)
	}

	// A fresh executor sharing the store must also dedupe.
	client2 := &fakeClient{}
	e2 := New(client2, store, zap.NewNop())
	oid, err := e2.Submit(ctx, instruction("dup"))
	if err != nil {
		t.Fatalf("replayed submit: %v", err)
	}
	if oid != "ORD-1" || client2.calls != 0 {
		t.Fatalf("expected stored order id without exchange call, got %q calls=%d", oid, client2.calls)
	}
}

func TestSubmitRetriesNetworkErrors(t *testing.T) {
	client := &fakeClient{fail: []error{pipeline.E(pipeline.KindNetwork, "timeout")}}
	e := New(client, nil, zap.NewNop())
	oid, err := e.Submit(context.Background(), instruction(""))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if oid != "ORD-1" || client.calls != 2 {
		t.Fatalf("expected success on second attempt, got %q calls=%d", oid, client.calls)
	}
}

func TestSubmitDoesNotRetryExchangeRejections(t *testing.T) {
	client := &fakeClient{fail: []error{pipeline.E(pipeline.KindExchange, "rejected")}}
	e := New(client, nil, zap.NewNop())
	if _, err := e.Submit(context.Background(), instruction("")); err == nil {
		t.Fatalf("expected rejection to surface")
	}
	if client.calls != 1 {
		t.Fatalf("rejection must not be retried, got %d calls", client.calls)
	}
}

func TestSubmitRejectsNonPositiveAmount(t *testing.T) {
	e := New(&fakeClient{}, nil, zap.NewNop())
	instr := instruction("")
	instr.Amount = 0
	_, err := e.Submit(context.Background(), instr)
	if err == nil {
		t.Fatalf("expected error for zero amount")
	}
	if pipeline.KindOf(err) != pipeline.KindExchange {
		t.Fatalf("expected exchange kind, got %v", err)
	}
}
