package pipeline

import (
	"errors"
	"testing"
)

func TestBindChains(t *testing.T) {
	r := Bind(Ok(10), func(x int) Result[int] { return Ok(x * 2) })
	r = Bind(r, func(x int) Result[int] { return Ok(x + 5) })
	v, err := r.Unwrap()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 25 {
		t.Fatalf("expected 25, got %d", v)
	}
}

func TestBindShortCircuits(t *testing.T) {
	called := false
	r := Bind(Ok(10), func(int) Result[int] { return Err[int](E(KindInternal, "broken chain")) })
	r = Bind(r, func(x int) Result[int] {
		called = true
		return Ok(x * 2)
	})
	if called {
		t.Fatalf("stage after failure must not execute")
	}
	if _, err := r.Unwrap(); KindOf(err) != KindInternal {
		t.Fatalf("expected internal kind, got %v", err)
	}
}

func TestMapShortCircuits(t *testing.T) {
	called := false
	r := Map(Err[int](E(KindNetwork, "down")), func(x int) int {
		called = true
		return x
	})
	if called {
		t.Fatalf("map after failure must not execute")
	}
	if _, err := r.Unwrap(); KindOf(err) != KindNetwork {
		t.Fatalf("expected network kind, got %v", err)
	}
}

func TestInspectDoesNotAlter(t *testing.T) {
	seen := 0
	v, err := Ok(7).Inspect(func(x int) { seen = x }).Unwrap()
	if err != nil || v != 7 {
		t.Fatalf("inspect altered result: %d %v", v, err)
	}
	if seen != 7 {
		t.Fatalf("inspect did not observe value")
	}
	ran := false
	Ok(7).InspectErr(func(error) { ran = true })
	if ran {
		t.Fatalf("inspect-err ran on success")
	}
}

func TestCatchRecovers(t *testing.T) {
	r := Err[int](E(KindNetwork, "timeout")).Catch(func(err error) Result[int] {
		if KindOf(err) != KindNetwork {
			t.Fatalf("expected network kind inside catch")
		}
		return Ok(1)
	})
	if v, err := r.Unwrap(); err != nil || v != 1 {
		t.Fatalf("catch did not recover: %d %v", v, err)
	}
	// Catch is skipped on success.
	r = Ok(2).Catch(func(error) Result[int] { return Ok(99) })
	if v, _ := r.Unwrap(); v != 2 {
		t.Fatalf("catch ran on success")
	}
}

func TestFilter(t *testing.T) {
	r := Ok(5).Filter(func(x int) bool { return x > 10 }, "too small")
	if _, err := r.Unwrap(); KindOf(err) != KindStrategy {
		t.Fatalf("expected strategy failure, got %v", err)
	}
	r = Ok(50).Filter(func(x int) bool { return x > 10 }, "too small")
	if !r.IsOk() {
		t.Fatalf("passing predicate must keep success")
	}
}

func TestZip(t *testing.T) {
	p, err := Zip(Ok(1), Ok("a")).Unwrap()
	if err != nil || p.First != 1 || p.Second != "a" {
		t.Fatalf("zip failed: %+v %v", p, err)
	}
	if _, err := Zip(Err[int](E(KindRisk, "no")), Ok("a")).Unwrap(); KindOf(err) != KindRisk {
		t.Fatalf("zip must surface first failure")
	}
}

func TestRetry(t *testing.T) {
	calls := 0
	r := Retry(3, 0, func() Result[int] {
		calls++
		if calls < 3 {
			return Err[int](E(KindNetwork, "flaky"))
		}
		return Ok(calls)
	})
	if v, err := r.Unwrap(); err != nil || v != 3 {
		t.Fatalf("retry did not succeed on third attempt: %d %v", v, err)
	}
	calls = 0
	r = Retry(2, 0, func() Result[int] {
		calls++
		return Err[int](E(KindNetwork, "flaky"))
	})
	if r.IsOk() || calls != 2 {
		t.Fatalf("retry must stop after attempts, calls=%d", calls)
	}
}

func TestNoSignalSentinelDistinct(t *testing.T) {
	r := Err[int](ErrNoSignal)
	_, err := r.Unwrap()
	if !errors.Is(err, ErrNoSignal) {
		t.Fatalf("expected no-signal sentinel")
	}
	if errors.Is(E(KindInternal, "no actionable signal"), ErrNoSignal) {
		t.Fatalf("internal error with matching text must not equal sentinel")
	}
}

func TestWrapAndKindOf(t *testing.T) {
	cause := errors.New("socket closed")
	err := Wrap(KindNetwork, "fetch ticker", cause)
	if KindOf(err) != KindNetwork {
		t.Fatalf("expected network kind")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("wrapped cause must be reachable")
	}
	if Wrap(KindNetwork, "noop", nil) != nil {
		t.Fatalf("wrapping nil must stay nil")
	}
}
