// Package pipeline provides the success/failure container the trading
// engine composes its per-tick flow with. A Result holds exactly one of
// a value or an error; once failed, no later stage in a chain executes
// unless it is an explicit recovery.
package pipeline

import "time"

type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a value in a successful Result.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err wraps an error in a failed Result.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// From lifts an ordinary (value, error) pair into a Result.
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(v)
}

func (r Result[T]) IsOk() bool { return r.err == nil }

// Unwrap returns the value and error, whichever is populated.
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.err
}

// Bind chains f onto a successful result; a failure passes through
// untouched and f is never called. This is the sole branching primitive.
func Bind[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return f(r.value)
}

// Map transforms the value of a successful result; f itself cannot fail.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return Ok(f(r.value))
}

// Inspect runs a side effect on a successful value without altering it.
func (r Result[T]) Inspect(f func(T)) Result[T] {
	if r.err == nil {
		f(r.value)
	}
	return r
}

// InspectErr runs a side effect on a failure without altering it.
func (r Result[T]) InspectErr(f func(error)) Result[T] {
	if r.err != nil {
		f(r.err)
	}
	return r
}

// Catch recovers from a failure; a success passes through untouched.
func (r Result[T]) Catch(f func(error) Result[T]) Result[T] {
	if r.err != nil {
		return f(r.err)
	}
	return r
}

// Filter converts a success into a strategy failure when pred rejects it.
func (r Result[T]) Filter(pred func(T) bool, msg string) Result[T] {
	if r.err != nil {
		return r
	}
	if !pred(r.value) {
		return Err[T](E(KindStrategy, msg))
	}
	return r
}

// Pair carries two values through a chain stage.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Zip combines two results, failing on the first failure encountered.
func Zip[A, B any](a Result[A], b Result[B]) Result[Pair[A, B]] {
	if a.err != nil {
		return Err[Pair[A, B]](a.err)
	}
	if b.err != nil {
		return Err[Pair[A, B]](b.err)
	}
	return Ok(Pair[A, B]{First: a.value, Second: b.value})
}

// Retry re-runs fn up to attempts times, sleeping delay between tries.
// The last failure is returned when all attempts are exhausted.
func Retry[T any](attempts int, delay time.Duration, fn func() Result[T]) Result[T] {
	var last Result[T]
	for i := 0; i < attempts; i++ {
		last = fn()
		if last.err == nil {
			return last
		}
		if i < attempts-1 && delay > 0 {
			time.Sleep(delay)
		}
	}
	return last
}
