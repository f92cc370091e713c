package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can pick a recovery path
// without inspecting message text.
type Kind string

const (
	KindNetwork  Kind = "network"
	KindStrategy Kind = "strategy"
	KindExchange Kind = "exchange"
	KindRisk     Kind = "risk"
	KindConfig   Kind = "config"
	KindInternal Kind = "internal"
)

// ErrNoSignal marks a tick on which the strategy produced no actionable
// signal. It short-circuits the trading pipeline but is a non-event, not
// a fault; callers check it with errors.Is before counting failures.
var ErrNoSignal = errors.New("no actionable signal")

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a classified error.
func E(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Errorf builds a classified error with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the classification of err, or KindInternal when err
// carries none.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}
