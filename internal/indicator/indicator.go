// Package indicator implements streaming technical indicators over a
// price feed. Each indicator consumes one price per tick and exposes a
// derived value only once its window has filled.
package indicator

type Indicator interface {
	Update(price float64)
	// Value returns the derived value and whether enough history has
	// accumulated to compute it.
	Value() (float64, bool)
	Reset()
}
