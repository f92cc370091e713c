package metrics

type Counter interface {
	Inc()
}

type Metrics struct {
	Ticks          Counter
	SignalsEmitted Counter
	OrdersPlaced   Counter
	OrdersFailed   Counter
	RiskRejections Counter
	Pauses         Counter
}

type noopCounter struct{}

func (noopCounter) Inc() {}

func NewNoop() *Metrics {
	n := noopCounter{}
	return &Metrics{
		Ticks:          n,
		SignalsEmitted: n,
		OrdersPlaced:   n,
		OrdersFailed:   n,
		RiskRejections: n,
		Pauses:         n,
	}
}
