package indicator

// SMA is a simple moving average over the last period prices.
type SMA struct {
	period int
	window []float64
}

func NewSMA(period int) *SMA {
	return &SMA{period: period, window: make([]float64, 0, period)}
}

func (s *SMA) Update(price float64) {
	if len(s.window) >= s.period {
		s.window = s.window[1:]
	}
	s.window = append(s.window, price)
}

func (s *SMA) Value() (float64, bool) {
	if len(s.window) < s.period {
		return 0, false
	}
	sum := 0.0
	for _, p := range s.window {
		sum += p
	}
	return sum / float64(s.period), true
}

func (s *SMA) Reset() {
	s.window = s.window[:0]
}
