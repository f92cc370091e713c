package indicator

// RSI tracks per-step gains and losses over the last period price
// changes and maps their ratio onto a 0-100 scale.
type RSI struct {
	period  int
	gains   []float64
	losses  []float64
	prev    float64
	hasPrev bool
}

func NewRSI(period int) *RSI {
	return &RSI{
		period: period,
		gains:  make([]float64, 0, period),
		losses: make([]float64, 0, period),
	}
}

func (r *RSI) Update(price float64) {
	if r.hasPrev {
		change := price - r.prev
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		if len(r.gains) >= r.period {
			r.gains = r.gains[1:]
		}
		if len(r.losses) >= r.period {
			r.losses = r.losses[1:]
		}
		r.gains = append(r.gains, gain)
		r.losses = append(r.losses, loss)
	}
	r.prev = price
	r.hasPrev = true
}

func (r *RSI) Value() (float64, bool) {
	if len(r.gains) < r.period {
		return 0, false
	}
	var avgGain, avgLoss float64
	for _, g := range r.gains {
		avgGain += g
	}
	for _, l := range r.losses {
		avgLoss += l
	}
	avgGain /= float64(r.period)
	avgLoss /= float64(r.period)

	// All-gain windows saturate at 100 rather than dividing by zero.
	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

func (r *RSI) Reset() {
	r.gains = r.gains[:0]
	r.losses = r.losses[:0]
	r.hasPrev = false
}
