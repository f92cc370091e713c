package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promNamespace = "spot_breakout_bot"

type promCounter struct {
	counter prometheus.Counter
}

func (p promCounter) Inc() {
	p.counter.Inc()
}

type Prometheus struct {
	Metrics *Metrics

	registry *prometheus.Registry
}

func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()
	ticks := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "ticks_total",
		Help:      "Total number of engine ticks executed.",
	})
	signals := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "signals_emitted_total",
		Help:      "Total number of trading signals emitted by the strategy.",
	})
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "orders_placed_total",
		Help:      "Total number of orders placed.",
	})
	ordersFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "orders_failed_total",
		Help:      "Total number of failed trading attempts.",
	})
	riskRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "risk_rejections_total",
		Help:      "Total number of signals rejected by the risk manager.",
	})
	pauses := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "pauses_total",
		Help:      "Total number of transitions into the paused state.",
	})

	registry.MustRegister(ticks, signals, ordersPlaced, ordersFailed, riskRejections, pauses)

	return &Prometheus{
		Metrics: &Metrics{
			Ticks:          promCounter{ticks},
			SignalsEmitted: promCounter{signals},
			OrdersPlaced:   promCounter{ordersPlaced},
			OrdersFailed:   promCounter{ordersFailed},
			RiskRejections: promCounter{riskRejections},
			Pauses:         promCounter{pauses},
		},
		registry: registry,
	}
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
