package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPrometheusCountersExposed(t *testing.T) {
	prom := NewPrometheus()
	prom.Metrics.Ticks.Inc()
	prom.Metrics.Ticks.Inc()
	prom.Metrics.SignalsEmitted.Inc()
	prom.Metrics.OrdersPlaced.Inc()
	prom.Metrics.OrdersFailed.Inc()
	prom.Metrics.RiskRejections.Inc()
	prom.Metrics.Pauses.Inc()

	rec := httptest.NewRecorder()
	prom.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		"spot_breakout_bot_ticks_total 2",
		"spot_breakout_bot_signals_emitted_total 1",
		"spot_breakout_bot_orders_placed_total 1",
		"spot_breakout_bot_orders_failed_total 1",
		"spot_breakout_bot_risk_rejections_total 1",
		"spot_breakout_bot_pauses_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestNoopMetricsDoNotPanic(t *testing.T) {
	m := NewNoop()
	m.Ticks.Inc()
	m.SignalsEmitted.Inc()
	m.OrdersPlaced.Inc()
	m.OrdersFailed.Inc()
	m.RiskRejections.Inc()
	m.Pauses.Inc()
}
