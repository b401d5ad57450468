package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of one server.
type Metrics struct {
	registry *prometheus.Registry

	Requests   *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Backtests  *prometheus.CounterVec
	Candidates prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statarb_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statarb_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"route"},
		),
		Backtests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statarb_backtests_total",
				Help: "Backtests run by outcome",
			},
			[]string{"result"},
		),
		Candidates: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "statarb_screen_candidates",
				Help: "Pairs kept by the most recent screen",
			},
		),
	}
	m.registry.MustRegister(
		m.Requests,
		m.Duration,
		m.Backtests,
		m.Candidates,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
