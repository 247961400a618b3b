package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"chemlab/internal/chemistry"
)

type metrics struct {
	simulations *prometheus.CounterVec
	inputErrors prometheus.Counter
	requests    *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chemlab",
			Name:      "simulations_total",
			Help:      "Completed simulations by primary reaction type.",
		}, []string{"reaction_type"}),
		inputErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chemlab",
			Name:      "simulation_input_errors_total",
			Help:      "Simulation requests rejected as invalid input.",
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chemlab",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
	reg.MustRegister(m.simulations, m.inputErrors, m.requests)
	return m
}

func (m *metrics) observeSimulation(t chemistry.ReactionType) {
	m.simulations.WithLabelValues(string(t)).Inc()
}

func (m *metrics) observeInputError() {
	m.inputErrors.Inc()
}

func (m *metrics) observeRequest(route, method string, status int, d time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}
