package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wastenot"

// Metrics holds the application's collectors on a private registry. A nil or
// disabled *Metrics accepts every call and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	donationsCreated prometheus.Counter
	donationsClaimed prometheus.Counter
	foodAnalyses     *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

func New(enabled bool) *Metrics {
	if !enabled {
		return &Metrics{}
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		donationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "donations_created_total",
			Help:      "Total number of donations created",
		}),
		donationsClaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "donations_claimed_total",
			Help:      "Total number of donations claimed",
		}),
		foodAnalyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "food_analyses_total",
			Help:      "Total number of food photo analyses by result",
		}, []string{"result"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.donationsCreated,
		m.donationsClaimed,
		m.foodAnalyses,
		m.requestDuration,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) RecordDonationCreated() {
	if m == nil || m.donationsCreated == nil {
		return
	}
	m.donationsCreated.Inc()
}

func (m *Metrics) RecordDonationClaimed() {
	if m == nil || m.donationsClaimed == nil {
		return
	}
	m.donationsClaimed.Inc()
}

// RecordFoodAnalysis counts an analysis outcome: "ok", "no_food" or "error".
func (m *Metrics) RecordFoodAnalysis(result string) {
	if m == nil || m.foodAnalyses == nil {
		return
	}
	m.foodAnalyses.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil || m.requestDuration == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
