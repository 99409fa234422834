package metrics

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// ResolverMetrics tracks the provider fallback loop: how often each
// provider is tried, how attempts end, and how often a whole chain runs dry.
type ResolverMetrics struct {
	attemptDuration *prometheus.HistogramVec
	attemptOutcomes *prometheus.CounterVec
	chainExhausted  *prometheus.CounterVec
}

// NewResolverMetrics registers the resolver instruments on the default
// registry.
func NewResolverMetrics(cfg Config) (*ResolverMetrics, error) {
	return newResolverMetrics(prometheus.DefaultRegisterer, cfg)
}

func newResolverMetrics(registerer prometheus.Registerer, cfg Config) (*ResolverMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "panel"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	attemptDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "resolver_provider_attempt_duration_seconds",
			Help:        "Duration of a single provider deposit attempt.",
			ConstLabels: constLabels,
			Buckets:     []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)
	attemptOutcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "resolver_provider_attempts_total",
			Help:        "Provider deposit attempts by outcome (resolved or a failure kind).",
			ConstLabels: constLabels,
		},
		[]string{"provider", "outcome"},
	)
	chainExhausted := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "resolver_chain_exhausted_total",
			Help:        "Resolutions where every provider in the currency chain failed.",
			ConstLabels: constLabels,
		},
		[]string{"currency"},
	)

	for _, collector := range []prometheus.Collector{attemptDuration, attemptOutcomes, chainExhausted} {
		if err := registerer.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return nil, err
			}
		}
	}

	return &ResolverMetrics{
		attemptDuration: attemptDuration,
		attemptOutcomes: attemptOutcomes,
		chainExhausted:  chainExhausted,
	}, nil
}

func (m *ResolverMetrics) ObserveAttempt(provider, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.attemptDuration.WithLabelValues(provider).Observe(seconds)
	m.attemptOutcomes.WithLabelValues(provider, outcome).Inc()
}

func (m *ResolverMetrics) IncChainExhausted(currency string) {
	if m == nil {
		return
	}
	m.chainExhausted.WithLabelValues(currency).Inc()
}
