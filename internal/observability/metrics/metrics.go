// Package metrics exposes low-cardinality service metrics through the
// OpenTelemetry metric API, exported in Prometheus format.
package metrics

import (
	"strings"

	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"

	"github.com/I7ZT1/club-manager-panel/internal/config"
)

// Config carries the labels stamped onto every instrument.
type Config struct {
	ServiceName string
	Environment string
}

var sensitiveMetricKeys = []string{
	"card",
	"token",
	"secret",
	"api_key",
	"authorization",
}

// FilterAttributes drops attributes whose keys look like credentials or
// payer data. Metrics never carry requisites.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if isSensitiveMetricKey(string(attr.Key)) {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}

func isSensitiveMetricKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, needle := range sensitiveMetricKeys {
		if strings.Contains(key, needle) {
			return true
		}
	}
	return false
}

// NewMeterProvider builds a meter provider backed by the default
// Prometheus registry, scraped via the /metrics endpoint.
func NewMeterProvider() (metric.MeterProvider, error) {
	exporter, err := otelprom.New()
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)), nil
}

func newConfig(cfg config.Config) Config {
	return Config{
		ServiceName: "panel",
		Environment: cfg.Environment,
	}
}

var Module = fx.Module("metrics",
	fx.Provide(newConfig),
	fx.Provide(NewMeterProvider),
	fx.Provide(NewHTTPMetrics),
	fx.Provide(NewResolverMetrics),
)
