package planning

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ElCzar/secchub-planning/internal/logging"
	"github.com/ElCzar/secchub-planning/internal/metrics"
)

// NewSlogLogger wraps a *slog.Logger as a planning Logger.
//
// Parameters:
//   - logger: Standard library structured logger
//
// Returns:
//   - Logger: Adapter suitable for WithLogger
func NewSlogLogger(logger *slog.Logger) Logger {
	return logging.NewSlog(logger)
}

// NewPrometheusMetrics creates a MetricsCollector backed by Prometheus.
//
// All collectors are registered with reg under the given namespace.
//
// Parameters:
//   - reg: Prometheus registerer (e.g. prometheus.DefaultRegisterer)
//   - namespace: Metric name prefix (e.g. "secchub")
//
// Returns:
//   - MetricsCollector: Collector suitable for WithMetrics
//   - error: Registration error (e.g., duplicate registration)
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) (MetricsCollector, error) {
	return metrics.NewPrometheus(reg, namespace)
}
