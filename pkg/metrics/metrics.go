// Package metrics exposes prometheus counters for configuration resolution
// activity. Counters are registered once via promauto and are safe for
// concurrent use.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolutionsTotal counts per-role configuration resolutions
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamweave_config_resolutions_total",
			Help: "Total number of per-role configuration resolutions",
		},
		[]string{"role"},
	)

	// ConfigErrorsTotal counts configuration errors by error type
	ConfigErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamweave_config_errors_total",
			Help: "Total number of configuration errors",
		},
		[]string{"type"},
	)

	// SerdeInstantiationsTotal counts serde instantiations by role and outcome
	SerdeInstantiationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamweave_serde_instantiations_total",
			Help: "Total number of serde and extractor instantiations",
		},
		[]string{"role", "outcome"},
	)
)

// RecordResolution increments the resolution counter for a role
func RecordResolution(role string) {
	ResolutionsTotal.WithLabelValues(role).Inc()
}

// RecordConfigError increments the error counter for an error type
func RecordConfigError(errType string) {
	ConfigErrorsTotal.WithLabelValues(errType).Inc()
}

// RecordSerdeInstantiation increments the serde instantiation counter
func RecordSerdeInstantiation(role, outcome string) {
	SerdeInstantiationsTotal.WithLabelValues(role, outcome).Inc()
}
