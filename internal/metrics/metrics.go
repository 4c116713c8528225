// Package metrics instruments the run with Prometheus counters and
// histograms. There is no metrics server; a batch run dumps the registry to
// a text file at exit when asked to.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	propagationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fasteci_propagations_total",
			Help: "Total number of SGP4 propagations performed.",
		},
	)

	epochsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fasteci_epochs_total",
			Help: "Total number of reference epochs evaluated.",
		},
	)

	samplesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fasteci_samples_total",
			Help: "Total number of test offsets evaluated.",
		},
	)

	conversionSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "fasteci_conversion_seconds",
			Help: "Wall time of one inertial to Earth-fixed conversion.",
			// Sub-microsecond for the estimated path, up to milliseconds
			// for the exact path.
			Buckets: prometheus.ExponentialBuckets(1e-7, 4, 12),
		},
		[]string{"path"},
	)
)

func init() {
	prometheus.MustRegister(propagationsTotal)
	prometheus.MustRegister(epochsTotal)
	prometheus.MustRegister(samplesTotal)
	prometheus.MustRegister(conversionSeconds)
}

// RecordPropagation counts one SGP4 propagation.
func RecordPropagation() {
	propagationsTotal.Inc()
}

// RecordEpoch counts one evaluated reference epoch.
func RecordEpoch() {
	epochsTotal.Inc()
}

// RecordSample counts one evaluated offset and observes the wall time of
// both conversion paths.
func RecordSample(estimated, actual time.Duration) {
	samplesTotal.Inc()
	conversionSeconds.WithLabelValues("estimated").Observe(estimated.Seconds())
	conversionSeconds.WithLabelValues("actual").Observe(actual.Seconds())
}

// Dump writes every registered metric to path in the Prometheus text
// exposition format.
func Dump(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
