package permutohedral

import "time"

// MetricsCollector defines an interface for collecting operational
// metrics. Implement this interface to integrate with monitoring systems
// like Prometheus.
type MetricsCollector interface {
	// RecordFilter is called after each filter invocation. numSamples is
	// the sample count of the run, duration the total wall-clock time,
	// err nil if successful.
	RecordFilter(numSamples int, duration time.Duration, err error)

	// RecordPhase is called after each pipeline phase of a filter
	// invocation ("embed", "coalesce", "splat", "blur", "slice").
	RecordPhase(phase string, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFilter(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordPhase(string, time.Duration)      {}
