package permutohedral

// Engine selects the execution model of a filter.
type Engine int

const (
	// EngineParallel runs every pipeline phase across multiple workers
	// with barriers at phase boundaries. This is the default.
	EngineParallel Engine = iota

	// EngineReference runs every phase on the calling goroutine in
	// sample and vertex order. It performs the same arithmetic as the
	// parallel engine and exists for cross-validation and debugging.
	EngineReference
)

// ZeroMassPolicy controls the slice-stage normalization of a sample
// whose simplex accumulated zero mass. Such samples cannot occur for
// well-formed positions (barycentric weights sum to 1), but degenerate
// inputs such as NaN positions can produce them.
type ZeroMassPolicy int

const (
	// ZeroMassPropagate performs the division regardless, propagating
	// the IEEE result (Inf or NaN) to the output. This matches the
	// divide semantics the algorithm has on typical float hardware and
	// keeps degenerate inputs visible. This is the default.
	ZeroMassPropagate ZeroMassPolicy = iota

	// ZeroMassZero clamps the affected sample's output channels to zero.
	ZeroMassZero
)

type options struct {
	logger    *Logger
	metrics   MetricsCollector
	workers   int
	groupSize int
	engine    Engine
	zeroMass  ZeroMassPolicy
}

func defaultOptions() options {
	return options{
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
	}
}

// Option configures filter construction behavior.
type Option func(*options)

// WithLogger configures structured logging for filter invocations.
// The default logger discards all output.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures per-invocation and per-phase metrics.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metrics = m
	}
}

// WithWorkers bounds the number of goroutines used within one pipeline
// phase. Values <= 0 select GOMAXPROCS. One worker degrades gracefully
// to sequential chunk processing while keeping the parallel engine's
// accumulation order.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithSplatGroupSize sets the number of samples a splat worker
// pre-aggregates locally before writing to the shared accumulators.
// Larger groups reduce lock traffic at the cost of per-worker scratch
// memory. Values <= 0 select the default of 256.
func WithSplatGroupSize(n int) Option {
	return func(o *options) {
		o.groupSize = n
	}
}

// WithEngine selects the execution model.
func WithEngine(e Engine) Option {
	return func(o *options) {
		o.engine = e
	}
}

// WithZeroMassPolicy sets the slice-stage behavior for samples whose
// simplex accumulated zero mass. See ZeroMassPolicy.
func WithZeroMassPolicy(p ZeroMassPolicy) Option {
	return func(o *options) {
		o.zeroMass = p
	}
}
