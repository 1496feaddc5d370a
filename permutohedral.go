package permutohedral

import (
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/permutohedral/internal/lattice"
)

// Float is the set of element types the filter operates on. The
// algorithm is identical for both widths; float64 trades throughput for
// a more faithful simplex rank ordering at large pd.
type Float interface {
	~float32 | ~float64
}

// Filter is a permutohedral lattice filter instance for a fixed
// geometry: pd position dimensions, vd accumulator channels (value
// channels plus one mass channel) and a fixed sample count. Lattice
// memory is allocated once at construction and reused across Filter
// calls; the instance is not safe for concurrent use, but independent
// instances with disjoint buffers are.
type Filter[T Float] struct {
	pd, vd, n int
	engine    Engine
	lat       *lattice.Lattice[T]
	logger    *Logger
	metrics   MetricsCollector
}

// New constructs a filter for numSamples samples with pd-dimensional
// positions and vd-1 value channels (vd includes the mass channel, so
// the minimum is 2). The lattice hash table is sized for
// numSamples*(pd+1) vertices with a doubled probe space.
func New[T Float](pd, vd, numSamples int, opts ...Option) (*Filter[T], error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	if pd < 1 {
		return nil, &ErrInvalidDimension{Name: "position dimension", Value: pd}
	}
	if vd < 2 {
		return nil, &ErrInvalidDimension{Name: "value dimension", Value: vd}
	}
	if numSamples < 1 {
		return nil, &ErrInvalidDimension{Name: "sample count", Value: numSamples}
	}

	metrics := o.metrics
	lat, err := lattice.New[T](pd, vd, numSamples, lattice.Options{
		Workers:         o.workers,
		GroupSize:       o.groupSize,
		ZeroOnEmptyMass: o.zeroMass == ZeroMassZero,
		Observe:         metrics.RecordPhase,
	})
	if err != nil {
		return nil, err
	}

	return &Filter[T]{
		pd:      pd,
		vd:      vd,
		n:       numSamples,
		engine:  o.engine,
		lat:     lat,
		logger:  o.logger,
		metrics: metrics,
	}, nil
}

// Filter runs the splat -> blur -> slice pipeline: in holds
// numSamples*(vd-1) value channels, positions numSamples*pd embedding
// coordinates, and out receives the filtered values in place. reverse
// flips the order of the blur passes; it does not change the per-pass
// stencil.
func (f *Filter[T]) Filter(out, in, positions []T, reverse bool) error {
	if len(positions) != f.n*f.pd {
		return &ErrDimensionMismatch{Buffer: "positions", Expected: f.n * f.pd, Actual: len(positions)}
	}
	if len(in) != f.n*(f.vd-1) {
		return &ErrDimensionMismatch{Buffer: "input", Expected: f.n * (f.vd - 1), Actual: len(in)}
	}
	if len(out) != len(in) {
		return &ErrDimensionMismatch{Buffer: "output", Expected: len(in), Actual: len(out)}
	}

	id := uuid.NewString()
	f.logger.Debug("lattice filter start",
		"invocation", id,
		"samples", f.n,
		"pd", f.pd,
		"vd", f.vd,
		"reverse", reverse,
		"engine", f.engine,
	)

	start := time.Now()
	var err error
	if f.engine == EngineReference {
		err = f.lat.FilterSequential(out, in, positions, reverse)
	} else {
		err = f.lat.Filter(out, in, positions, reverse)
	}
	f.metrics.RecordFilter(f.n, time.Since(start), err)

	if err != nil {
		f.logger.Error("lattice filter failed", "invocation", id, "error", err)
		return err
	}
	f.logger.Debug("lattice filter done",
		"invocation", id,
		"duration", time.Since(start),
		"occupied_vertices", f.lat.Stats().OccupiedVertices,
	)
	return nil
}

// Stats describes the filter geometry and, after a run, the lattice
// vertex occupancy.
type Stats struct {
	Samples          int
	PositionDims     int
	ValueDims        int
	Capacity         int
	ProbeSlots       int
	OccupiedVertices uint64
}

// Stats reports the lattice occupancy of the most recent run.
func (f *Filter[T]) Stats() Stats {
	s := f.lat.Stats()
	return Stats{
		Samples:          s.Samples,
		PositionDims:     s.PositionDims,
		ValueDims:        s.ValueDims,
		Capacity:         s.Capacity,
		ProbeSlots:       s.ProbeSlots,
		OccupiedVertices: s.OccupiedVertices,
	}
}
