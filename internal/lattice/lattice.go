package lattice

import (
	"errors"
	"math"
	"runtime"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// Float is the set of element types the engine operates on. The lattice
// arithmetic is the same for both widths; float64 keeps a more faithful
// rank ordering when pd grows large.
type Float interface {
	~float32 | ~float64
}

// ErrCapacityOverflow is returned by New when the requested geometry
// cannot be addressed by the table's 32-bit slot indices.
var ErrCapacityOverflow = errors.New("lattice: capacity exceeds addressable slots")

const (
	// probeFactor sizes the open-addressing probe space relative to the
	// vertex capacity.
	probeFactor = 2

	defaultGroupSize = 256
)

// Options configures a Lattice. The zero value is valid: the worker
// count defaults to GOMAXPROCS and the splat group size to 256.
type Options struct {
	// Workers bounds the number of goroutines used within one parallel
	// phase.
	Workers int

	// GroupSize is the number of samples a splat worker pre-aggregates
	// locally before flushing to the shared accumulators.
	GroupSize int

	// ZeroOnEmptyMass clamps the sliced output of a sample whose
	// accumulated mass channel is zero. By default the IEEE division
	// result (Inf or NaN) propagates instead.
	ZeroOnEmptyMass bool

	// Observe, when non-nil, receives the wall-clock duration of each
	// pipeline phase ("embed", "coalesce", "splat", "blur", "slice").
	Observe func(phase string, d time.Duration)
}

// matrixEntry pairs one enclosing simplex vertex of a sample with the
// sample's barycentric weight for that vertex. Until the resolve step
// runs, index is a hash-table probe position; afterwards it is the
// canonical vertex slot.
type matrixEntry[T Float] struct {
	index  int32
	weight T
}

// Lattice is a permutohedral lattice filter instance for a fixed
// (pd, vd, n) geometry. It owns the hash table, the per-sample simplex
// matrix and the ping-pong accumulator buffers, all sized once at
// construction and reused across Filter calls.
//
// pd is the position dimensionality, vd the accumulator width (value
// channels plus one mass channel) and n the sample count. The vertex
// capacity is n*(pd+1): one candidate slot per (sample, simplex corner)
// pair, which is an upper bound on the number of distinct vertices.
type Lattice[T Float] struct {
	pd, vd, n int
	capacity  int

	// scale holds the per-axis elevation factors, canonical the
	// (pd+1)x(pd+1) reference simplex table. Both are derived from pd
	// alone and immutable after construction.
	scale     []T
	canonical []int16

	table  *hashTable
	matrix []matrixEntry[T]

	// values is read and newValues written during one blur round; the
	// two swap at round boundaries.
	values    []T
	newValues []T

	// occupied snapshots the canonical vertex slots after the resolve
	// barrier and drives blur iteration.
	occupied *roaring.Bitmap

	workers         int
	groupSize       int
	zeroOnEmptyMass bool
	observe         func(phase string, d time.Duration)
	stripes         accumStripes
}

// New allocates a lattice engine for the given geometry. pd, vd and n
// must already be validated by the caller; New only guards the capacity
// arithmetic itself.
func New[T Float](pd, vd, n int, opts Options) (*Lattice[T], error) {
	if n > (math.MaxInt32/probeFactor-1)/(pd+1) {
		return nil, ErrCapacityOverflow
	}
	capacity := n * (pd + 1)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	groupSize := opts.GroupSize
	if groupSize <= 0 {
		groupSize = defaultGroupSize
	}

	l := &Lattice[T]{
		pd:              pd,
		vd:              vd,
		n:               n,
		capacity:        capacity,
		scale:           elevationScale[T](pd),
		canonical:       canonicalSimplex(pd),
		table:           newHashTable(pd, capacity),
		matrix:          make([]matrixEntry[T], capacity),
		values:          make([]T, capacity*vd),
		newValues:       make([]T, capacity*vd),
		occupied:        roaring.New(),
		workers:         workers,
		groupSize:       groupSize,
		zeroOnEmptyMass: opts.ZeroOnEmptyMass,
		observe:         opts.Observe,
	}
	return l, nil
}

// elevationScale returns the closed-form per-axis scaling applied before
// elevation. The factors fold the simplex standard deviation into the
// basis change so that a unit Gaussian in position space maps to a unit
// Gaussian on the lattice.
func elevationScale[T Float](pd int) []T {
	inv := math.Sqrt(2.0/3.0) * float64(pd+1)
	scale := make([]T, pd)
	for i := range scale {
		scale[i] = T(inv / math.Sqrt(float64((i+1)*(i+2))))
	}
	return scale
}

// canonicalSimplex builds the (pd+1)x(pd+1) reference simplex table.
// Row r column k holds the offset added to a remainder-0 point along a
// coordinate of rank k to reach the corner with remainder r.
func canonicalSimplex(pd int) []int16 {
	canonical := make([]int16, (pd+1)*(pd+1))
	for i := 0; i <= pd; i++ {
		for j := 0; j <= pd-i; j++ {
			canonical[i*(pd+1)+j] = int16(i)
		}
		for j := pd - i + 1; j <= pd; j++ {
			canonical[i*(pd+1)+j] = int16(i - (pd + 1))
		}
	}
	return canonical
}

// Filter runs the full splat -> blur -> slice pipeline over positions and
// in, writing the filtered samples to out. Buffer lengths are the
// caller's responsibility: positions is n*pd, in and out are n*(vd-1).
//
// Each phase completes on every worker before the next phase starts; the
// per-phase parallel loops double as those barriers.
func (l *Lattice[T]) Filter(out, in, positions []T, reverse bool) error {
	l.reset()
	if err := l.runPhase("embed", func() error { return l.embed(positions) }); err != nil {
		return err
	}
	if err := l.runPhase("coalesce", l.coalescePass); err != nil {
		return err
	}
	if err := l.resolve(); err != nil {
		return err
	}
	if err := l.runPhase("splat", func() error { return l.splat(in) }); err != nil {
		return err
	}
	if err := l.runPhase("blur", func() error { return l.blur(reverse) }); err != nil {
		return err
	}
	return l.runPhase("slice", func() error { return l.slice(out) })
}

// reset returns the instance to its pre-embed state: accumulators zeroed
// and probe slots emptied. Key storage and the matrix need no clearing:
// the next embed rewrites both.
func (l *Lattice[T]) reset() {
	clear(l.values)
	clear(l.newValues)
	l.table.clear()
	l.occupied.Clear()
}

func (l *Lattice[T]) runPhase(name string, fn func() error) error {
	if l.observe == nil {
		return fn()
	}
	start := time.Now()
	err := fn()
	l.observe(name, time.Since(start))
	return err
}

// embed computes each sample's enclosing simplex and registers the
// pd+1 corner vertices in the hash table. Samples are independent;
// vertex deduplication happens inside the table's insert.
func (l *Lattice[T]) embed(positions []T) error {
	return l.parallelFor(l.n, func(start, end int) error {
		s := newSimplexScratch[T](l.pd)
		for i := start; i < end; i++ {
			l.computeSimplex(positions[i*l.pd:(i+1)*l.pd], s)
			base := i * (l.pd + 1)
			for r := 0; r <= l.pd; r++ {
				l.vertexKey(s, r)
				probe, err := l.table.insert(s.key, int32(base+r))
				if err != nil {
					return err
				}
				l.matrix[base+r] = matrixEntry[T]{index: probe, weight: s.barycentric[r]}
			}
		}
		return nil
	})
}

// coalescePass canonicalizes every occupied probe position after the
// embed barrier, converging duplicate owners created by insert races
// onto the earliest published owner of each key.
func (l *Lattice[T]) coalescePass() error {
	return l.parallelFor(len(l.table.entries), func(start, end int) error {
		for p := start; p < end; p++ {
			l.table.coalesce(p)
		}
		return nil
	})
}

// resolve rewrites the matrix probe positions to canonical vertex slots
// and snapshots the canonical slot set. A matrix entry owns its vertex
// exactly when its resolved slot equals its own index, i.e. the
// candidate slot it offered during insertion won.
func (l *Lattice[T]) resolve() error {
	err := l.parallelFor(l.capacity, func(start, end int) error {
		for i := start; i < end; i++ {
			l.matrix[i].index = l.table.slot(l.matrix[i].index)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for i := 0; i < l.capacity; i++ {
		if l.matrix[i].index == int32(i) {
			l.occupied.Add(uint32(i))
		}
	}
	return nil
}

// Stats describes the lattice geometry and, after a filter run, its
// vertex occupancy.
type Stats struct {
	Samples          int
	PositionDims     int
	ValueDims        int
	Capacity         int
	ProbeSlots       int
	OccupiedVertices uint64
}

// Stats reports the occupancy of the most recent filter run.
func (l *Lattice[T]) Stats() Stats {
	return Stats{
		Samples:          l.n,
		PositionDims:     l.pd,
		ValueDims:        l.vd,
		Capacity:         l.capacity,
		ProbeSlots:       len(l.table.entries),
		OccupiedVertices: l.occupied.GetCardinality(),
	}
}
