package lattice

import "sync"

// numStripes is the number of mutexes guarding the shared accumulators
// during the splat phase. Slots map onto stripes by their low bits.
const numStripes = 64

type accumStripes struct {
	mu [numStripes]sync.Mutex
}

func (s *accumStripes) lock(slot int32)   { s.mu[int(slot)&(numStripes-1)].Lock() }
func (s *accumStripes) unlock(slot int32) { s.mu[int(slot)&(numStripes-1)].Unlock() }

// splatGroup pre-aggregates the contributions of one bounded group of
// samples, keyed by resolved vertex slot, before anything touches the
// shared accumulators. A group belongs to exactly one worker, so the
// aggregation itself needs no synchronization and the flush issues one
// locked write per distinct slot, not one per (sample, corner) pair.
type splatGroup[T Float] struct {
	vd    int
	slots map[int32]int
	vals  []T
}

func newSplatGroup[T Float](vd, groupSize int) *splatGroup[T] {
	return &splatGroup[T]{
		vd:    vd,
		slots: make(map[int32]int, groupSize),
		vals:  make([]T, 0, groupSize*vd),
	}
}

// add folds one weighted sample contribution into the group accumulator
// for slot. The mass channel receives the bare weight.
func (g *splatGroup[T]) add(slot int32, weight T, value []T) {
	idx, ok := g.slots[slot]
	if !ok {
		idx = len(g.slots)
		g.slots[slot] = idx
		g.vals = append(g.vals, make([]T, g.vd)...)
	}
	local := g.vals[idx*g.vd : (idx+1)*g.vd]
	for j, v := range value {
		local[j] += weight * v
	}
	local[g.vd-1] += weight
}

// flush adds the group totals into the shared accumulators, one striped
// lock acquisition per distinct slot, then resets the group.
func (g *splatGroup[T]) flush(values []T, stripes *accumStripes) {
	for slot, idx := range g.slots {
		local := g.vals[idx*g.vd : (idx+1)*g.vd]
		base := int(slot) * g.vd
		stripes.lock(slot)
		for j, v := range local {
			values[base+j] += v
		}
		stripes.unlock(slot)
	}
	clear(g.slots)
	g.vals = g.vals[:0]
}

// splat scatters every sample's value channels, weighted by barycentric
// coordinate, onto the sample's pd+1 resolved vertices. Contributions
// are pre-aggregated in bounded groups to keep contention on any single
// vertex low while preserving exact per-slot sums.
func (l *Lattice[T]) splat(in []T) error {
	return l.parallelFor(l.n, func(start, end int) error {
		g := newSplatGroup[T](l.vd, l.groupSize)
		for i := start; i < end; i++ {
			value := in[i*(l.vd-1) : (i+1)*(l.vd-1)]
			base := i * (l.pd + 1)
			for r := 0; r <= l.pd; r++ {
				m := l.matrix[base+r]
				g.add(m.index, m.weight, value)
			}
			if (i+1-start)%l.groupSize == 0 {
				g.flush(l.values, &l.stripes)
			}
		}
		g.flush(l.values, &l.stripes)
		return nil
	})
}
