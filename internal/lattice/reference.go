package lattice

// FilterSequential runs the full pipeline on the calling goroutine in
// strict sample and vertex order, with no synchronization primitives.
// It shares the per-sample and per-vertex arithmetic with the parallel
// engine (computeSimplex, vertexKey, blurVertex, sliceSample), so the
// two produce equivalent results; only the orchestration differs. Its
// purpose is cross-validation of the concurrent table and splat paths,
// and it doubles as a readable statement of the algorithm.
func (l *Lattice[T]) FilterSequential(out, in, positions []T, reverse bool) error {
	l.reset()

	// Embed. Inserts cannot race here, so every key resolves on first
	// touch and the parallel engine's coalescing pass degenerates to the
	// identity; it is folded into the resolve loop below.
	s := newSimplexScratch[T](l.pd)
	for i := 0; i < l.n; i++ {
		l.computeSimplex(positions[i*l.pd:(i+1)*l.pd], s)
		base := i * (l.pd + 1)
		for r := 0; r <= l.pd; r++ {
			l.vertexKey(s, r)
			probe, err := l.table.insertSeq(s.key, int32(base+r))
			if err != nil {
				return err
			}
			l.matrix[base+r] = matrixEntry[T]{index: probe, weight: s.barycentric[r]}
		}
	}

	// Resolve probe positions to canonical slots and snapshot occupancy.
	for i := 0; i < l.capacity; i++ {
		l.matrix[i].index = l.table.entries[l.matrix[i].index]
		if l.matrix[i].index == int32(i) {
			l.occupied.Add(uint32(i))
		}
	}

	// Splat.
	for i := 0; i < l.n; i++ {
		value := in[i*(l.vd-1) : (i+1)*(l.vd-1)]
		base := i * (l.pd + 1)
		for r := 0; r <= l.pd; r++ {
			m := l.matrix[base+r]
			vals := l.values[int(m.index)*l.vd : (int(m.index)+1)*l.vd]
			for j, v := range value {
				vals[j] += m.weight * v
			}
			vals[l.vd-1] += m.weight
		}
	}

	// Blur: pd+1 sequential rounds over the occupied vertices, ping-pong
	// swapped at every round boundary exactly like the parallel engine.
	slots := l.occupied.ToArray()
	np := make([]int16, l.pd)
	nm := make([]int16, l.pd)
	for round := 0; round <= l.pd; round++ {
		color := round
		if reverse {
			color = l.pd - round
		}
		for _, slot := range slots {
			l.blurVertex(int32(slot), color, np, nm, l.table.lookupSlotSeq)
		}
		l.values, l.newValues = l.newValues, l.values
	}

	// Slice.
	for i := 0; i < l.n; i++ {
		l.sliceSample(i, out)
	}
	return nil
}
