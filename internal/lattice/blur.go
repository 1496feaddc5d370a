package lattice

// blur runs pd+1 diffusion rounds, one per lattice color. Rounds are
// strictly sequential: round r+1 reads the buffer round r wrote, so the
// ping-pong swap at each round boundary is the data dependency, not an
// optimization. The reverse flag only flips the color iteration order.
func (l *Lattice[T]) blur(reverse bool) error {
	slots := l.occupied.ToArray()
	for round := 0; round <= l.pd; round++ {
		color := round
		if reverse {
			color = l.pd - round
		}
		err := l.parallelFor(len(slots), func(start, end int) error {
			np := make([]int16, l.pd)
			nm := make([]int16, l.pd)
			for si := start; si < end; si++ {
				l.blurVertex(int32(slots[si]), color, np, nm, l.table.lookupSlot)
			}
			return nil
		})
		if err != nil {
			return err
		}
		l.values, l.newValues = l.newValues, l.values
	}
	return nil
}

// blurVertex applies the 3-point stencil along the color axis to one
// canonical vertex, writing into the back buffer. A missing neighbor is
// a lattice boundary and contributes zero. lookup abstracts the table
// path so the sequential engine can reuse the stencil unchanged.
func (l *Lattice[T]) blurVertex(slot int32, color int, np, nm []int16, lookup func([]int16) int32) {
	key := l.table.key(slot)
	for i := 0; i < l.pd; i++ {
		np[i] = key[i] + 1
		nm[i] = key[i] - 1
	}
	// The neighbor step adds 1 everywhere and pulls the color axis back
	// by pd+1 to stay on the zero-sum lattice. color == pd addresses the
	// implicit coordinate, which is not stored.
	if color < l.pd {
		np[color] -= int16(l.pd + 1)
		nm[color] += int16(l.pd + 1)
	}

	base := int(slot) * l.vd
	self := l.values[base : base+l.vd]
	out := l.newValues[base : base+l.vd]

	prev := lookup(nm)
	next := lookup(np)
	for j := 0; j < l.vd; j++ {
		v := T(0.5) * self[j]
		if prev >= 0 {
			v += T(0.25) * l.values[int(prev)*l.vd+j]
		}
		if next >= 0 {
			v += T(0.25) * l.values[int(next)*l.vd+j]
		}
		out[j] = v
	}
}
