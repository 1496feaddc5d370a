package lattice

// sliceSample gathers the blurred accumulators of one sample's simplex,
// weighted by the splat-time barycentric coordinates, and normalizes the
// value channels by the gathered mass channel.
func (l *Lattice[T]) sliceSample(i int, out []T) {
	vd := l.vd
	base := i * (l.pd + 1)
	value := out[i*(vd-1) : (i+1)*(vd-1)]
	for j := range value {
		value[j] = 0
	}
	var mass T
	for r := 0; r <= l.pd; r++ {
		m := l.matrix[base+r]
		vals := l.values[int(m.index)*vd : (int(m.index)+1)*vd]
		for j := range value {
			value[j] += m.weight * vals[j]
		}
		mass += m.weight * vals[vd-1]
	}
	if mass == 0 && l.zeroOnEmptyMass {
		return
	}
	inv := 1 / mass
	for j := range value {
		value[j] *= inv
	}
}

// slice resamples the lattice back onto the original samples. It reads
// the table accumulators only; the output buffer is partitioned by
// sample, so workers never overlap.
func (l *Lattice[T]) slice(out []T) error {
	return l.parallelFor(l.n, func(start, end int) error {
		for i := start; i < end; i++ {
			l.sliceSample(i, out)
		}
		return nil
	})
}
