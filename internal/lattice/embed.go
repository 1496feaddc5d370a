package lattice

import "math"

// simplexScratch holds the per-sample work buffers of the embedding
// step. Each worker owns one instance for the duration of a chunk.
type simplexScratch[T Float] struct {
	elevated    []T     // pd+1 elevated coordinates
	rem0        []T     // pd+1 rounded remainder-0 point
	rank        []int   // pd+1 residual rank permutation
	barycentric []T     // pd+2, wraparound slot folded into 0
	key         []int16 // pd explicit key coordinates
}

func newSimplexScratch[T Float](pd int) *simplexScratch[T] {
	return &simplexScratch[T]{
		elevated:    make([]T, pd+1),
		rem0:        make([]T, pd+1),
		rank:        make([]int, pd+1),
		barycentric: make([]T, pd+2),
		key:         make([]int16, pd),
	}
}

// computeSimplex locates the simplex enclosing one position: it elevates
// the position onto the zero-sum hyperplane, rounds to the nearest
// remainder-0 lattice point, ranks the rounding residuals into a total
// order and derives the barycentric weights of the pd+1 corners.
//
// The tie-breaking here is load-bearing. Rounding uses a strict
// comparison (exact midpoints go down), and equal residuals are ordered
// by coordinate index so the rank vector is always a permutation. Both
// engines share this routine, so their per-sample arithmetic is
// identical by construction.
func (l *Lattice[T]) computeSimplex(position []T, s *simplexScratch[T]) {
	pd := l.pd

	// Elevate via the cumulative-sum basis. The running suffix sum lands
	// in elevated[0], and the coordinates sum to zero.
	sm := T(0)
	for i := pd; i > 0; i-- {
		cf := position[i-1] * l.scale[i-1]
		s.elevated[i] = sm - T(i)*cf
		sm += cf
	}
	s.elevated[0] = sm

	// Round each coordinate to the nearest multiple of pd+1, tracking
	// the net deficiency of the chosen remainders.
	sum := 0
	for i := 0; i <= pd; i++ {
		v := float64(s.elevated[i]) * (1.0 / float64(pd+1))
		up := math.Ceil(v) * float64(pd+1)
		down := math.Floor(v) * float64(pd+1)
		if up-float64(s.elevated[i]) < float64(s.elevated[i])-down {
			s.rem0[i] = T(up)
		} else {
			s.rem0[i] = T(down)
		}
		sum += int(s.rem0[i])
	}
	sum /= pd + 1

	// Rank coordinates by rounding residual, largest residual first.
	for i := range s.rank {
		s.rank[i] = 0
	}
	for i := 0; i < pd; i++ {
		di := s.elevated[i] - s.rem0[i]
		for j := i + 1; j <= pd; j++ {
			dj := s.elevated[j] - s.rem0[j]
			if di < dj || (di == dj && i > j) {
				s.rank[i]++
			} else {
				s.rank[j]++
			}
		}
	}

	// If the point was rounded off the hyperplane, shift the sum
	// highest- or lowest-ranked coordinates back by pd+1 so rem0 sums
	// to zero again, keeping the ranks consistent.
	for i := 0; i <= pd; i++ {
		s.rank[i] += sum
		if s.rank[i] < 0 {
			s.rank[i] += pd + 1
			s.rem0[i] += T(pd + 1)
		} else if s.rank[i] > pd {
			s.rank[i] -= pd + 1
			s.rem0[i] -= T(pd + 1)
		}
	}

	// Barycentric weights from the residuals through the rank
	// permutation; the wraparound slot folds back into slot 0.
	for i := range s.barycentric {
		s.barycentric[i] = 0
	}
	for i := 0; i <= pd; i++ {
		delta := (s.elevated[i] - s.rem0[i]) * (1.0 / T(pd+1))
		s.barycentric[pd-s.rank[i]] += delta
		s.barycentric[pd+1-s.rank[i]] -= delta
	}
	s.barycentric[0] += 1 + s.barycentric[pd+1]
}

// vertexKey writes the explicit key coordinates of the simplex corner
// with the given remainder into s.key. The last lattice coordinate is
// implicit in the zero sum and not stored.
func (l *Lattice[T]) vertexKey(s *simplexScratch[T], remainder int) {
	pd := l.pd
	for i := 0; i < pd; i++ {
		s.key[i] = int16(s.rem0[i]) + l.canonical[remainder*(pd+1)+s.rank[i]]
	}
}
