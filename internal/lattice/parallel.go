package lattice

import "golang.org/x/sync/errgroup"

// parallelChunkMin is the smallest slice of work worth a goroutine.
const parallelChunkMin = 64

// parallelFor splits [0, n) into contiguous chunks and runs fn on each
// from its own goroutine, returning after every chunk has completed.
// That completion guarantee is what the pipeline uses as its phase
// barrier: no caller proceeds until all side effects of fn are globally
// visible.
func (l *Lattice[T]) parallelFor(n int, fn func(start, end int) error) error {
	workers := l.workers
	if chunks := (n + parallelChunkMin - 1) / parallelChunkMin; chunks < workers {
		workers = chunks
	}
	if workers <= 1 {
		return fn(0, n)
	}
	chunk := (n + workers - 1) / workers
	g := new(errgroup.Group)
	for start := 0; start < n; start += chunk {
		start := start // per-iteration copy; go.mod was lowered below 1.22
		end := min(start+chunk, n)
		g.Go(func() error { return fn(start, end) })
	}
	return g.Wait()
}
