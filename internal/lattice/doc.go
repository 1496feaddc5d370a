// Package lattice implements the permutohedral lattice filter engine:
// embedding of samples into the canonical simplex of a (pd+1)-dimensional
// zero-sum lattice, deduplication of lattice vertices through a concurrent
// open-addressing hash table, and the splat/blur/slice pipeline that
// performs approximate high-dimensional Gaussian filtering over the
// occupied vertices.
//
// Two execution models are provided over the same data model: Filter runs
// every phase across multiple workers with hard barriers between phases,
// while FilterSequential runs everything on the calling goroutine in
// sample and vertex order and exists to cross-validate the concurrent
// paths.
//
// This is an internal package - external users should use the permutohedral
// package.
package lattice
