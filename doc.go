// Package permutohedral provides fast approximate high-dimensional
// Gaussian filtering of dense N-dimensional signals using a
// permutohedral lattice, the standard building block for edge-preserving
// (bilateral) filters over joint spatial+feature domains.
//
// Each sample is embedded into a (pd+1)-dimensional lattice, values are
// scattered onto the occupied lattice vertices (splat), diffused across
// lattice neighbors (blur) and gathered back to the samples (slice).
// Runtime is linear in the number of samples and independent of the
// filter bandwidths.
//
// # Quick Start
//
// Bilateral filtering of an image, using the image itself as the
// reference (edge) signal:
//
//	shape := permutohedral.Shape{Batch: 1, Spatial: []int{h, w}, Channels: 3}
//	err := permutohedral.Bilateral(out, in, in, shape, 3, 8.0, 0.15, false)
//
// The lower-level API separates position encoding from filtering, for
// callers that bring their own feature channels:
//
//	f, _ := permutohedral.New[float32](pd, vd, numSamples)
//	_ = permutohedral.ComputePositions(positions, reference, spatial, refChannels, spatialStd, featureStd)
//	_ = f.Filter(out, in, positions, false)
//
// # Execution Models
//
// The default engine runs every pipeline phase across multiple workers.
// WithEngine(EngineReference) selects a single-threaded engine that
// performs identical arithmetic in deterministic order; it is slower and
// exists for cross-validation and debugging.
package permutohedral
