package permutohedral

import "math"

// Shape describes the dense layout of a batched signal: a leading batch
// dimension, row-major spatial dimensions and a trailing channel
// dimension.
type Shape struct {
	Batch    int
	Spatial  []int
	Channels int
}

// NumPixels returns the number of samples in one batch element.
func (s Shape) NumPixels() int {
	n := 1
	for _, d := range s.Spatial {
		n *= d
	}
	return n
}

func (s Shape) validate() error {
	if s.Batch < 1 {
		return &ErrInvalidDimension{Name: "batch size", Value: s.Batch}
	}
	if len(s.Spatial) == 0 {
		return &ErrInvalidDimension{Name: "spatial rank", Value: 0}
	}
	for _, d := range s.Spatial {
		if d < 1 {
			return &ErrInvalidDimension{Name: "spatial dimension", Value: d}
		}
	}
	if s.Channels < 1 {
		return &ErrInvalidDimension{Name: "channels", Value: s.Channels}
	}
	if int64(s.Batch)*int64(s.NumPixels())*int64(s.Channels) > math.MaxInt32 {
		return ErrCapacityExceeded
	}
	return nil
}

// Bilateral runs an edge-preserving high-dimensional Gaussian filter
// over every batch element of input, guided by reference. The position
// space joins the spatial axes (bandwidth thetaAlpha) with the
// refChannels reference channels (bandwidth thetaBeta), so samples only
// mix where the reference signal is locally similar.
//
// input and output hold Batch*NumPixels*Channels elements, reference
// Batch*NumPixels*refChannels. Batch elements are independent filter
// invocations sharing one lattice instance.
func Bilateral[T Float](output, input, reference []T, shape Shape, refChannels int, thetaAlpha, thetaBeta T, reverse bool, opts ...Option) error {
	if err := shape.validate(); err != nil {
		return err
	}
	if refChannels < 1 {
		return &ErrInvalidDimension{Name: "reference channels", Value: refChannels}
	}

	n := shape.NumPixels()
	if len(input) != shape.Batch*n*shape.Channels {
		return &ErrDimensionMismatch{Buffer: "input", Expected: shape.Batch * n * shape.Channels, Actual: len(input)}
	}
	if len(output) != len(input) {
		return &ErrDimensionMismatch{Buffer: "output", Expected: len(input), Actual: len(output)}
	}
	if len(reference) != shape.Batch*n*refChannels {
		return &ErrDimensionMismatch{Buffer: "reference", Expected: shape.Batch * n * refChannels, Actual: len(reference)}
	}

	pd := len(shape.Spatial) + refChannels
	vd := shape.Channels + 1
	f, err := New[T](pd, vd, n, opts...)
	if err != nil {
		return err
	}

	positions := make([]T, n*pd)
	for b := 0; b < shape.Batch; b++ {
		ref := reference[b*n*refChannels : (b+1)*n*refChannels]
		if err := ComputePositions(positions, ref, shape.Spatial, refChannels, thetaAlpha, thetaBeta); err != nil {
			return err
		}
		in := input[b*n*shape.Channels : (b+1)*n*shape.Channels]
		out := output[b*n*shape.Channels : (b+1)*n*shape.Channels]
		if err := f.Filter(out, in, positions, reverse); err != nil {
			return err
		}
	}
	return nil
}

// Gaussian runs a plain spatial Gaussian filter with bandwidth
// thetaGamma over every batch element of input: the bilateral form with
// an empty feature space.
func Gaussian[T Float](output, input []T, shape Shape, thetaGamma T, reverse bool, opts ...Option) error {
	if err := shape.validate(); err != nil {
		return err
	}

	n := shape.NumPixels()
	if len(input) != shape.Batch*n*shape.Channels {
		return &ErrDimensionMismatch{Buffer: "input", Expected: shape.Batch * n * shape.Channels, Actual: len(input)}
	}
	if len(output) != len(input) {
		return &ErrDimensionMismatch{Buffer: "output", Expected: len(input), Actual: len(output)}
	}

	pd := len(shape.Spatial)
	vd := shape.Channels + 1
	f, err := New[T](pd, vd, n, opts...)
	if err != nil {
		return err
	}

	positions := make([]T, n*pd)
	if err := ComputePositions[T](positions, nil, shape.Spatial, 0, thetaGamma, 1); err != nil {
		return err
	}
	for b := 0; b < shape.Batch; b++ {
		in := input[b*n*shape.Channels : (b+1)*n*shape.Channels]
		out := output[b*n*shape.Channels : (b+1)*n*shape.Channels]
		if err := f.Filter(out, in, positions, reverse); err != nil {
			return err
		}
	}
	return nil
}
