package permutohedral

// ComputePositions fills positions with the embedding coordinates of a
// dense row-major grid: for every grid sample, its spatial indices
// divided by spatialStd, followed by its refChannels reference channels
// divided by featureStd. The resulting position dimensionality is
// len(spatialDims)+refChannels.
//
// positions must hold numSamples*pd elements and reference
// numSamples*refChannels, where numSamples is the product of
// spatialDims. With refChannels == 0 the reference buffer is ignored and
// the encoding is purely spatial (a plain Gaussian blur).
func ComputePositions[T Float](positions, reference []T, spatialDims []int, refChannels int, spatialStd, featureStd T) error {
	numSamples := 1
	for _, d := range spatialDims {
		if d < 1 {
			return &ErrInvalidDimension{Name: "spatial dimension", Value: d}
		}
		numSamples *= d
	}
	if len(spatialDims) == 0 {
		return &ErrInvalidDimension{Name: "spatial rank", Value: 0}
	}
	if refChannels < 0 {
		return &ErrInvalidDimension{Name: "reference channels", Value: refChannels}
	}
	if spatialStd == 0 {
		return &ErrInvalidBandwidth{Name: "spatial standard deviation"}
	}
	if refChannels > 0 && featureStd == 0 {
		return &ErrInvalidBandwidth{Name: "feature standard deviation"}
	}

	pd := len(spatialDims) + refChannels
	if len(positions) != numSamples*pd {
		return &ErrDimensionMismatch{Buffer: "positions", Expected: numSamples * pd, Actual: len(positions)}
	}
	if refChannels > 0 && len(reference) != numSamples*refChannels {
		return &ErrDimensionMismatch{Buffer: "reference", Expected: numSamples * refChannels, Actual: len(reference)}
	}

	for idx := 0; idx < numSamples; idx++ {
		divisor := 1
		for s := len(spatialDims) - 1; s >= 0; s-- {
			positions[idx*pd+s] = T((idx/divisor)%spatialDims[s]) / spatialStd
			divisor *= spatialDims[s]
		}
		for c := 0; c < refChannels; c++ {
			positions[idx*pd+len(spatialDims)+c] = reference[idx*refChannels+c] / featureStd
		}
	}
	return nil
}
