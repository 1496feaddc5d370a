package permutohedral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePositionsBilateral(t *testing.T) {
	// 2x3 grid with one reference channel: pd = 3.
	spatial := []int{2, 3}
	reference := []float32{10, 20, 30, 40, 50, 60}
	positions := make([]float32, 6*3)

	err := ComputePositions(positions, reference, spatial, 1, 2.0, 10.0)
	require.NoError(t, err)

	// Row-major: sample idx = y*3 + x, position = (y/2, x/2, ref/10).
	want := []float32{
		0, 0, 1,
		0, 0.5, 2,
		0, 1, 3,
		0.5, 0, 4,
		0.5, 0.5, 5,
		0.5, 1, 6,
	}
	assert.Equal(t, want, positions)
}

func TestComputePositionsSpatialOnly(t *testing.T) {
	positions := make([]float64, 4)
	err := ComputePositions[float64](positions, nil, []int{4}, 0, 0.5, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 4, 6}, positions)
}

func TestComputePositionsValidation(t *testing.T) {
	positions := make([]float32, 8)

	t.Run("EmptySpatialDims", func(t *testing.T) {
		var dimErr *ErrInvalidDimension
		err := ComputePositions(positions, nil, nil, 0, 1, 1)
		require.ErrorAs(t, err, &dimErr)
	})

	t.Run("BadSpatialDim", func(t *testing.T) {
		var dimErr *ErrInvalidDimension
		err := ComputePositions(positions, nil, []int{0, 4}, 0, 1, 1)
		require.ErrorAs(t, err, &dimErr)
	})

	t.Run("ZeroSpatialStd", func(t *testing.T) {
		var bwErr *ErrInvalidBandwidth
		err := ComputePositions(positions, nil, []int{8}, 0, 0, 1)
		require.ErrorAs(t, err, &bwErr)
		assert.Contains(t, bwErr.Error(), "spatial")
	})

	t.Run("ZeroFeatureStd", func(t *testing.T) {
		var bwErr *ErrInvalidBandwidth
		ref := make([]float32, 8)
		err := ComputePositions(make([]float32, 16), ref, []int{8}, 1, 1, 0)
		require.ErrorAs(t, err, &bwErr)
	})

	t.Run("PositionsLength", func(t *testing.T) {
		var dimErr *ErrDimensionMismatch
		err := ComputePositions(positions[:5], nil, []int{8}, 0, 1, 1)
		require.ErrorAs(t, err, &dimErr)
		assert.Equal(t, "positions", dimErr.Buffer)
	})

	t.Run("ReferenceLength", func(t *testing.T) {
		var dimErr *ErrDimensionMismatch
		err := ComputePositions(make([]float32, 16), make([]float32, 3), []int{8}, 1, 1, 1)
		require.ErrorAs(t, err, &dimErr)
		assert.Equal(t, "reference", dimErr.Buffer)
	})
}
