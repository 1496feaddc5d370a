package permutohedral

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/permutohedral/testutil"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name      string
		pd, vd, n int
		wantField string
	}{
		{"ZeroPD", 0, 2, 10, "position dimension"},
		{"NegativePD", -3, 2, 10, "position dimension"},
		{"MissingMassChannel", 2, 1, 10, "value dimension"},
		{"ZeroSamples", 2, 2, 0, "sample count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New[float32](tt.pd, tt.vd, tt.n)
			var dimErr *ErrInvalidDimension
			require.ErrorAs(t, err, &dimErr)
			assert.Equal(t, tt.wantField, dimErr.Name)
		})
	}
}

func TestNewCapacityExceeded(t *testing.T) {
	_, err := New[float32](127, 2, 1<<26)
	require.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestFilterBufferValidation(t *testing.T) {
	f, err := New[float32](2, 2, 4)
	require.NoError(t, err)

	positions := make([]float32, 4*2)
	in := make([]float32, 4)
	out := make([]float32, 4)

	var dimErr *ErrDimensionMismatch

	err = f.Filter(out, in, positions[:7], false)
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, "positions", dimErr.Buffer)

	err = f.Filter(out, in[:3], positions, false)
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, "input", dimErr.Buffer)

	err = f.Filter(out[:3], in, positions, false)
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, "output", dimErr.Buffer)

	require.NoError(t, f.Filter(out, in, positions, false))
}

func TestEnginesAgree(t *testing.T) {
	const (
		pd = 3
		vd = 3
		n  = 200
	)
	rng := testutil.NewRNG(17)
	positions := make([]float64, n*pd)
	in := make([]float64, n*(vd-1))
	testutil.FillUniformRange(rng, positions, 0, 6)
	testutil.FillUniformRange(rng, in, -2, 2)

	par, err := New[float64](pd, vd, n)
	require.NoError(t, err)
	ref, err := New[float64](pd, vd, n, WithEngine(EngineReference))
	require.NoError(t, err)

	got := make([]float64, len(in))
	want := make([]float64, len(in))
	require.NoError(t, par.Filter(got, in, positions, false))
	require.NoError(t, ref.Filter(want, in, positions, false))

	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-10)
	}
}

func TestStats(t *testing.T) {
	const (
		pd = 2
		vd = 2
		n  = 8
	)
	f, err := New[float32](pd, vd, n)
	require.NoError(t, err)

	stats := f.Stats()
	assert.Equal(t, n, stats.Samples)
	assert.Equal(t, pd, stats.PositionDims)
	assert.Equal(t, vd, stats.ValueDims)
	assert.Equal(t, n*(pd+1), stats.Capacity)
	assert.Equal(t, 2*n*(pd+1), stats.ProbeSlots)
	assert.Zero(t, stats.OccupiedVertices, "no run yet")

	positions := make([]float32, n*pd)
	in := make([]float32, n)
	out := make([]float32, n)
	require.NoError(t, f.Filter(out, in, positions, false))
	assert.NotZero(t, f.Stats().OccupiedVertices)
}

// recordingCollector captures metrics callbacks for assertions.
type recordingCollector struct {
	mu      sync.Mutex
	filters int
	phases  map[string]int
}

func (c *recordingCollector) RecordFilter(int, time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters++
}

func (c *recordingCollector) RecordPhase(phase string, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phases == nil {
		c.phases = make(map[string]int)
	}
	c.phases[phase]++
}

func TestMetricsCollector(t *testing.T) {
	collector := &recordingCollector{}
	f, err := New[float32](1, 2, 16, WithMetricsCollector(collector))
	require.NoError(t, err)

	positions := make([]float32, 16)
	for i := range positions {
		positions[i] = float32(i) * 0.5
	}
	in := make([]float32, 16)
	out := make([]float32, 16)
	require.NoError(t, f.Filter(out, in, positions, false))

	assert.Equal(t, 1, collector.filters)
	for _, phase := range []string{"embed", "coalesce", "splat", "blur", "slice"} {
		assert.Equal(t, 1, collector.phases[phase], "phase %q", phase)
	}
}

func TestWorkerOption(t *testing.T) {
	const (
		pd = 2
		vd = 2
		n  = 100
	)
	rng := testutil.NewRNG(31)
	positions := make([]float64, n*pd)
	in := make([]float64, n)
	testutil.FillUniformRange(rng, positions, 0, 4)
	testutil.FillUniform(rng, in)

	single, err := New[float64](pd, vd, n, WithWorkers(1), WithSplatGroupSize(8))
	require.NoError(t, err)
	many, err := New[float64](pd, vd, n, WithWorkers(16))
	require.NoError(t, err)

	a := make([]float64, n)
	b := make([]float64, n)
	require.NoError(t, single.Filter(a, in, positions, false))
	require.NoError(t, many.Filter(b, in, positions, false))
	for i := range a {
		assert.InDelta(t, a[i], b[i], 1e-10)
	}
}
