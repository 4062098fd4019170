package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBox_RejectsBadSizes(t *testing.T) {
	tests := []struct {
		name string
		size []float64
	}{
		{"empty", []float64{}},
		{"zero length", []float64{10, 0}},
		{"negative length", []float64{-5, 10}},
		{"NaN length", []float64{math.NaN(), 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBox(tt.size)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestBox_Wrap_Idempotent(t *testing.T) {
	// GIVEN a box and positions scattered many periods outside it
	box, err := NewBox([]float64{10, 20})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 100; trial++ {
		p := []float64{(rng.Float64() - 0.5) * 200, (rng.Float64() - 0.5) * 200}

		// WHEN wrapping once and then again
		box.Wrap(p)
		once := append([]float64(nil), p...)
		box.Wrap(p)

		// THEN the second wrap changes nothing and the result is canonical
		assert.Equal(t, once, p)
		for d := 0; d < 2; d++ {
			assert.GreaterOrEqual(t, p[d], 0.0)
			assert.Less(t, p[d], box.Size[d])
		}
	}
}

func TestBox_Separation_MinimumImage(t *testing.T) {
	// Minimum-image displacements never exceed half the box in any dimension.
	box, err := NewBox([]float64{10, 10})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(11))
	sep := make([]float64, 2)
	for trial := 0; trial < 200; trial++ {
		a := []float64{rng.Float64() * 10, rng.Float64() * 10}
		b := []float64{rng.Float64() * 10, rng.Float64() * 10}
		box.Separation(a, b, sep)
		for d := 0; d < 2; d++ {
			assert.LessOrEqual(t, math.Abs(sep[d]), 5.0+1e-12)
		}
	}
}

func TestBox_Separation_PeriodShiftInvariant(t *testing.T) {
	// Shifting either endpoint by whole periods leaves the separation unchanged.
	box, err := NewBox([]float64{10, 10})
	require.NoError(t, err)

	a := []float64{1.5, 9.0}
	b := []float64{9.5, 0.5}
	base := box.SeparationVec(a, b)

	shiftedA := []float64{a[0] - 30, a[1] + 10}
	shiftedB := []float64{b[0] + 20, b[1] - 40}
	shifted := box.SeparationVec(shiftedA, shiftedB)

	for d := 0; d < 2; d++ {
		assert.InDelta(t, base[d], shifted[d], 1e-9)
	}
}

func TestBox_Separation_CrossesBoundary(t *testing.T) {
	// Two particles hugging opposite walls are close through the boundary.
	box, err := NewBox([]float64{10, 10})
	require.NoError(t, err)

	sep := box.SeparationVec([]float64{0.25, 5}, []float64{9.75, 5})
	assert.InDelta(t, -0.5, sep[0], 1e-12)
	assert.InDelta(t, 0.0, sep[1], 1e-12)
}

func TestBox_BaseLength_MatchesDensityFormula(t *testing.T) {
	// 1000 discs at density 0.2 in 2D: sqrt(1000*pi/(4*0.2)) ~ 62.67
	got := BaseLength(1000, 0.2, 2)
	want := math.Sqrt(1000 * math.Pi / (4 * 0.2))
	assert.InDelta(t, want, got, 1e-12)

	got3 := BaseLength(1000, 0.2, 3)
	want3 := math.Cbrt(1000 * math.Pi / (6 * 0.2))
	assert.InDelta(t, want3, got3, 1e-12)
}
