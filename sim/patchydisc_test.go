package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSystem builds a box, cell list and store with explicitly placed
// particles and returns the interaction model over them.
func newTestSystem(t *testing.T, boxSize []float64, cfg InteractionConfig, positions, orientations [][]float64) (*Box, *CellList, *ParticleStore, *PatchyDisc) {
	t.Helper()

	box, err := NewBox(boxSize)
	require.NoError(t, err)

	cells := NewCellList(2)
	require.NoError(t, cells.Initialise(box.Size, 1+0.5*cfg.InteractionRange))

	store, err := NewParticleStore(len(positions), 2)
	require.NoError(t, err)
	for i := range positions {
		p := store.Get(i)
		copy(p.Position, positions[i])
		copy(p.Orientation, orientations[i])
		cells.Insert(i, p.Position)
	}

	model, err := NewPatchyDisc(box, store, cells, cfg)
	require.NoError(t, err)
	return box, cells, store, model
}

func threePatchConfig() InteractionConfig {
	return InteractionConfig{MaxInteractions: 3, InteractionEnergy: 8.0, InteractionRange: 0.1}
}

func TestPatchyDisc_PairEnergy_AlignedPatchesBond(t *testing.T) {
	// GIVEN two discs 1.02 apart with patches pointing at each other
	_, _, store, model := newTestSystem(t, []float64{10, 10}, threePatchConfig(),
		[][]float64{{5, 5}, {6.02, 5}},
		[][]float64{{1, 0}, {-1, 0}})

	a, b := store.Get(0), store.Get(1)
	e, err := model.PairEnergy(0, a.Position, a.Orientation, 1, b.Position, b.Orientation)
	require.NoError(t, err)

	// THEN they carry exactly one bond worth -interactionEnergy
	assert.InDelta(t, -8.0, e, 1e-12)
}

func TestPatchyDisc_PairEnergy_MisalignedPatchesDoNotBond(t *testing.T) {
	// Same geometry, but the second disc's patches point away.
	_, _, store, model := newTestSystem(t, []float64{10, 10}, threePatchConfig(),
		[][]float64{{5, 5}, {6.02, 5}},
		[][]float64{{1, 0}, {1, 0}})

	a, b := store.Get(0), store.Get(1)
	e, err := model.PairEnergy(0, a.Position, a.Orientation, 1, b.Position, b.Orientation)
	require.NoError(t, err)
	assert.Zero(t, e)
}

func TestPatchyDisc_PairEnergy_HardCoreOverlapIsInf(t *testing.T) {
	_, _, store, model := newTestSystem(t, []float64{10, 10}, threePatchConfig(),
		[][]float64{{5, 5}, {5.9, 5}},
		[][]float64{{1, 0}, {-1, 0}})

	a, b := store.Get(0), store.Get(1)
	e, err := model.PairEnergy(0, a.Position, a.Orientation, 1, b.Position, b.Orientation)
	require.NoError(t, err)
	assert.True(t, math.IsInf(e, 1), "overlap must evaluate to +Inf, got %v", e)
}

func TestPatchyDisc_PairEnergy_ZeroBeyondCutoff(t *testing.T) {
	// Cutoff is 1 + range/2 = 1.05; 1.2 apart there is nothing.
	_, _, store, model := newTestSystem(t, []float64{10, 10}, threePatchConfig(),
		[][]float64{{5, 5}, {6.2, 5}},
		[][]float64{{1, 0}, {-1, 0}})

	a, b := store.Get(0), store.Get(1)
	e, err := model.PairEnergy(0, a.Position, a.Orientation, 1, b.Position, b.Orientation)
	require.NoError(t, err)
	assert.Zero(t, e)
}

func TestPatchyDisc_PairEnergy_Symmetric(t *testing.T) {
	// Random pairs in range: energy must not depend on argument order.
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 50; trial++ {
		theta1 := 2 * math.Pi * rng.Float64()
		theta2 := 2 * math.Pi * rng.Float64()
		r := 1.0 + 0.06*rng.Float64()
		phi := 2 * math.Pi * rng.Float64()

		_, _, store, model := newTestSystem(t, []float64{10, 10}, threePatchConfig(),
			[][]float64{{5, 5}, {5 + r*math.Cos(phi), 5 + r*math.Sin(phi)}},
			[][]float64{
				{math.Cos(theta1), math.Sin(theta1)},
				{math.Cos(theta2), math.Sin(theta2)},
			})

		a, b := store.Get(0), store.Get(1)
		eAB, err := model.PairEnergy(0, a.Position, a.Orientation, 1, b.Position, b.Orientation)
		require.NoError(t, err)
		eBA, err := model.PairEnergy(1, b.Position, b.Orientation, 0, a.Position, a.Orientation)
		require.NoError(t, err)
		assert.Equal(t, eAB, eBA, "pair energy asymmetric at trial %d", trial)
	}
}

func TestPatchyDisc_PairEnergy_BondsAcrossPeriodicBoundary(t *testing.T) {
	// Discs hugging opposite walls bond through the boundary.
	_, _, store, model := newTestSystem(t, []float64{10, 10}, threePatchConfig(),
		[][]float64{{0.2, 5}, {9.18, 5}},
		[][]float64{{-1, 0}, {1, 0}})

	a, b := store.Get(0), store.Get(1)
	e, err := model.PairEnergy(0, a.Position, a.Orientation, 1, b.Position, b.Orientation)
	require.NoError(t, err)
	assert.InDelta(t, -8.0, e, 1e-12)
}

func TestPatchyDisc_Energy_SumsNeighboursAndIsIdempotent(t *testing.T) {
	// A central disc bonded to one neighbour and out of range of another.
	_, _, store, model := newTestSystem(t, []float64{10, 10}, threePatchConfig(),
		[][]float64{{5, 5}, {6.02, 5}, {2, 2}},
		[][]float64{{1, 0}, {-1, 0}, {1, 0}})

	p := store.Get(0)
	e1, err := model.Energy(0, p.Position, p.Orientation)
	require.NoError(t, err)
	assert.InDelta(t, -8.0, e1, 1e-12)

	// Pure function of current state: identical on a second call.
	e2, err := model.Energy(0, p.Position, p.Orientation)
	require.NoError(t, err)
	assert.Equal(t, e1, e2)
}

// wideBondConfig opens the patch window far enough that a fourth partner can
// bond without hard-overlapping the other three.
func wideBondConfig() InteractionConfig {
	return InteractionConfig{MaxInteractions: 3, InteractionEnergy: 2.0, InteractionRange: 0.8}
}

func saturatedSystem(t *testing.T) (*ParticleStore, *PatchyDisc) {
	t.Helper()
	// Central disc with three patches at 0, 120 and 240 degrees, one partner
	// facing each patch, plus a fourth squeezed in at 60 degrees close
	// enough for its patch to reach the central patch at 0 degrees.
	cos120, sin120 := math.Cos(2*math.Pi/3), math.Sin(2*math.Pi/3)
	p4 := []float64{5 + 1.01*math.Cos(math.Pi/3), 5 + 1.01*math.Sin(math.Pi/3)}
	dir4 := []float64{5.5 - p4[0], 5.0 - p4[1]}
	norm := math.Hypot(dir4[0], dir4[1])
	dir4[0] /= norm
	dir4[1] /= norm

	_, _, store, model := newTestSystem(t, []float64{10, 10}, wideBondConfig(),
		[][]float64{
			{5, 5},
			{6.05, 5},
			{5 + 1.05*cos120, 5 + 1.05*sin120},
			{5 + 1.05*cos120, 5 - 1.05*sin120},
			p4,
		},
		[][]float64{
			{1, 0},
			{-1, 0},
			{-cos120, -sin120},
			{-cos120, sin120},
			dir4,
		})
	return store, model
}

func TestPatchyDisc_Interactions_TruncatesAtCapAndSignalsSaturation(t *testing.T) {
	store, model := saturatedSystem(t)

	p := store.Get(0)
	partners, err := model.Interactions(0, p.Position, p.Orientation)
	assert.ErrorIs(t, err, ErrSaturationExceeded)
	assert.Len(t, partners, 3, "partners must be truncated at maxInteractions")
}

func TestPatchyDisc_Interactions_WithinCap(t *testing.T) {
	_, _, store, model := newTestSystem(t, []float64{10, 10}, threePatchConfig(),
		[][]float64{{5, 5}, {6.02, 5}, {2, 2}},
		[][]float64{{1, 0}, {-1, 0}, {1, 0}})

	p := store.Get(0)
	partners, err := model.Interactions(0, p.Position, p.Orientation)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, partners)
}

func TestPatchyDisc_PostMoveUpdate_KeepsTotalEnergyAndCellsConsistent(t *testing.T) {
	// GIVEN a bonded pair with running energy -8
	_, cells, store, model := newTestSystem(t, []float64{10, 10}, threePatchConfig(),
		[][]float64{{5, 5}, {6.02, 5}},
		[][]float64{{1, 0}, {-1, 0}})
	total, err := model.RecomputeTotalEnergy()
	require.NoError(t, err)
	require.InDelta(t, -8.0, total, 1e-12)

	// WHEN particle 1 is moved out of range
	require.NoError(t, model.PostMoveUpdate(1, []float64{8.5, 8.5}, []float64{-1, 0}))

	// THEN the incremental total matches a full recompute, the store holds
	// the new coordinates, and the cell bucket followed the particle
	running, err := model.TotalEnergy()
	require.NoError(t, err)
	assert.InDelta(t, 0.0, running, 1e-12)
	recomputed, err := model.RecomputeTotalEnergy()
	require.NoError(t, err)
	assert.InDelta(t, recomputed, running, 1e-12)
	assert.Equal(t, []float64{8.5, 8.5}, store.Get(1).Position)
	assert.Contains(t, cells.Members(cells.CellOf([]float64{8.5, 8.5})), 1)

	// WHEN it is moved back into the bonded position
	require.NoError(t, model.PostMoveUpdate(1, []float64{6.02, 5}, []float64{-1, 0}))
	running, err = model.TotalEnergy()
	require.NoError(t, err)
	assert.InDelta(t, -8.0, running, 1e-12)
	recomputed, err = model.RecomputeTotalEnergy()
	require.NoError(t, err)
	assert.InDelta(t, recomputed, running, 1e-12)
}

func TestPatchyDisc_PostMoveUpdate_RigidClusterMoveAppliedMemberwise(t *testing.T) {
	// GIVEN a bonded dimer with running energy -8
	_, cells, store, model := newTestSystem(t, []float64{10, 10}, threePatchConfig(),
		[][]float64{{5, 5}, {6.02, 5}},
		[][]float64{{1, 0}, {-1, 0}})
	total, err := model.RecomputeTotalEnergy()
	require.NoError(t, err)
	require.InDelta(t, -8.0, total, 1e-12)

	// WHEN a rigid translation of the whole dimer lands one member at a
	// time: after the first commit the moved disc sits within a hard-core
	// diameter of the not-yet-moved one
	require.NoError(t, model.PostMoveUpdate(0, []float64{5.15, 5}, []float64{1, 0}))
	require.NoError(t, model.PostMoveUpdate(1, []float64{6.17, 5}, []float64{-1, 0}))

	// THEN both members are committed and the total energy reflects the
	// final configuration, where the bond is intact
	assert.Equal(t, []float64{5.15, 5}, store.Get(0).Position)
	assert.Equal(t, []float64{6.17, 5}, store.Get(1).Position)
	assert.Contains(t, cells.Members(cells.CellOf([]float64{5.15, 5})), 0)
	assert.Contains(t, cells.Members(cells.CellOf([]float64{6.17, 5})), 1)

	running, err := model.TotalEnergy()
	require.NoError(t, err)
	assert.InDelta(t, -8.0, running, 1e-12)

	// AND the accumulator is fresh again: further moves track incrementally
	require.NoError(t, model.PostMoveUpdate(1, []float64{8.5, 8.5}, []float64{-1, 0}))
	running, err = model.TotalEnergy()
	require.NoError(t, err)
	assert.InDelta(t, 0.0, running, 1e-12)
}

func TestPatchyDisc_PostMoveUpdate_WrapsPositions(t *testing.T) {
	_, cells, store, model := newTestSystem(t, []float64{10, 10}, threePatchConfig(),
		[][]float64{{5, 5}},
		[][]float64{{1, 0}})

	// An accepted move may land outside the box; the store keeps the
	// canonical representation.
	require.NoError(t, model.PostMoveUpdate(0, []float64{10.5, -0.25}, []float64{0, 1}))
	assert.InDelta(t, 0.5, store.Get(0).Position[0], 1e-12)
	assert.InDelta(t, 9.75, store.Get(0).Position[1], 1e-12)
	assert.Contains(t, cells.Members(cells.CellOf(store.Get(0).Position)), 0)
}

func TestPatchyDisc_TotalEnergy_ReportsOverlapLeftCommitted(t *testing.T) {
	_, _, _, model := newTestSystem(t, []float64{10, 10}, threePatchConfig(),
		[][]float64{{5, 5}, {6.02, 5}},
		[][]float64{{1, 0}, {-1, 0}})
	_, err := model.RecomputeTotalEnergy()
	require.NoError(t, err)

	// A move onto a neighbour commits without complaint (it could be a
	// transient cluster state), but if no later move resolves it the
	// overlap is a broken invariant and the next energy query says so.
	require.NoError(t, model.PostMoveUpdate(1, []float64{5.3, 5}, []float64{-1, 0}))
	_, err = model.TotalEnergy()
	assert.ErrorIs(t, err, ErrOverlapDetected)
}

func TestPatchyDisc_RecomputeTotalEnergy_DetectsOverlap(t *testing.T) {
	_, _, _, model := newTestSystem(t, []float64{10, 10}, threePatchConfig(),
		[][]float64{{5, 5}, {5.5, 5}},
		[][]float64{{1, 0}, {-1, 0}})

	_, err := model.RecomputeTotalEnergy()
	assert.ErrorIs(t, err, ErrOverlapDetected)
}

func TestNewPatchyDisc_RejectsBadParameters(t *testing.T) {
	box, err := NewBox([]float64{10, 10})
	require.NoError(t, err)
	cells := NewCellList(2)
	require.NoError(t, cells.Initialise(box.Size, 1.05))
	store, err := NewParticleStore(1, 2)
	require.NoError(t, err)

	tests := []struct {
		name string
		cfg  InteractionConfig
	}{
		{"zero patches", InteractionConfig{MaxInteractions: 0, InteractionEnergy: 8, InteractionRange: 0.1}},
		{"zero energy", InteractionConfig{MaxInteractions: 3, InteractionEnergy: 0, InteractionRange: 0.1}},
		{"range too wide", InteractionConfig{MaxInteractions: 3, InteractionEnergy: 8, InteractionRange: 1.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPatchyDisc(box, store, cells, tt.cfg)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}
