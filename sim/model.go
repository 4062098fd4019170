package sim

import "math/rand"

// InteractionModel is the four-operation capability the Monte Carlo engine
// consumes. *PatchyDisc implements it; alternative potentials plug in
// without the engine changing.
//
// All coordinates are explicit so the engine can evaluate trial states
// without mutating anything; only PostMoveUpdate writes.
type InteractionModel interface {
	// Energy returns the total interaction energy of particle i placed at
	// (pos, orient), +Inf if that placement hard-overlaps a neighbour.
	Energy(i int, pos, orient []float64) (float64, error)

	// PairEnergy returns the interaction energy between two particles at
	// explicit coordinates. Symmetric; +Inf marks a hard-core overlap.
	PairEnergy(i int, posI, orientI []float64, j int, posJ, orientJ []float64) (float64, error)

	// Interactions lists the particles bonded to i at (pos, orient),
	// truncated at the per-particle cap. ErrSaturationExceeded means the
	// cap would be exceeded and the trial must be rejected.
	Interactions(i int, pos, orient []float64) ([]int, error)

	// PostMoveUpdate commits accepted coordinates for particle i: particle
	// store, cell list bucket, and running total energy. A cluster engine
	// calls it once per member of an accepted cluster; intermediate states
	// during that sequence may transiently overlap, which must not fail
	// the commit.
	PostMoveUpdate(i int, pos, orient []float64) error
}

// Engine advances the simulation by elementary Monte Carlo trials. The
// cluster-move algorithm behind it is deliberately opaque to the driver;
// the contract is Step plus the construction-time EngineConfig.
type Engine interface {
	// Step attempts n elementary moves. An error is unrecoverable: the
	// interaction model may be inconsistent and the run must stop.
	Step(n int) error
}

// EngineConfig carries everything an engine implementation needs at
// construction. Coordinates and orientations are contiguous particle-major
// copies owned by the engine after construction.
type EngineConfig struct {
	Particles       int
	Dimension       int
	Coordinates     []float64 // dimension*Particles, particle-major
	Orientations    []float64 // dimension*Particles, particle-major
	TranslationStep float64
	RotationStep    float64
	ProbTranslate   float64
	// ReferenceRadius scales rotational displacement about the cluster
	// frame. Only cluster-move engines consume it; a single-particle
	// sampler rotates in place.
	ReferenceRadius float64
	MaxInteractions int
	BoxSize         []float64
	IsIsotropic     []bool // per-particle; all false for patchy discs
}

// NewEngineFunc is the registration point for the engine implementation.
// sim/engine sets it in init(), breaking the import cycle between sim
// (interface owner) and sim/engine (implementation). Production code
// imports sim/engine directly; package sim tests blank-import it via
// engine_import_test.go.
var NewEngineFunc func(cfg EngineConfig, model InteractionModel, rng *rand.Rand) (Engine, error)
