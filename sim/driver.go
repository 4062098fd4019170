package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// TrajectoryWriter receives one configuration frame per reporting batch.
// first=true truncates/creates the underlying file. Implemented by
// sim/traj; injected so the core never depends on output formats.
type TrajectoryWriter interface {
	AppendFrame(dimension int, store *ParticleStore, first bool) error
}

// Collaborators are the optional external I/O surfaces of a run. Nil fields
// disable the corresponding output.
type Collaborators struct {
	// Trajectory appends configuration snapshots after each batch.
	Trajectory TrajectoryWriter
	// VMDScript writes the companion visualization script once at startup.
	VMDScript func(boxSize []float64) error
}

// Driver owns the simulation state for the lifetime of a run: box, cell
// list, particle store, interaction model, and the Monte Carlo engine built
// over them. It executes the configured number of reporting batches,
// printing one report line per batch and appending trajectory frames.
type Driver struct {
	cfg    Config
	collab Collaborators

	box     *Box
	cells   *CellList
	store   *ParticleStore
	model   *PatchyDisc
	engine  Engine
	Metrics *Metrics
}

// NewDriver validates the configuration, builds the simulation state, and
// constructs the engine through the registered factory. The initial
// configuration is drawn here, so a returned Driver is ready to Run.
func NewDriver(cfg Config, collab Collaborators) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if NewEngineFunc == nil {
		return nil, fmt.Errorf("%w: no Monte Carlo engine registered (import sim/engine)", ErrConfiguration)
	}

	baseLength := BaseLength(cfg.Particles, cfg.Density, cfg.Dimension)
	boxSize := make([]float64, cfg.Dimension)
	for d := range boxSize {
		boxSize[d] = baseLength
	}
	box, err := NewBox(boxSize)
	if err != nil {
		return nil, err
	}

	cells := NewCellList(cfg.Dimension)
	if err := cells.Initialise(box.Size, cfg.Cutoff()); err != nil {
		return nil, err
	}

	store, err := NewParticleStore(cfg.Particles, cfg.Dimension)
	if err != nil {
		return nil, err
	}

	rng := NewPartitionedRNG(NewSimulationKey(cfg.Run.Seed))
	if err := RandomConfiguration(store, box, cells, rng.ForSubsystem(SubsystemInitialise), cfg.MaxInitTrials); err != nil {
		return nil, err
	}

	model, err := NewPatchyDisc(box, store, cells, cfg.Interaction)
	if err != nil {
		return nil, err
	}
	initialEnergy, err := model.RecomputeTotalEnergy()
	if err != nil {
		return nil, err
	}

	isIsotropic := make([]bool, cfg.Particles) // all particles anisotropic
	engine, err := NewEngineFunc(EngineConfig{
		Particles:       cfg.Particles,
		Dimension:       cfg.Dimension,
		Coordinates:     store.FlattenPositions(),
		Orientations:    store.FlattenOrientations(),
		TranslationStep: cfg.Moves.TranslationStep,
		RotationStep:    cfg.Moves.RotationStep,
		ProbTranslate:   cfg.Moves.ProbTranslate,
		ReferenceRadius: cfg.Moves.ReferenceRadius,
		MaxInteractions: cfg.Interaction.MaxInteractions,
		BoxSize:         box.Size,
		IsIsotropic:     isIsotropic,
	}, model, rng.ForSubsystem(SubsystemEngine))
	if err != nil {
		return nil, err
	}

	metrics := NewMetrics()
	metrics.InitialEnergy = initialEnergy
	logrus.Infof("Built %dD box of side %.4f (%d cells), initial energy %.4f",
		cfg.Dimension, baseLength, cells.NumCells(), initialEnergy)

	return &Driver{
		cfg:     cfg,
		collab:  collab,
		box:     box,
		cells:   cells,
		store:   store,
		model:   model,
		engine:  engine,
		Metrics: metrics,
	}, nil
}

// Box returns the periodic simulation box.
func (d *Driver) Box() *Box { return d.box }

// Store returns the particle store. Read-only for callers: moves flow only
// through the engine's post-move callback.
func (d *Driver) Store() *ParticleStore { return d.store }

// Model returns the interaction model.
func (d *Driver) Model() *PatchyDisc { return d.model }

// Run executes the batch loop: step the engine, append a trajectory frame,
// report cumulative sweeps and total energy. Strictly sequential; an engine
// or writer error aborts immediately rather than reporting on a corrupted
// state.
func (d *Driver) Run() error {
	if d.collab.VMDScript != nil {
		if err := d.collab.VMDScript(d.box.Size); err != nil {
			return err
		}
	}

	moves := d.cfg.MovesPerBatchOrDefault()
	for i := 0; i < d.cfg.Run.Batches; i++ {
		if err := d.engine.Step(moves); err != nil {
			return fmt.Errorf("batch %d: %w", i, err)
		}

		if d.collab.Trajectory != nil {
			if err := d.collab.Trajectory.AppendFrame(d.cfg.Dimension, d.store, i == 0); err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
		}

		energy, err := d.model.TotalEnergy()
		if err != nil {
			return fmt.Errorf("batch %d: %w", i, err)
		}
		d.Metrics.RecordBatch(moves, energy)
		fmt.Printf("sweeps = %9.4e, energy = %5.4f\n",
			float64((i+1)*d.cfg.Run.SweepsPerBatch), energy)
	}
	return nil
}
