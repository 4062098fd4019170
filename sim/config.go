package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// InteractionConfig groups the patch interaction parameters. Immutable for
// the length of a run.
type InteractionConfig struct {
	// MaxInteractions caps the bond count per particle (number of patches).
	MaxInteractions int `yaml:"max_interactions"`
	// InteractionEnergy is the attraction well depth in units of kT.
	InteractionEnergy float64 `yaml:"interaction_energy"`
	// InteractionRange is the patch diameter in units of the particle
	// diameter.
	InteractionRange float64 `yaml:"interaction_range"`
}

// MoveConfig groups the trial-move parameters handed to the Monte Carlo
// engine at construction.
type MoveConfig struct {
	TranslationStep float64 `yaml:"translation_step"` // max trial translation
	RotationStep    float64 `yaml:"rotation_step"`    // max trial rotation (radians)
	ProbTranslate   float64 `yaml:"prob_translate"`   // probability a trial translates rather than rotates
	ReferenceRadius float64 `yaml:"reference_radius"` // reference radius for rotational moves
}

// RunConfig groups the batch loop parameters.
type RunConfig struct {
	Batches        int   `yaml:"batches"`          // reporting iterations
	MovesPerBatch  int   `yaml:"moves_per_batch"`  // elementary moves per batch (0 = 10x particle count)
	SweepsPerBatch int   `yaml:"sweeps_per_batch"` // sweeps reported per batch
	Seed           int64 `yaml:"seed"`
}

// OutputConfig groups the file outputs written during a run.
type OutputConfig struct {
	TrajectoryPath string `yaml:"trajectory"` // xyz trajectory path ("" disables)
	VMDScriptPath  string `yaml:"vmd_script"` // VMD script path ("" disables)
}

// Config is the complete, immutable parameterisation of a simulation run.
// The driver takes it at construction; nothing is read from globals.
type Config struct {
	Particles int     `yaml:"particles"`
	Dimension int     `yaml:"dimension"`
	Density   float64 `yaml:"density"`

	Interaction InteractionConfig `yaml:"interaction"`
	Moves       MoveConfig        `yaml:"moves"`
	Run         RunConfig         `yaml:"run"`
	Output      OutputConfig      `yaml:"output"`

	// MaxInitTrials is the retry budget per particle during random
	// initialisation before the density is declared too high.
	MaxInitTrials int `yaml:"max_init_trials"`
}

// DefaultConfig returns the canonical patchy-disc run: 1000 three-patch
// discs at density 0.2 in two dimensions, 8 kT wells of width 0.1.
func DefaultConfig() Config {
	return Config{
		Particles: 1000,
		Dimension: 2,
		Density:   0.2,
		Interaction: InteractionConfig{
			MaxInteractions:   3,
			InteractionEnergy: 8.0,
			InteractionRange:  0.1,
		},
		Moves: MoveConfig{
			TranslationStep: 0.15,
			RotationStep:    0.2,
			ProbTranslate:   0.5,
			ReferenceRadius: 0.5,
		},
		Run: RunConfig{
			Batches:        1000,
			MovesPerBatch:  0,
			SweepsPerBatch: 1000,
			Seed:           42,
		},
		Output: OutputConfig{
			TrajectoryPath: "trajectory.xyz",
			VMDScriptPath:  "vmd.tcl",
		},
		MaxInitTrials: 100000,
	}
}

// Validate checks parameter ranges before anything is built. All failures
// are ErrConfiguration: fatal, the run never starts.
func (c *Config) Validate() error {
	if c.Particles <= 0 {
		return fmt.Errorf("%w: particles %d must be positive", ErrConfiguration, c.Particles)
	}
	if c.Dimension != 2 {
		// Patch geometry is two-dimensional; Box and CellList handle 3D but
		// the interaction model does not.
		return fmt.Errorf("%w: dimension %d (patchy discs are 2D)", ErrConfiguration, c.Dimension)
	}
	if c.Density <= 0 || c.Density > 0.9 {
		return fmt.Errorf("%w: density %v outside (0, 0.9]", ErrConfiguration, c.Density)
	}
	if c.Interaction.MaxInteractions <= 0 {
		return fmt.Errorf("%w: max_interactions %d must be positive", ErrConfiguration, c.Interaction.MaxInteractions)
	}
	if c.Interaction.InteractionEnergy <= 0 {
		return fmt.Errorf("%w: interaction_energy %v must be positive", ErrConfiguration, c.Interaction.InteractionEnergy)
	}
	if c.Interaction.InteractionRange <= 0 || c.Interaction.InteractionRange >= 1 {
		return fmt.Errorf("%w: interaction_range %v outside (0, 1)", ErrConfiguration, c.Interaction.InteractionRange)
	}
	if c.Moves.TranslationStep <= 0 || c.Moves.RotationStep <= 0 {
		return fmt.Errorf("%w: trial steps must be positive (translation %v, rotation %v)",
			ErrConfiguration, c.Moves.TranslationStep, c.Moves.RotationStep)
	}
	if c.Moves.ProbTranslate < 0 || c.Moves.ProbTranslate > 1 {
		return fmt.Errorf("%w: prob_translate %v outside [0, 1]", ErrConfiguration, c.Moves.ProbTranslate)
	}
	if c.Moves.ReferenceRadius <= 0 {
		return fmt.Errorf("%w: reference_radius %v must be positive", ErrConfiguration, c.Moves.ReferenceRadius)
	}
	if c.Run.Batches <= 0 {
		return fmt.Errorf("%w: batches %d must be positive", ErrConfiguration, c.Run.Batches)
	}
	if c.Run.MovesPerBatch < 0 {
		return fmt.Errorf("%w: moves_per_batch %d must be non-negative", ErrConfiguration, c.Run.MovesPerBatch)
	}
	if c.Run.SweepsPerBatch <= 0 {
		return fmt.Errorf("%w: sweeps_per_batch %d must be positive", ErrConfiguration, c.Run.SweepsPerBatch)
	}
	if c.MaxInitTrials <= 0 {
		return fmt.Errorf("%w: max_init_trials %d must be positive", ErrConfiguration, c.MaxInitTrials)
	}
	return nil
}

// MovesPerBatchOrDefault resolves the zero value to ten trials per particle,
// averaging one attempted move per particle per sweep within a batch.
func (c *Config) MovesPerBatchOrDefault() int {
	if c.Run.MovesPerBatch > 0 {
		return c.Run.MovesPerBatch
	}
	return 10 * c.Particles
}

// Cutoff returns the pair interaction cutoff: one hard-core diameter plus
// half the patch range. Also the cell-list cell size floor.
func (c *Config) Cutoff() float64 {
	return 1 + 0.5*c.Interaction.InteractionRange
}

// LoadConfig reads and parses a YAML run configuration file, starting from
// DefaultConfig so omitted keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading run config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing run config: %w", err)
	}
	return cfg, nil
}
