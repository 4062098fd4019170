package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/drozzy/vmmc/sim"
	_ "github.com/drozzy/vmmc/sim/engine" // registers the Monte Carlo engine
	"github.com/drozzy/vmmc/sim/traj"
)

var (
	// CLI flags for the physical system
	particles         int     // number of discs
	dimension         int     // dimension of the simulation box
	density           float64 // particle number density
	interactionEnergy float64 // pair interaction energy scale (in units of kT)
	interactionRange  float64 // diameter of a patch (in units of particle diameter)
	maxInteractions   int     // maximum interactions per particle (number of patches)

	// CLI flags for trial moves
	translationStep float64 // maximum trial translation
	rotationStep    float64 // maximum trial rotation (radians)
	probTranslate   float64 // probability of a translation trial
	referenceRadius float64 // reference radius for rotational moves

	// CLI flags for the run loop
	batches        int    // number of reporting batches
	movesPerBatch  int    // elementary moves per batch (0 = 10x particles)
	sweepsPerBatch int    // sweeps reported per batch
	seed           int64  // master seed
	logLevel       string // log verbosity level
	configPath     string // optional YAML run configuration

	// CLI flags for output files
	trajectoryPath string // xyz trajectory path
	vmdScriptPath  string // VMD script path
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "vmmc",
	Short: "Cluster Monte Carlo simulation of two-dimensional patchy discs",
}

// runCmd executes the simulation using parameters from CLI flags, optionally
// seeded from a YAML configuration file (explicit flags win).
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the patchy-disc simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		logrus.Infof("Starting simulation: %d particles, density %.3f, %d patches, epsilon=%.2f kT, range=%.3f",
			cfg.Particles, cfg.Density, cfg.Interaction.MaxInteractions,
			cfg.Interaction.InteractionEnergy, cfg.Interaction.InteractionRange)

		startTime := time.Now()

		collab := sim.Collaborators{}
		if cfg.Output.TrajectoryPath != "" {
			collab.Trajectory = traj.NewWriter(cfg.Output.TrajectoryPath)
		}
		if cfg.Output.VMDScriptPath != "" {
			trajectory := cfg.Output.TrajectoryPath
			script := cfg.Output.VMDScriptPath
			collab.VMDScript = func(boxSize []float64) error {
				return traj.VMDScript(boxSize, trajectory, script)
			}
		}

		driver, err := sim.NewDriver(cfg, collab)
		if err != nil {
			logrus.Fatalf("Unable to build simulation: %v", err)
		}
		if err := driver.Run(); err != nil {
			logrus.Fatalf("Simulation aborted: %v", err)
		}
		driver.Metrics.Print(startTime)

		cmd.Println("\nComplete!")
	},
}

// buildConfig merges the optional YAML file with CLI flags. Flags the user
// set explicitly override file values; untouched flags keep whatever the
// file (or the default configuration) says.
func buildConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if configPath != "" {
		loaded, err := sim.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	set := func(name string) bool { return cmd.Flags().Changed(name) }
	if set("particles") {
		cfg.Particles = particles
	}
	if set("dimension") {
		cfg.Dimension = dimension
	}
	if set("density") {
		cfg.Density = density
	}
	if set("interaction-energy") {
		cfg.Interaction.InteractionEnergy = interactionEnergy
	}
	if set("interaction-range") {
		cfg.Interaction.InteractionRange = interactionRange
	}
	if set("max-interactions") {
		cfg.Interaction.MaxInteractions = maxInteractions
	}
	if set("translation-step") {
		cfg.Moves.TranslationStep = translationStep
	}
	if set("rotation-step") {
		cfg.Moves.RotationStep = rotationStep
	}
	if set("prob-translate") {
		cfg.Moves.ProbTranslate = probTranslate
	}
	if set("reference-radius") {
		cfg.Moves.ReferenceRadius = referenceRadius
	}
	if set("batches") {
		cfg.Run.Batches = batches
	}
	if set("moves-per-batch") {
		cfg.Run.MovesPerBatch = movesPerBatch
	}
	if set("sweeps-per-batch") {
		cfg.Run.SweepsPerBatch = sweepsPerBatch
	}
	if set("seed") {
		cfg.Run.Seed = seed
	}
	if set("trajectory") {
		cfg.Output.TrajectoryPath = trajectoryPath
	}
	if set("vmd") {
		cfg.Output.VMDScriptPath = vmdScriptPath
	}
	return cfg, cfg.Validate()
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	defaults := sim.DefaultConfig()

	runCmd.Flags().IntVar(&particles, "particles", defaults.Particles, "Number of patchy discs")
	runCmd.Flags().IntVar(&dimension, "dimension", defaults.Dimension, "Dimension of the simulation box")
	runCmd.Flags().Float64Var(&density, "density", defaults.Density, "Particle number density")
	runCmd.Flags().Float64Var(&interactionEnergy, "interaction-energy", defaults.Interaction.InteractionEnergy, "Pair interaction energy scale (kT)")
	runCmd.Flags().Float64Var(&interactionRange, "interaction-range", defaults.Interaction.InteractionRange, "Patch diameter (particle diameters)")
	runCmd.Flags().IntVar(&maxInteractions, "max-interactions", defaults.Interaction.MaxInteractions, "Maximum interactions per particle (number of patches)")

	runCmd.Flags().Float64Var(&translationStep, "translation-step", defaults.Moves.TranslationStep, "Maximum trial translation")
	runCmd.Flags().Float64Var(&rotationStep, "rotation-step", defaults.Moves.RotationStep, "Maximum trial rotation (radians)")
	runCmd.Flags().Float64Var(&probTranslate, "prob-translate", defaults.Moves.ProbTranslate, "Probability of a translation trial")
	runCmd.Flags().Float64Var(&referenceRadius, "reference-radius", defaults.Moves.ReferenceRadius, "Reference radius for rotational moves")

	runCmd.Flags().IntVar(&batches, "batches", defaults.Run.Batches, "Number of reporting batches")
	runCmd.Flags().IntVar(&movesPerBatch, "moves-per-batch", defaults.Run.MovesPerBatch, "Elementary moves per batch (0 = 10x particles)")
	runCmd.Flags().IntVar(&sweepsPerBatch, "sweeps-per-batch", defaults.Run.SweepsPerBatch, "Sweeps reported per batch")
	runCmd.Flags().Int64Var(&seed, "seed", defaults.Run.Seed, "Seed for random configuration and trial moves")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML run configuration file (flags override)")

	runCmd.Flags().StringVar(&trajectoryPath, "trajectory", defaults.Output.TrajectoryPath, "xyz trajectory output path (empty disables)")
	runCmd.Flags().StringVar(&vmdScriptPath, "vmd", defaults.Output.VMDScriptPath, "VMD script output path (empty disables)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
