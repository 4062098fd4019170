// Package sim provides the core of the patchy-disc cluster Monte Carlo
// simulation: the periodic box, the cell-list spatial index, the patch
// interaction model, and the driver that feeds them to a Monte Carlo engine.
//
// # Reading Guide
//
// Start with these three files to understand the simulation core:
//   - box.go: periodic wrapping and minimum-image separations
//   - patchydisc.go: the pair interaction model and its four engine-facing
//     operations
//   - driver.go: construction order and the batch/report loop
//
// # Architecture
//
// The sim package defines interfaces and owns the simulation state;
// implementations of the outer surfaces live in sub-packages:
//   - sim/engine/: the Monte Carlo engine (Metropolis default)
//   - sim/traj/: xyz trajectory output and the VMD visualization script
//
// sim/engine registers its constructor via an init() function that sets the
// package-level factory variable NewEngineFunc.
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - InteractionModel: the four-operation callback contract an engine
//     consumes (energy, pair energy, interaction enumeration, post-move
//     update)
//   - Engine: advance the simulation by n elementary trials
//   - TrajectoryWriter: append one configuration frame per batch
package sim
