// Tracks run-wide simulation metrics: per-batch energies and the final
// summary printed after the batch loop.

package sim

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics about the simulation for final reporting.
// Useful for evaluating equilibration and debugging behavior over time.
type Metrics struct {
	BatchesCompleted int       // Number of reporting batches executed
	TotalMoves       int64     // Total elementary Monte Carlo trials attempted
	BatchEnergies    []float64 // Total energy recorded after each batch
	InitialEnergy    float64   // Total energy of the starting configuration
	FinalEnergy      float64   // Total energy after the last batch
}

// NewMetrics creates an empty Metrics ready for recording.
func NewMetrics() *Metrics {
	return &Metrics{
		BatchEnergies: make([]float64, 0),
	}
}

// RecordBatch appends one batch observation.
func (m *Metrics) RecordBatch(moves int, energy float64) {
	m.BatchesCompleted++
	m.TotalMoves += int64(moves)
	m.BatchEnergies = append(m.BatchEnergies, energy)
	m.FinalEnergy = energy
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print(start time.Time) {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Batches Completed    : %d\n", m.BatchesCompleted)
	fmt.Printf("Elementary Moves     : %d\n", m.TotalMoves)
	fmt.Printf("Initial Energy       : %.4f\n", m.InitialEnergy)
	fmt.Printf("Final Energy         : %.4f\n", m.FinalEnergy)
	if len(m.BatchEnergies) > 1 {
		mean, std := stat.MeanStdDev(m.BatchEnergies, nil)
		fmt.Printf("Mean Batch Energy    : %.4f\n", mean)
		fmt.Printf("Stddev Batch Energy  : %.4f\n", std)
	}
	fmt.Printf("Wall Clock           : %s\n", time.Since(start).Round(time.Millisecond))
}
