package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// RandomConfiguration fills the particle store with a random, non-overlapping
// configuration: positions uniform in the box, orientations uniform on the
// unit circle. Candidates are rejected while any already-placed particle in
// the cell-list neighbourhood sits closer than one hard-core diameter, and
// each accepted particle is inserted into the cell list immediately so later
// candidates see it.
//
// maxTrials bounds the redraws per particle; exhausting it means the density
// is too high for the box and returns ErrInitialization.
func RandomConfiguration(store *ParticleStore, box *Box, cells *CellList, rng *rand.Rand, maxTrials int) error {
	dimension := box.Dimension()
	pos := make([]float64, dimension)

	for i := 0; i < store.Len(); i++ {
		placed := false
		for trial := 0; trial < maxTrials; trial++ {
			for d := 0; d < dimension; d++ {
				pos[d] = rng.Float64() * box.Size[d]
			}
			if overlaps(pos, box, cells, store) {
				continue
			}

			particle := store.Get(i)
			copy(particle.Position, pos)
			randomOrientation(particle.Orientation, rng)
			// Unit length is an invariant of the stored orientation, not a
			// property of the draw (Marsaglia sampling carries rounding).
			store.NormalizeOrientation(i)
			cells.Insert(i, particle.Position)
			placed = true
			break
		}
		if !placed {
			return fmt.Errorf("%w: no valid placement for particle %d within %d trials (density too high)",
				ErrInitialization, i, maxTrials)
		}
		if (i+1)%1000 == 0 {
			logrus.Debugf("Initialised %d of %d particles", i+1, store.Len())
		}
	}
	logrus.Infof("Generated random configuration of %d particles", store.Len())
	return nil
}

// overlaps reports whether pos is within one diameter of any placed particle
// in the surrounding cells.
func overlaps(pos []float64, box *Box, cells *CellList, store *ParticleStore) bool {
	cell := cells.CellOf(pos)
	for _, neighbour := range cells.Neighbours(cell) {
		for _, j := range cells.Members(neighbour) {
			if box.SquaredDistance(pos, store.Get(j).Position) < 1 {
				return true
			}
		}
	}
	return false
}

// randomOrientation draws a uniform unit vector. In 2D a single angle
// suffices; in 3D, Marsaglia rejection sampling on the sphere.
func randomOrientation(orient []float64, rng *rand.Rand) {
	if len(orient) == 2 {
		theta := 2 * math.Pi * rng.Float64()
		orient[0] = math.Cos(theta)
		orient[1] = math.Sin(theta)
		return
	}
	for {
		u := 2*rng.Float64() - 1
		v := 2*rng.Float64() - 1
		s := u*u + v*v
		if s >= 1 {
			continue
		}
		root := 2 * math.Sqrt(1-s)
		orient[0] = u * root
		orient[1] = v * root
		orient[2] = 1 - 2*s
		return
	}
}
