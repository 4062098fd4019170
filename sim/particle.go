package sim

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Particle is one disc: a position inside the box and a unit orientation
// vector fixing where its patches point. Particles are owned exclusively by
// the ParticleStore, mutated in place by accepted moves, and never destroyed
// individually.
type Particle struct {
	Index       int
	Position    []float64
	Orientation []float64
}

// ParticleStore holds the fixed-size particle population with stable
// indices.
type ParticleStore struct {
	particles []Particle
	dimension int
}

// NewParticleStore allocates n particles of the given dimension, all at the
// origin with unset orientations.
func NewParticleStore(n, dimension int) (*ParticleStore, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: particle count %d must be positive", ErrConfiguration, n)
	}
	s := &ParticleStore{
		particles: make([]Particle, n),
		dimension: dimension,
	}
	for i := range s.particles {
		s.particles[i] = Particle{
			Index:       i,
			Position:    make([]float64, dimension),
			Orientation: make([]float64, dimension),
		}
	}
	return s, nil
}

// Len returns the particle count.
func (s *ParticleStore) Len() int { return len(s.particles) }

// Dimension returns the spatial dimension of the stored particles.
func (s *ParticleStore) Dimension() int { return s.dimension }

// Get returns the particle at index. The pointer stays valid for the run.
func (s *ParticleStore) Get(index int) *Particle {
	return &s.particles[index]
}

// Apply overwrites the position and orientation of particle index with the
// accepted trial values.
func (s *ParticleStore) Apply(index int, position, orientation []float64) {
	p := &s.particles[index]
	copy(p.Position, position)
	copy(p.Orientation, orientation)
}

// NormalizeOrientation rescales the orientation of particle index to unit
// length.
func (s *ParticleStore) NormalizeOrientation(index int) {
	o := s.particles[index].Orientation
	norm := floats.Norm(o, 2)
	if norm > 0 {
		floats.Scale(1/norm, o)
	}
}

// FlattenPositions returns a contiguous dimension*n copy of all positions,
// laid out particle-major (the layout the Monte Carlo engine consumes at
// construction). Dynamically sized and owned by the caller.
func (s *ParticleStore) FlattenPositions() []float64 {
	out := make([]float64, s.dimension*len(s.particles))
	for i := range s.particles {
		copy(out[s.dimension*i:], s.particles[i].Position)
	}
	return out
}

// FlattenOrientations returns a contiguous dimension*n copy of all
// orientations, particle-major.
func (s *ParticleStore) FlattenOrientations() []float64 {
	out := make([]float64, s.dimension*len(s.particles))
	for i := range s.particles {
		copy(out[s.dimension*i:], s.particles[i].Orientation)
	}
	return out
}
