package sim

import (
	"fmt"
	"math"
)

// Box is the periodic simulation domain. It is immutable after construction:
// all mutation-free geometry queries (wrapping, minimum-image separations)
// live here, and every component that handles coordinates goes through it.
type Box struct {
	// Size holds the box length in each dimension.
	Size []float64

	dimension int
}

// NewBox builds a periodic box from per-dimension lengths.
func NewBox(size []float64) (*Box, error) {
	if len(size) == 0 {
		return nil, fmt.Errorf("%w: box has no dimensions", ErrConfiguration)
	}
	for d, s := range size {
		if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, fmt.Errorf("%w: box size %v in dimension %d", ErrConfiguration, s, d)
		}
	}
	b := &Box{
		Size:      append([]float64(nil), size...),
		dimension: len(size),
	}
	return b, nil
}

// Dimension returns the dimensionality of the box.
func (b *Box) Dimension() int { return b.dimension }

// Volume returns the product of the box lengths.
func (b *Box) Volume() float64 {
	v := 1.0
	for _, s := range b.Size {
		v *= s
	}
	return v
}

// Wrap folds position into the canonical periodic representation [0, Size)
// in each dimension, in place. Idempotent, and valid for positions that are
// arbitrarily many periods outside the box.
func (b *Box) Wrap(position []float64) {
	for d := range position {
		position[d] -= b.Size[d] * math.Floor(position[d]/b.Size[d])
		// Floor rounding can land exactly on the upper boundary.
		if position[d] >= b.Size[d] {
			position[d] -= b.Size[d]
		}
	}
}

// Wrapped returns the canonical periodic representation of position without
// modifying the argument.
func (b *Box) Wrapped(position []float64) []float64 {
	out := append([]float64(nil), position...)
	b.Wrap(out)
	return out
}

// Separation writes the minimum-image displacement from a to b into sep:
// the representative of b-a (mod box size) of least magnitude in each
// dimension independently. Shifting either input by a whole period leaves
// the result unchanged.
func (b *Box) Separation(a, bPos, sep []float64) {
	for d := range sep {
		delta := bPos[d] - a[d]
		delta -= b.Size[d] * math.Round(delta/b.Size[d])
		sep[d] = delta
	}
}

// SeparationVec is the allocating variant of Separation.
func (b *Box) SeparationVec(a, bPos []float64) []float64 {
	sep := make([]float64, b.dimension)
	b.Separation(a, bPos, sep)
	return sep
}

// SquaredDistance returns the squared minimum-image distance between a and b.
func (b *Box) SquaredDistance(a, bPos []float64) float64 {
	var sum float64
	for d := 0; d < b.dimension; d++ {
		delta := bPos[d] - a[d]
		delta -= b.Size[d] * math.Round(delta/b.Size[d])
		sum += delta * delta
	}
	return sum
}

// BaseLength returns the side of a square (2D) or cubic (3D) box holding
// nParticles discs/spheres of unit diameter at the given number density.
func BaseLength(nParticles int, density float64, dimension int) float64 {
	if dimension == 3 {
		return math.Cbrt(float64(nParticles) * math.Pi / (6.0 * density))
	}
	return math.Sqrt(float64(nParticles) * math.Pi / (4.0 * density))
}
