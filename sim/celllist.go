package sim

import (
	"fmt"
	"math"
)

// CellList is a uniform spatial grid over the box. Each cell owns the set of
// particle indices currently inside it, so neighbour queries only touch the
// 3^D cells around a position instead of the whole population.
//
// Built once for a box and interaction cutoff, then mutated on every
// accepted move via UpdateParticle. Invariant: a particle's bucket always
// equals CellOf(its current position).
type CellList struct {
	dimension int
	numCells  []int     // cells per dimension
	cellSize  []float64 // cell side per dimension (boxSize / numCells)
	cells     [][]int   // flat cell index -> member particle indices

	// neighbours[c] lists c itself plus its 3^D - 1 periodic neighbours.
	neighbours [][]int
}

// NewCellList creates an empty cell list for the given dimension.
func NewCellList(dimension int) *CellList {
	return &CellList{dimension: dimension}
}

// Initialise partitions the box into cells of side >= cutoff. Each dimension
// gets floor(boxSize[d]/cutoff) cells; a cutoff larger than the box in any
// dimension is a configuration error since the stencil would be degenerate.
func (c *CellList) Initialise(boxSize []float64, cutoff float64) error {
	if cutoff <= 0 {
		return fmt.Errorf("%w: cell cutoff %v must be positive", ErrConfiguration, cutoff)
	}
	if len(boxSize) != c.dimension {
		return fmt.Errorf("%w: box dimension %d does not match cell list dimension %d",
			ErrConfiguration, len(boxSize), c.dimension)
	}

	c.numCells = make([]int, c.dimension)
	c.cellSize = make([]float64, c.dimension)
	total := 1
	for d := 0; d < c.dimension; d++ {
		n := int(math.Floor(boxSize[d] / cutoff))
		if n == 0 {
			return fmt.Errorf("%w: cutoff %v exceeds box size %v in dimension %d",
				ErrConfiguration, cutoff, boxSize[d], d)
		}
		c.numCells[d] = n
		c.cellSize[d] = boxSize[d] / float64(n)
		total *= n
	}

	c.cells = make([][]int, total)
	for i := range c.cells {
		c.cells[i] = make([]int, 0, 8)
	}
	c.buildNeighbours()
	return nil
}

// buildNeighbours precomputes the periodic 3^D stencil for every cell.
func (c *CellList) buildNeighbours() {
	stencil := 1
	for d := 0; d < c.dimension; d++ {
		stencil *= 3
	}
	c.neighbours = make([][]int, len(c.cells))
	coord := make([]int, c.dimension)
	shifted := make([]int, c.dimension)
	for cell := range c.cells {
		c.coordOf(cell, coord)
		list := make([]int, 0, stencil)
		for s := 0; s < stencil; s++ {
			rem := s
			for d := 0; d < c.dimension; d++ {
				offset := rem%3 - 1
				rem /= 3
				shifted[d] = (coord[d] + offset + c.numCells[d]) % c.numCells[d]
			}
			n := c.flatten(shifted)
			// Small grids alias: a 2-cell dimension reaches the same
			// neighbour from both sides. Keep each cell once.
			seen := false
			for _, m := range list {
				if m == n {
					seen = true
					break
				}
			}
			if !seen {
				list = append(list, n)
			}
		}
		c.neighbours[cell] = list
	}
}

// flatten maps a per-dimension cell coordinate to a flat index.
func (c *CellList) flatten(coord []int) int {
	idx := 0
	for d := c.dimension - 1; d >= 0; d-- {
		idx = idx*c.numCells[d] + coord[d]
	}
	return idx
}

// coordOf writes the per-dimension coordinate of a flat cell index.
func (c *CellList) coordOf(cell int, coord []int) {
	for d := 0; d < c.dimension; d++ {
		coord[d] = cell % c.numCells[d]
		cell /= c.numCells[d]
	}
}

// CellOf returns the flat cell index containing position. Pure function of
// the position and the cell geometry; positions are folded into the box
// first, so unwrapped input is fine.
func (c *CellList) CellOf(position []float64) int {
	idx := 0
	for d := c.dimension - 1; d >= 0; d-- {
		p := position[d]
		span := c.cellSize[d] * float64(c.numCells[d])
		p -= span * math.Floor(p/span)
		k := int(p / c.cellSize[d])
		if k >= c.numCells[d] { // boundary rounding
			k = c.numCells[d] - 1
		}
		idx = idx*c.numCells[d] + k
	}
	return idx
}

// Neighbours returns the given cell plus all cells adjacent under periodic
// wraparound. The returned slice is owned by the cell list; do not mutate.
func (c *CellList) Neighbours(cell int) []int {
	return c.neighbours[cell]
}

// Members returns the particle indices currently bucketed in cell. The
// returned slice is owned by the cell list; do not mutate.
func (c *CellList) Members(cell int) []int {
	return c.cells[cell]
}

// NumCells returns the total number of cells.
func (c *CellList) NumCells() int { return len(c.cells) }

// CellSize returns the per-dimension cell side lengths.
func (c *CellList) CellSize() []float64 { return c.cellSize }

// Insert adds a particle index to the bucket for its position.
func (c *CellList) Insert(index int, position []float64) {
	cell := c.CellOf(position)
	c.cells[cell] = append(c.cells[cell], index)
}

// Remove deletes a particle index from the bucket for its position.
func (c *CellList) Remove(index int, position []float64) {
	cell := c.CellOf(position)
	bucket := c.cells[cell]
	for i, p := range bucket {
		if p == index {
			bucket[i] = bucket[len(bucket)-1]
			c.cells[cell] = bucket[:len(bucket)-1]
			return
		}
	}
}

// UpdateParticle moves index between buckets when the move crossed a cell
// boundary; no-op otherwise.
func (c *CellList) UpdateParticle(index int, oldPosition, newPosition []float64) {
	oldCell := c.CellOf(oldPosition)
	newCell := c.CellOf(newPosition)
	if oldCell == newCell {
		return
	}
	bucket := c.cells[oldCell]
	for i, p := range bucket {
		if p == index {
			bucket[i] = bucket[len(bucket)-1]
			c.cells[oldCell] = bucket[:len(bucket)-1]
			break
		}
	}
	c.cells[newCell] = append(c.cells[newCell], index)
}
