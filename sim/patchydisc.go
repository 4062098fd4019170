package sim

import (
	"fmt"
	"math"
)

// bondThreshold is the energy below which a pair counts as bonded when
// enumerating interactions.
const bondThreshold = -1e-10

// PatchyDisc is the pair interaction model for two-dimensional discs of unit
// diameter carrying evenly spaced attractive patches on their perimeter.
//
// The model is stateless apart from read access to the particle store and
// cell list, plus a running total-energy accumulator maintained by
// PostMoveUpdate. Energies are evaluated against explicit trial coordinates
// so the engine can probe moves without touching the stored state.
//
// Geometry: patch k of a particle sits on the perimeter (radius 0.5) at
// angle 2*pi*k/maxInteractions from the orientation vector. Two discs bond,
// for at most one patch pair, when their closest patch points are within
// half the interaction range of each other; a bond contributes
// -interactionEnergy. Centre distances below one diameter are hard-core
// overlaps and evaluate to +Inf.
type PatchyDisc struct {
	box   *Box
	store *ParticleStore
	cells *CellList

	maxInteractions   int
	interactionEnergy float64
	interactionRange  float64

	squaredCutoff float64 // (1 + range/2)^2: beyond this, energy is exactly zero
	patchCutoffSq float64 // (range/2)^2: patch-point distance for a bond
	cosPatch      []float64
	sinPatch      []float64
	totalEnergy   float64

	// energyStale is set when a post-move delta passed through an infinite
	// transient and the accumulator can no longer be trusted; the next
	// total-energy query rebuilds it from the committed state.
	energyStale bool
}

// NewPatchyDisc builds the interaction model over an existing box, particle
// store and initialised cell list.
func NewPatchyDisc(box *Box, store *ParticleStore, cells *CellList, cfg InteractionConfig) (*PatchyDisc, error) {
	if box.Dimension() != 2 {
		return nil, fmt.Errorf("%w: patchy discs need a 2D box, got %dD", ErrConfiguration, box.Dimension())
	}
	if cfg.MaxInteractions <= 0 {
		return nil, fmt.Errorf("%w: max_interactions %d must be positive", ErrConfiguration, cfg.MaxInteractions)
	}
	if cfg.InteractionEnergy <= 0 {
		return nil, fmt.Errorf("%w: interaction_energy %v must be positive", ErrConfiguration, cfg.InteractionEnergy)
	}
	if cfg.InteractionRange <= 0 || cfg.InteractionRange >= 1 {
		return nil, fmt.Errorf("%w: interaction_range %v outside (0, 1)", ErrConfiguration, cfg.InteractionRange)
	}

	p := &PatchyDisc{
		box:               box,
		store:             store,
		cells:             cells,
		maxInteractions:   cfg.MaxInteractions,
		interactionEnergy: cfg.InteractionEnergy,
		interactionRange:  cfg.InteractionRange,
	}
	cutoff := 1 + 0.5*cfg.InteractionRange
	p.squaredCutoff = cutoff * cutoff
	p.patchCutoffSq = 0.25 * cfg.InteractionRange * cfg.InteractionRange

	// One patch per allowed interaction, evenly spaced around the disc.
	p.cosPatch = make([]float64, cfg.MaxInteractions)
	p.sinPatch = make([]float64, cfg.MaxInteractions)
	for k := 0; k < cfg.MaxInteractions; k++ {
		phi := 2 * math.Pi * float64(k) / float64(cfg.MaxInteractions)
		p.cosPatch[k] = math.Cos(phi)
		p.sinPatch[k] = math.Sin(phi)
	}
	return p, nil
}

// PairEnergy evaluates the interaction between particle i at
// (posI, orientI) and particle j at (posJ, orientJ) under the minimum-image
// convention. Returns 0 beyond the cutoff, +Inf for a hard-core overlap
// (the caller decides whether that is a rejected trial or a broken
// invariant), and -interactionEnergy for a bonded pair. Symmetric in its
// arguments.
func (p *PatchyDisc) PairEnergy(i int, posI, orientI []float64, j int, posJ, orientJ []float64) (float64, error) {
	sx := posJ[0] - posI[0]
	sx -= p.box.Size[0] * math.Round(sx/p.box.Size[0])
	sy := posJ[1] - posI[1]
	sy -= p.box.Size[1] * math.Round(sy/p.box.Size[1])

	rsq := sx*sx + sy*sy
	if rsq >= p.squaredCutoff {
		return 0, nil
	}
	if rsq < 1 {
		return math.Inf(1), nil
	}

	// Patch points sit at radius 0.5 along the orientation rotated by each
	// patch offset. A single qualifying patch pair bonds the discs; further
	// matches are not double counted.
	for a := 0; a < p.maxInteractions; a++ {
		ax := 0.5 * (orientI[0]*p.cosPatch[a] - orientI[1]*p.sinPatch[a])
		ay := 0.5 * (orientI[1]*p.cosPatch[a] + orientI[0]*p.sinPatch[a])
		for b := 0; b < p.maxInteractions; b++ {
			bx := 0.5 * (orientJ[0]*p.cosPatch[b] - orientJ[1]*p.sinPatch[b])
			by := 0.5 * (orientJ[1]*p.cosPatch[b] + orientJ[0]*p.sinPatch[b])

			dx := sx + bx - ax
			dy := sy + by - ay
			if dx*dx+dy*dy < p.patchCutoffSq {
				return -p.interactionEnergy, nil
			}
		}
	}
	return 0, nil
}

// Energy sums the pair energies between particle i, placed at the trial
// coordinates (pos, orient), and every particle in the cell-list
// neighbourhood of pos, excluding i itself. A hard overlap propagates as
// +Inf; the pure stored-state evaluation is Energy(i, stored position,
// stored orientation).
func (p *PatchyDisc) Energy(i int, pos, orient []float64) (float64, error) {
	var energy float64
	cell := p.cells.CellOf(pos)
	for _, neighbour := range p.cells.Neighbours(cell) {
		for _, j := range p.cells.Members(neighbour) {
			if j == i {
				continue
			}
			q := p.store.Get(j)
			e, err := p.PairEnergy(i, pos, orient, j, q.Position, q.Orientation)
			if err != nil {
				return 0, err
			}
			if math.IsInf(e, 1) {
				return e, nil
			}
			energy += e
		}
	}
	return energy, nil
}

// Interactions enumerates the particles currently bonded to particle i at
// the trial coordinates (pos, orient), truncated at the patch cap. If a
// further partner exists beyond the cap it returns the first
// maxInteractions partners together with ErrSaturationExceeded: patch
// multiplicity is physically bounded, so the caller must treat the trial as
// rejected.
func (p *PatchyDisc) Interactions(i int, pos, orient []float64) ([]int, error) {
	partners := make([]int, 0, p.maxInteractions)
	cell := p.cells.CellOf(pos)
	for _, neighbour := range p.cells.Neighbours(cell) {
		for _, j := range p.cells.Members(neighbour) {
			if j == i {
				continue
			}
			q := p.store.Get(j)
			e, err := p.PairEnergy(i, pos, orient, j, q.Position, q.Orientation)
			if err != nil {
				return partners, err
			}
			if e < bondThreshold {
				if len(partners) == p.maxInteractions {
					return partners, fmt.Errorf("%w: particle %d has more than %d bonds",
						ErrSaturationExceeded, i, p.maxInteractions)
				}
				partners = append(partners, j)
			}
		}
	}
	return partners, nil
}

// PostMoveUpdate applies an accepted move for particle i: the store takes
// the new coordinates, the cell list bucket follows the particle, and the
// running total energy absorbs the difference.
//
// A cluster acceptance arrives here one member at a time, so the states
// evaluated for the delta can be transient: an already-moved member may sit
// inside the hard core of one still to move. The commit itself never
// depends on energies. Finite transient deltas telescope away across the
// member sequence; an infinite one cannot, so it marks the accumulator
// stale instead of erroring, and TotalEnergy rebuilds from the final
// committed configuration. A genuine overlap in that configuration
// surfaces there as ErrOverlapDetected.
func (p *PatchyDisc) PostMoveUpdate(i int, pos, orient []float64) error {
	particle := p.store.Get(i)

	oldE, err := p.Energy(i, particle.Position, particle.Orientation)
	if err != nil {
		return err
	}
	wrapped := p.box.Wrapped(pos)
	newE, err := p.Energy(i, wrapped, orient)
	if err != nil {
		return err
	}

	p.cells.UpdateParticle(i, particle.Position, wrapped)
	p.store.Apply(i, wrapped, orient)

	if math.IsInf(oldE, 1) || math.IsInf(newE, 1) {
		p.energyStale = true
	} else if !p.energyStale {
		p.totalEnergy += newE - oldE
	}
	return nil
}

// TotalEnergy returns the total interaction energy of the committed
// configuration. O(1) while the incremental accumulator is fresh; after a
// move sequence passed through an infinite transient it falls back to a
// full recompute, and only a hard overlap in the committed state itself is
// an error.
func (p *PatchyDisc) TotalEnergy() (float64, error) {
	if p.energyStale {
		return p.RecomputeTotalEnergy()
	}
	return p.totalEnergy, nil
}

// RecomputeTotalEnergy walks every particle's neighbourhood and resets the
// running accumulator from scratch. Used once after initialisation, and by
// tests validating the incremental bookkeeping.
func (p *PatchyDisc) RecomputeTotalEnergy() (float64, error) {
	var total float64
	for i := 0; i < p.store.Len(); i++ {
		particle := p.store.Get(i)
		e, err := p.Energy(i, particle.Position, particle.Orientation)
		if err != nil {
			return 0, err
		}
		if math.IsInf(e, 1) {
			return 0, fmt.Errorf("%w: particle %d overlaps a neighbour", ErrOverlapDetected, i)
		}
		total += e
	}
	// Every pair was visited from both ends.
	p.totalEnergy = total / 2
	p.energyStale = false
	return p.totalEnergy, nil
}
