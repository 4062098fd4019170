// Package engine implements the Monte Carlo engine behind sim's Engine
// contract. The default implementation is a single-particle Metropolis
// sampler: it exercises the full four-callback interaction contract
// (energy, pair energy, interaction enumeration with saturation, post-move
// update) and keeps its own contiguous coordinate state, pushing accepted
// moves back through the model exactly as a cluster-move engine would.
package engine

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/drozzy/vmmc/sim"
)

// Metropolis advances the system one elementary trial at a time: pick a
// particle, propose a bounded translation or rotation, and accept with the
// Boltzmann criterion min(1, exp(-dE)). Hard-core overlaps and patch
// saturation both reject the trial.
type Metropolis struct {
	cfg   sim.EngineConfig
	model sim.InteractionModel
	rng   *rand.Rand

	// Engine-owned contiguous state, particle-major. Kept in lockstep with
	// the model's particle store through PostMoveUpdate.
	coords  []float64
	orients []float64

	trialPos    []float64
	trialOrient []float64

	attempted int64
	accepted  int64
}

// NewEngine constructs a Metropolis engine over the given interaction model.
// Rotational moves require dimension 2; anisotropic particles in 3D are not
// supported by this implementation.
func NewEngine(cfg sim.EngineConfig, model sim.InteractionModel, rng *rand.Rand) (sim.Engine, error) {
	if cfg.Particles <= 0 {
		return nil, fmt.Errorf("%w: engine needs a positive particle count, got %d",
			sim.ErrConfiguration, cfg.Particles)
	}
	if cfg.Dimension != 2 {
		return nil, fmt.Errorf("%w: engine supports dimension 2, got %d",
			sim.ErrConfiguration, cfg.Dimension)
	}
	if len(cfg.Coordinates) != cfg.Particles*cfg.Dimension ||
		len(cfg.Orientations) != cfg.Particles*cfg.Dimension {
		return nil, fmt.Errorf("%w: coordinate buffers sized %d/%d, want %d",
			sim.ErrConfiguration, len(cfg.Coordinates), len(cfg.Orientations), cfg.Particles*cfg.Dimension)
	}
	if len(cfg.BoxSize) != cfg.Dimension {
		return nil, fmt.Errorf("%w: box size has %d dimensions, want %d",
			sim.ErrConfiguration, len(cfg.BoxSize), cfg.Dimension)
	}
	if len(cfg.IsIsotropic) != cfg.Particles {
		return nil, fmt.Errorf("%w: isotropy flags sized %d, want %d",
			sim.ErrConfiguration, len(cfg.IsIsotropic), cfg.Particles)
	}
	if model == nil {
		return nil, fmt.Errorf("%w: engine needs an interaction model", sim.ErrConfiguration)
	}

	m := &Metropolis{
		cfg:         cfg,
		model:       model,
		rng:         rng,
		coords:      append([]float64(nil), cfg.Coordinates...),
		orients:     append([]float64(nil), cfg.Orientations...),
		trialPos:    make([]float64, cfg.Dimension),
		trialOrient: make([]float64, cfg.Dimension),
	}
	return m, nil
}

// Step attempts n elementary moves. Trial evaluation and acceptance happen
// strictly one trial at a time: the post-move update for a trial completes
// before the next trial's callbacks fire.
func (m *Metropolis) Step(n int) error {
	for t := 0; t < n; t++ {
		if err := m.trial(); err != nil {
			return err
		}
	}
	return nil
}

// Accepted returns the number of accepted trials so far.
func (m *Metropolis) Accepted() int64 { return m.accepted }

// Attempted returns the number of attempted trials so far.
func (m *Metropolis) Attempted() int64 { return m.attempted }

// AcceptanceRate returns accepted/attempted, or 0 before any trial.
func (m *Metropolis) AcceptanceRate() float64 {
	if m.attempted == 0 {
		return 0
	}
	return float64(m.accepted) / float64(m.attempted)
}

func (m *Metropolis) trial() error {
	m.attempted++

	d := m.cfg.Dimension
	i := m.rng.Intn(m.cfg.Particles)
	pos := m.coords[d*i : d*i+d]
	orient := m.orients[d*i : d*i+d]

	oldE, err := m.model.Energy(i, pos, orient)
	if err != nil {
		return err
	}
	if math.IsInf(oldE, 1) {
		// The committed state can never overlap; the model and engine have
		// diverged.
		return fmt.Errorf("%w: particle %d overlaps in committed state", sim.ErrOverlapDetected, i)
	}

	copy(m.trialPos, pos)
	copy(m.trialOrient, orient)

	translate := m.cfg.IsIsotropic[i] || m.rng.Float64() < m.cfg.ProbTranslate
	if translate {
		for k := 0; k < d; k++ {
			m.trialPos[k] += (2*m.rng.Float64() - 1) * m.cfg.TranslationStep
			span := m.cfg.BoxSize[k]
			m.trialPos[k] -= span * math.Floor(m.trialPos[k]/span)
		}
	} else {
		angle := (2*m.rng.Float64() - 1) * m.cfg.RotationStep
		c, s := math.Cos(angle), math.Sin(angle)
		m.trialOrient[0] = c*orient[0] - s*orient[1]
		m.trialOrient[1] = s*orient[0] + c*orient[1]
	}

	newE, err := m.model.Energy(i, m.trialPos, m.trialOrient)
	if err != nil {
		return err
	}
	if math.IsInf(newE, 1) {
		return nil // hard-core overlap: reject
	}

	if _, err := m.model.Interactions(i, m.trialPos, m.trialOrient); err != nil {
		if errors.Is(err, sim.ErrSaturationExceeded) {
			return nil // patch cap would be exceeded: reject
		}
		return err
	}

	delta := newE - oldE
	if delta > 0 && m.rng.Float64() >= math.Exp(-delta) {
		return nil
	}

	if err := m.model.PostMoveUpdate(i, m.trialPos, m.trialOrient); err != nil {
		return err
	}
	copy(pos, m.trialPos)
	copy(orient, m.trialOrient)
	m.accepted++

	if m.attempted%1000000 == 0 {
		logrus.Debugf("engine: %d trials, acceptance %.3f", m.attempted, m.AcceptanceRate())
	}
	return nil
}
