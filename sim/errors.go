package sim

import "errors"

// Error kinds for the simulation core. Callers branch on these with
// errors.Is; everything else is wrapped detail.
var (
	// ErrConfiguration marks invalid box/cell geometry or non-positive
	// parameters. Fatal before the simulation starts.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrInitialization marks failure to place a non-overlapping particle
	// within the retry budget. Fatal: the density is too high for the box.
	ErrInitialization = errors.New("initialization failed")

	// ErrOverlapDetected marks a hard-core overlap found in a committed
	// configuration (transient mid-cluster states are exempt). Fatal: the
	// cell list or move application is inconsistent.
	ErrOverlapDetected = errors.New("hard-core overlap detected")

	// ErrSaturationExceeded signals that a particle's bond count would
	// exceed the patch cap. Not fatal: the trial move is rejected.
	ErrSaturationExceeded = errors.New("interaction cap exceeded")
)
