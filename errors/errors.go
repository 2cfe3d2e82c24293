// Package errors defines all exported error sentinels for the phit library.
//
// This is the single source of truth for error values. Both the top-level
// phit package and the dispatch package import from here, ensuring errors.Is
// checks work across package boundaries.
package errors

import "errors"

// Calibration errors
var (
	ErrNoSlots        = errors.New("phit: slot count must be at least 1")
	ErrNoSamples      = errors.New("phit: calibration sample count must be at least 1")
	ErrMaxDeltaTooLow = errors.New("phit: max delta must be at least 2")
	ErrBadTolerance   = errors.New("phit: overflow tolerance must be in [0, 1]")

	// ErrDomainOverflow reports that more calibration deltas fell outside the
	// table domain than the configured tolerance allows. The table is still
	// built with the overflow mass clamped onto the last slot; the error is
	// the quality warning that the clamping has biased that slot.
	ErrDomainOverflow = errors.New("phit: calibration deltas exceed table domain")
)

// Dispatch errors
var (
	ErrNoWorkers  = errors.New("phit: worker count must be at least 1")
	ErrPoolClosed = errors.New("phit: dispatch pool is closed")
	ErrNilTask    = errors.New("phit: task must not be nil")
)
