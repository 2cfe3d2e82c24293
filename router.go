package phit

import (
	"math"

	phiterrors "github.com/triphase/phit/errors"
)

// Router maps raw timing deltas onto a fixed number of slots with
// near-uniform probability regardless of how skewed the platform's delta
// distribution is. It works by inverse transform: a calibration pass
// measures the empirical CDF of the deltas, then the routing table sends
// delta d to slot floor(cdf(d)·K). Slot probabilities equalize as far as
// the granularity of the distribution allows; a single delta value holding
// more than 1/K of the mass cannot be split and keeps all of it on one slot.
//
// Calibrate must complete before the first Route; recalibrating swaps the
// table. The router is not safe for concurrent use.
type Router struct {
	sampler   *Sampler
	maxDelta  int
	tolerance float64

	slots int
	table []int
}

// NewRouter builds an uncalibrated router. WithMaxDelta bounds the table
// domain, WithOverflowTolerance bounds the acceptable mass outside it, and
// the clock and workload options configure the sampler the calibration pass
// draws from.
func NewRouter(opts ...Option) (*Router, error) {
	c := buildConfig(opts)
	if c.maxDelta < 2 {
		return nil, phiterrors.ErrMaxDeltaTooLow
	}
	if c.tolerance < 0 || c.tolerance > 1 {
		return nil, phiterrors.ErrBadTolerance
	}
	return &Router{
		sampler:   newSampler(c),
		maxDelta:  c.maxDelta,
		tolerance: c.tolerance,
	}, nil
}

// Calibration reports what one calibration pass observed. OverflowFrac and
// SlotMass partition the draw: the slot masses sum to 1 minus the overflow
// fraction.
type Calibration struct {
	Samples int
	Slots   int

	Overflow     int // deltas outside [0, maxDelta)
	OverflowFrac float64
	Distinct     int // distinct in-domain delta values observed
	MinDelta     uint64
	MeanDelta    float64
	MaxDelta     uint64

	// Entropy is the Shannon entropy of the in-domain delta distribution in
	// bits: the phit yield of one raw delta on this platform.
	Entropy float64

	// SlotMass is the fraction of the calibration draw each slot would have
	// received under the installed table.
	SlotMass []float64
}

// Calibrate draws samples raw deltas, measures their distribution and
// installs a fresh routing table for the given slot count, replacing any
// previous table.
//
// If more than the configured tolerance of the draw falls outside the table
// domain, Calibrate returns the report together with ErrDomainOverflow. The
// table is still installed and usable; at routing time the overflow mass
// clamps into the last bin, and the error is the warning that this mass is
// large enough to bias that bin's slot.
func (r *Router) Calibrate(slots, samples int) (*Calibration, error) {
	if slots < 1 {
		return nil, phiterrors.ErrNoSlots
	}
	if samples < 1 {
		return nil, phiterrors.ErrNoSamples
	}

	hist := make([]int, r.maxDelta)
	overflow := 0
	minD := ^uint64(0)
	var maxD uint64
	var sum float64
	for i := 0; i < samples; i++ {
		d := r.sampler.Delta()
		if d < minD {
			minD = d
		}
		if d > maxD {
			maxD = d
		}
		sum += float64(d)
		if d < uint64(r.maxDelta) {
			hist[d]++
		} else {
			overflow++
		}
	}

	// The CDF divides by the full draw, so overflow mass is absent from the
	// table rather than spread over it. Routed overflow then shares the last
	// bin's slot, which is what the tolerance check watches for.
	table := make([]int, r.maxDelta)
	cumulative := 0.0
	for d, n := range hist {
		cumulative += float64(n) / float64(samples)
		slot := int(cumulative * float64(slots))
		if slot >= slots {
			slot = slots - 1
		}
		table[d] = slot
	}

	inDomain := samples - overflow
	distinct := 0
	entropy := 0.0
	mass := make([]float64, slots)
	for d, n := range hist {
		if n == 0 {
			continue
		}
		distinct++
		p := float64(n) / float64(inDomain)
		entropy -= p * math.Log2(p)
		mass[table[d]] += float64(n) / float64(samples)
	}

	r.slots = slots
	r.table = table

	cal := &Calibration{
		Samples:      samples,
		Slots:        slots,
		Overflow:     overflow,
		OverflowFrac: float64(overflow) / float64(samples),
		Distinct:     distinct,
		MinDelta:     minD,
		MeanDelta:    sum / float64(samples),
		MaxDelta:     maxD,
		Entropy:      entropy,
		SlotMass:     mass,
	}
	if cal.OverflowFrac > r.tolerance {
		return cal, phiterrors.ErrDomainOverflow
	}
	return cal, nil
}

// Route returns the slot for one raw delta. It is an O(1) table lookup;
// deltas at or above the table domain clamp into the last bin. Routing on a
// router that has never been calibrated is a programming error and panics.
func (r *Router) Route(delta uint64) int {
	if r.table == nil {
		panic("phit: Route called before Calibrate")
	}
	if delta >= uint64(len(r.table)) {
		delta = uint64(len(r.table)) - 1
	}
	return r.table[delta]
}

// RouteSample draws one fresh delta from the router's sampler and routes it.
func (r *Router) RouteSample() int {
	return r.Route(r.sampler.Delta())
}

// Calibrated reports whether a routing table is installed.
func (r *Router) Calibrated() bool { return r.table != nil }

// Slots returns the slot count of the installed table, or 0 before
// calibration.
func (r *Router) Slots() int { return r.slots }
