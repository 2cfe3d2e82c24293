package phit

import "math/bits"

const poolLanes = 4

// feedCredit is the phit estimate booked per fed sample. Two phits per feed
// is the calibrated figure for the stock workload on a 24 MHz timer, not a
// derived bound; stat.BitEntropy is the instrument for re-measuring it.
const feedCredit = 2

// Pool accumulates phase entropy in a 256-bit state of four uint64 lanes.
// Feeds are whitened individually and chained across lanes so that single
// weak samples diffuse into the whole state; extraction folds all lanes and
// then mutates them, so past outputs cannot be reconstructed from a later
// state capture.
//
// A Pool is not safe for concurrent use.
type Pool struct {
	sampler *Sampler
	lanes   [poolLanes]uint64
	counter uint64
	credit  int
	rounds  int
}

// NewPool builds an empty pool owning a sampler built from the same options.
func NewPool(opts ...Option) *Pool {
	return newPool(buildConfig(opts))
}

func newPool(c *config) *Pool {
	return &Pool{
		sampler: newSampler(c),
		rounds:  c.harvestRounds,
	}
}

// Feed folds one sample into the pool.
//
// The mix counter advances first, so identical samples fed twice still enter
// on distinct Weyl trajectories. The whitened word lands in the counter's
// lane, and a rotated copy of that lane spills into the next one, chaining
// the lanes together over time.
func (p *Pool) Feed(sample uint64) {
	p.counter++
	z := Mix64(sample + p.counter*goldenGamma)
	slot := int(p.counter & 3)
	p.lanes[slot] ^= z
	p.lanes[(slot+1)&3] ^= bits.RotateLeft64(p.lanes[slot], 17)
	p.credit += feedCredit
}

// Harvest takes one timing probe and feeds both halves of it: the raw timer
// reading, then the workload result folded against it. Two feeds per probe,
// so one harvest books four phits of credit.
func (p *Pool) Harvest() {
	t, x := p.sampler.Probe()
	p.Feed(t)
	p.Feed(x ^ t)
}

// Extract harvests fresh entropy and folds all four lanes into one output
// word. After the fold the first two lanes are mutated with rotated copies
// of the output, so recovering an earlier output from a later state capture
// would require inverting the mutation chain.
//
// The number of harvests per extract defaults to DefaultHarvestRounds and is
// set with WithHarvestRounds.
func (p *Pool) Extract() uint64 {
	for i := 0; i < p.rounds; i++ {
		p.Harvest()
	}

	out := p.lanes[0]
	out ^= bits.RotateLeft64(p.lanes[1], 13)
	out ^= bits.RotateLeft64(p.lanes[2], 29)
	out ^= bits.RotateLeft64(p.lanes[3], 43)

	p.lanes[0] ^= bits.RotateLeft64(out, 7)
	p.lanes[1] ^= bits.RotateLeft64(out, 23)

	return out
}

// Reset zeroes the lanes, the mix counter and the credit estimate. The
// sampler and the harvest budget are kept.
func (p *Pool) Reset() {
	p.lanes = [poolLanes]uint64{}
	p.counter = 0
	p.credit = 0
}

// Collected returns the estimated number of phits fed so far. It is a
// bookkeeping estimate, not a measured quantity.
func (p *Pool) Collected() int { return p.credit }

// MixCount returns the number of feeds absorbed since construction or the
// last Reset.
func (p *Pool) MixCount() uint64 { return p.counter }
