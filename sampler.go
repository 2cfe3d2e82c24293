package phit

import "math/bits"

// Sampler extracts phase keys from the interval between a CPU-bound workload
// and a free-running timer. The two tick in unrelated clock domains, so the
// low bits of any timing read taken around the workload carry their relative
// phase, a quantity that drifts chaotically at nanosecond scale.
//
// One Sampler instance is not safe for concurrent use; workloads may carry
// scratch state. Concurrency is by instance: give each goroutine its own.
type Sampler struct {
	clock func() uint64
	work  Workload
}

// NewSampler builds a sampler from the given options. WithClock and
// WithWorkload are the relevant ones; the zero-option sampler reads the raw
// monotonic clock around the default ALU workload.
func NewSampler(opts ...Option) *Sampler {
	return newSampler(buildConfig(opts))
}

func newSampler(c *config) *Sampler {
	return &Sampler{clock: c.clock, work: c.work}
}

// Sample returns one whitened phase key.
//
// The workload result x is phase-dependent only through its timing, so the
// key packs both signals: the two lowest timer bits verbatim (the fastest
// moving phase) and the remaining timer bits folded against x. Mix32 then
// spreads the few live low bits across the whole word.
func (s *Sampler) Sample() uint32 {
	x := s.work()
	t := s.clock()
	key := uint32(t&3) | ((uint32(t>>2) ^ uint32(x)) << 2)
	return Mix32(key)
}

// SampleCompound folds reads independent samples into one key. Each sample
// is mixed with its read index before folding, and the accumulator rotates
// 7 bits between folds so successive samples land on different bit spans.
// Two reads are enough to route uniformly where a single read shows too few
// distinct levels.
func (s *Sampler) SampleCompound(reads int) uint32 {
	var key uint32
	for i := 0; i < reads; i++ {
		x := s.work()
		t := s.clock()
		sample := uint32(t&3) | ((uint32(t>>2) ^ uint32(x)) << 2)
		key ^= Mix32(sample + uint32(i))
		key = bits.RotateLeft32(key, 7)
	}
	return Mix32(key)
}

// QuickRoute maps a fresh compound sample onto [0, destinations) by modulo.
// This is the zero-setup router: no calibration pass, hash uniformity only.
// Under heavily skewed timing it inherits whatever bias survives Mix32,
// which is small; Router removes even that at the cost of a calibration
// phase. QuickRoute panics if destinations is not positive.
func (s *Sampler) QuickRoute(destinations int) int {
	if destinations <= 0 {
		panic("phit: QuickRoute destinations must be positive")
	}
	return int(s.SampleCompound(2) % uint32(destinations))
}

// Delta times one workload call and returns the raw elapsed interval in
// nanoseconds. This is the router's calibration input: unlike Sample it is
// not whitened, so the full skew of the platform's delta distribution is
// visible to the histogram.
func (s *Sampler) Delta() uint64 {
	t1 := s.clock()
	x := s.work()
	t2 := s.clock()
	discard(x)
	return t2 - t1
}

// Probe runs the workload once and returns the timer reading taken
// immediately after it along with the workload result. The pool harvests
// feed on this pair.
func (s *Sampler) Probe() (t, x uint64) {
	x = s.work()
	t = s.clock()
	return t, x
}
