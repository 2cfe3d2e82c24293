package phit

import (
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// A Workload burns a fixed, deterministic amount of CPU time and returns a
// value derived from the work. The sampler times one workload call against
// the raw monotonic clock; because the core and the timer tick in unrelated
// clock domains, the low bits of the elapsed interval carry their relative
// phase at the moment of measurement.
//
// Implementations must fold the work into the returned value so the compiler
// cannot elide the loop. The work itself is identical on every call; only
// its duration varies.
type Workload func() uint64

const (
	lcgMul = 6364136223846793005
	lcgInc = 1442695040888963407

	workSeed = 0xCAFEBABE
)

// DefaultWorkIters is the ALU workload length used when no workload option
// is given. Twenty dependent multiply-xorshift rounds span a handful of
// granules on a 24 MHz counter, long enough to accumulate phase drift and
// short enough to rarely take a preemption hit.
const DefaultWorkIters = 20

// workloadSink absorbs results from calls whose value is not otherwise
// consumed, keeping the work observable to the optimizer.
var workloadSink atomic.Uint64

func discard(v uint64) { workloadSink.Store(v) }

// ALUWorkload returns a workload of iters dependent multiply-xorshift
// rounds. Each round feeds the next, so the chain executes at pipeline
// latency with no memory traffic at all; its duration is the purest probe of
// core-versus-timer phase. Non-positive iters fall back to DefaultWorkIters.
func ALUWorkload(iters int) Workload {
	if iters <= 0 {
		iters = DefaultWorkIters
	}
	return func() uint64 {
		x := uint64(workSeed)
		for i := 0; i < iters; i++ {
			x = x*lcgMul + lcgInc
			x ^= x >> 17
		}
		return x
	}
}

// BranchWorkload returns a workload of iters data-dependent branches driven
// by the same multiply-xorshift chain. The pattern is fixed, so a trained
// predictor settles into a steady rhythm and the residual jitter reflects
// front-end timing rather than mispredict storms. Non-positive iters fall
// back to DefaultWorkIters.
func BranchWorkload(iters int) Workload {
	if iters <= 0 {
		iters = DefaultWorkIters
	}
	return func() uint64 {
		x := uint64(workSeed)
		var acc uint64
		for i := 0; i < iters; i++ {
			x = x*lcgMul + lcgInc
			if x&(1<<17) != 0 {
				acc += x >> 23
			} else {
				acc ^= x << 9
			}
		}
		return acc ^ x
	}
}

// HashWorkload returns a workload that runs size bytes of fixed scratch
// through XXH64 on every call. The digest loop keeps the load ports busy, so
// its duration picks up cache-hierarchy phase on top of pipeline phase.
// Sizes below 64 bytes are raised to 64.
func HashWorkload(size int) Workload {
	if size < 64 {
		size = 64
	}
	scratch := make([]byte, size)
	x := uint64(workSeed)
	for i := range scratch {
		x = x*lcgMul + lcgInc
		scratch[i] = byte(x >> 56)
	}
	return func() uint64 {
		return xxhash.Sum64(scratch)
	}
}

// NopWorkload performs no work. Timing it measures two adjacent clock reads,
// the floor of the delta distribution for a given timer.
func NopWorkload() uint64 { return 0 }
