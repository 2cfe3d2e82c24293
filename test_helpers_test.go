package phit

import (
	"encoding/binary"
	"hash/fnv"
	randv2 "math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *randv2.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return randv2.New(randv2.NewPCG(testSeed1^s1, testSeed2^s2))
}

// stepClock returns a synthetic monotonic clock that advances by step on
// every read. Components built on it see perfectly regular timing, which
// makes their downstream statistics exact and reproducible.
func stepClock(start, step uint64) func() uint64 {
	t := start
	return func() uint64 {
		t += step
		return t
	}
}

// constClock returns a clock frozen at value. Frozen phase collapses a
// sampler to a pure function of its workload, the setup for pinning exact
// sample values.
func constClock(value uint64) func() uint64 {
	return func() uint64 { return value }
}

// constWorkload returns a workload that performs no work and always yields v.
func constWorkload(v uint64) Workload {
	return func() uint64 { return v }
}

// deltaScriptClock returns a synthetic clock arranged so that successive
// Sampler.Delta calls observe exactly the scripted deltas, cycling when the
// script runs out. Delta reads the clock twice around the workload: the
// first read of each pair advances by a fixed gap, the second by the next
// scripted value, so the measured difference is the script entry.
func deltaScriptClock(deltas []uint64) func() uint64 {
	t := uint64(1) << 20
	reads := 0
	k := 0
	return func() uint64 {
		if reads%2 == 0 {
			t += 4096
		} else {
			t += deltas[k%len(deltas)]
			k++
		}
		reads++
		return t
	}
}

// skewedWheel builds a delta script with 600 distinct timing levels under a
// heavily skewed mass profile: the first 60 levels carry ten entries each,
// the next 120 five, the next 300 two and the last 120 one, 1920 entries
// per revolution. Cycled through deltaScriptClock it emulates a platform
// whose delta histogram is far from uniform but perfectly stable, the
// setting where CDF routing has to earn its keep.
func skewedWheel() []uint64 {
	wheel := make([]uint64, 0, 1920)
	for j := 0; j < 600; j++ {
		var mult int
		switch {
		case j < 60:
			mult = 10
		case j < 180:
			mult = 5
		case j < 480:
			mult = 2
		default:
			mult = 1
		}
		for i := 0; i < mult; i++ {
			wheel = append(wheel, uint64(24+j))
		}
	}
	return wheel
}

// spikeWheel builds a delta script where a single value holds half of the
// total mass and fifty further levels share the rest, 100 entries per
// revolution. It exercises routing around a probability atom too large to
// split across slots.
func spikeWheel() []uint64 {
	wheel := make([]uint64, 0, 100)
	for i := 0; i < 50; i++ {
		wheel = append(wheel, 100)
	}
	for d := uint64(300); d < 350; d++ {
		wheel = append(wheel, d)
	}
	return wheel
}
