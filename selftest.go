package phit

import "math/bits"

// SelfTest runs a quick confidence bundle against the live platform: mixer
// determinism and sensitivity, distinct consecutive generator outputs, a
// monobit ratio within [0.45, 0.55] over 64000 bits, QuickRoute chi-squared
// below 30 over 8 destinations and 10000 draws, and a timer that advances
// across one workload call. It reports true when every check passes.
//
// The thresholds are deliberately generous. SelfTest answers "is phase
// extraction alive on this machine", not "is it uniform"; the stat package
// holds the strict instruments. It draws from the real clock and takes a
// few milliseconds.
func SelfTest() bool {
	pass := true

	if Mix32(42) != Mix32(42) || Mix32(42) == Mix32(43) {
		pass = false
	}
	if Mix64(42) != Mix64(42) || Mix64(42) == Mix64(43) {
		pass = false
	}

	rng := NewPRNG()
	a := rng.Uint64()
	b := rng.Uint64()
	if a == b {
		pass = false
	}

	const words = 1000
	ones := 0
	for i := 0; i < words; i++ {
		ones += bits.OnesCount64(rng.Uint64())
	}
	ratio := float64(ones) / (words * 64)
	if ratio < 0.45 || ratio > 0.55 {
		pass = false
	}

	s := NewSampler()
	var buckets [8]int
	const draws = 10000
	for i := 0; i < draws; i++ {
		buckets[s.QuickRoute(len(buckets))]++
	}
	expected := float64(draws) / float64(len(buckets))
	chi2 := 0.0
	for _, n := range buckets {
		diff := float64(n) - expected
		chi2 += diff * diff / expected
	}
	if chi2 > 30.0 {
		pass = false
	}

	t1 := NowNS()
	discard(ALUWorkload(DefaultWorkIters)())
	t2 := NowNS()
	if t2 <= t1 {
		pass = false
	}

	return pass
}
