package phit

// NowNS returns a monotonic timestamp in nanoseconds.
//
// This is the external clock every sampler reads. It is non-decreasing within
// a process and unrelated to wall time. The platform-specific implementations
// (timer_linux.go, timer_darwin.go, timer_other.go) prefer the raw monotonic
// clock, which is not subject to NTP slewing: frequency corrections would
// smooth out exactly the oscillator drift this library harvests.
func NowNS() uint64 {
	return nowNS()
}

// Quantize rounds a raw nanosecond delta to free-running timer ticks.
//
// On the ARM generic timer the counter advances at 24 MHz, one tick every
// 41.67 ns, so raw deltas cluster at multiples of ~42 ns. Quantize maps a
// delta to its tick count, collapsing the sub-tick noise band. The lab
// tooling uses this to count the distinct timing levels a workload exposes.
func Quantize(deltaNS uint64) int {
	return int((deltaNS + 21) / 42)
}
